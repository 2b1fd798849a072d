// Package agent implements the outer link-establishment state machine:
// dispatching toward a goal, advertising presence, seeking advertisers,
// running the connection handshake from either side, and handing control
// to a session once one exists.
//
// Ownership boundary:
//   - State transitions and their dispatch from Goal
//   - advertising/seeking/handshake timing
//   - constructing the internal/session.Session a completed handshake
//     produces
package agent
