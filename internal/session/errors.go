package session

import "errors"

// ErrBadProtocolState means a received packet's nesn/sn combination
// matched neither the "acknowledges our last send" nor the "wants a
// retransmit" case. A well-behaved counterparty should never produce
// this; it indicates desync or a corrupted packet that still passed
// decode.
var ErrBadProtocolState = errors.New("session: bad protocol state")
