// Package protocol owns the BCP wire contract: the tagged, field-table-
// driven packet codec.
//
// Ownership boundary:
//   - packet type tags and per-type field layout tables
//   - serialize/deserialize for each packet type, built from those tables
//   - layout-invariant validation, checked once at package init
package protocol
