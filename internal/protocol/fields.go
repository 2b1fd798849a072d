package protocol

import "fmt"

// FieldSpec describes one field's position within a wire packet, in bytes
// from the start of the packet (tag byte included at offset 0). This is the
// authoritative layout metadata: serialize and deserialize are both built
// against these tables, which is what keeps them inverses of each other.
// Every field is byte-aligned, so byte offsets are all that's needed.
type FieldSpec struct {
	Name   string
	Offset int
	Length int
}

func (f FieldSpec) end() int { return f.Offset + f.Length }

// sessionFields, connectionRequestFields, etc. are the per-type layout
// tables. Offset 0, length 1 (the tag byte) is common to all and is handled
// by the generic encode/decode helpers rather than listed per type.
var (
	sessionFields = []FieldSpec{
		{"session_id", 1, 4},
		{"subtype", 5, 1},
		{"length", 6, 1},
		{"nesn", 7, 1},
		{"sn", 8, 1},
		{"payload", 9, MaxPayloadLengthBytes},
	}
	connectionRequestFields = []FieldSpec{
		{"source_address", 1, 4},
		{"target_address", 5, 4},
	}
	connectionAcceptFields = []FieldSpec{
		{"source_address", 1, 4},
		{"target_address", 5, 4},
		{"session_start_time", 9, 8},
		{"session_id", 17, 4},
	}
	advertisingFields = []FieldSpec{
		{"source_address", 1, 4},
	}
)

// SessionPacketWireSize, etc. are each type's total wire width (tag byte
// included), derived from the field tables rather than hand-declared twice.
var (
	SessionPacketWireSize           = wireSize(sessionFields)
	ConnectionRequestPacketWireSize = wireSize(connectionRequestFields)
	ConnectionAcceptPacketWireSize  = wireSize(connectionAcceptFields)
	AdvertisingPacketWireSize       = wireSize(advertisingFields)
)

func wireSize(fields []FieldSpec) int {
	max := 1 // the tag byte
	for _, f := range fields {
		if f.end() > max {
			max = f.end()
		}
	}
	return max
}

// validateLayout checks that every field has a non-negative offset and a
// positive length, that no field extends beyond the type's declared total
// width, and that no two fields overlap. Byte alignment is not checked
// separately: FieldSpec is expressed in bytes, so every field is
// byte-aligned by construction.
func validateLayout(typeName string, fields []FieldSpec, totalWidth int) error {
	for i, f := range fields {
		if f.Offset < 0 || f.Length <= 0 {
			return fmt.Errorf("protocol: %s field %q has non-positive offset/length", typeName, f.Name)
		}
		if f.end() > totalWidth {
			return fmt.Errorf("protocol: %s field %q extends past total width %d", typeName, f.Name, totalWidth)
		}
		for j, other := range fields {
			if i == j {
				continue
			}
			if f.Offset < other.end() && other.Offset < f.end() {
				return fmt.Errorf("protocol: %s fields %q and %q overlap", typeName, f.Name, other.Name)
			}
		}
	}
	return nil
}

// describeLayout renders a field table for debugging/logging.
func describeLayout(typeName string, fields []FieldSpec, totalWidth int) string {
	out := fmt.Sprintf("%s (tag byte at offset 0, total %d bytes):\n", typeName, totalWidth)
	for _, f := range fields {
		out += fmt.Sprintf("  %-20s offset=%-3d length=%d\n", f.Name, f.Offset, f.Length)
	}
	return out
}

// DescribeLayout renders the field table for tag, or an empty string if tag
// is unrecognized.
func DescribeLayout(tag Tag) string {
	switch tag {
	case TagSession:
		return describeLayout("Session", sessionFields, SessionPacketWireSize)
	case TagConnectionRequest:
		return describeLayout("ConnectionRequest", connectionRequestFields, ConnectionRequestPacketWireSize)
	case TagConnectionAccept:
		return describeLayout("ConnectionAccept", connectionAcceptFields, ConnectionAcceptPacketWireSize)
	case TagAdvertising:
		return describeLayout("Advertising", advertisingFields, AdvertisingPacketWireSize)
	default:
		return ""
	}
}

// init verifies layout invariants for every packet type at process
// startup: failure here is fatal, since a broken field table means every
// packet of that type would be malformed. There is no Go analogue of a
// compile-time static_assert over field tables, so this runs once here
// instead.
func init() {
	checks := []struct {
		name   string
		fields []FieldSpec
		width  int
	}{
		{"Session", sessionFields, SessionPacketWireSize},
		{"ConnectionRequest", connectionRequestFields, ConnectionRequestPacketWireSize},
		{"ConnectionAccept", connectionAcceptFields, ConnectionAcceptPacketWireSize},
		{"Advertising", advertisingFields, AdvertisingPacketWireSize},
	}
	for _, c := range checks {
		if err := validateLayout(c.name, c.fields, c.width); err != nil {
			panic(err)
		}
	}
	// Every packet type must fit the radio PHY's FIFO.
	maxWire := SessionPacketWireSize
	if ConnectionAcceptPacketWireSize > maxWire {
		maxWire = ConnectionAcceptPacketWireSize
	}
	if maxWire > FIFOCapacity {
		panic(fmt.Sprintf("protocol: packet width %d exceeds FIFO capacity %d", maxWire, FIFOCapacity))
	}
}
