package protocol

import (
	"encoding/binary"

	"github.com/danmuck/bcp/internal/wiretime"
)

// Every multi-byte integer field uses the same byte order as wire-time:
// little-endian on the wire, regardless of host endianness.
// binary.LittleEndian.PutUint32/PutUint64 already do the right thing on a
// big-endian host without any conditional byte-swap in our code —
// encoding/binary's job is exactly this.
var byteOrder = binary.LittleEndian

// SerializeSession produces the wire bytes for a Session packet. MUST NOT
// allocate beyond the one fixed-size output buffer: the field table drives
// a single linear pass over it.
func SerializeSession(p SessionPacket) []byte {
	buf := make([]byte, SessionPacketWireSize)
	buf[0] = byte(TagSession)
	byteOrder.PutUint32(fieldSlice(buf, sessionFields, "session_id"), p.SessionID)
	fieldSlice(buf, sessionFields, "subtype")[0] = byte(p.Subtype)
	fieldSlice(buf, sessionFields, "length")[0] = p.Length
	fieldSlice(buf, sessionFields, "nesn")[0] = p.NESN
	fieldSlice(buf, sessionFields, "sn")[0] = p.SN
	copy(fieldSlice(buf, sessionFields, "payload"), p.Payload[:])
	return buf
}

// SerializeConnectionRequest produces the wire bytes for a
// ConnectionRequest packet.
func SerializeConnectionRequest(p ConnectionRequestPacket) []byte {
	buf := make([]byte, ConnectionRequestPacketWireSize)
	buf[0] = byte(TagConnectionRequest)
	byteOrder.PutUint32(fieldSlice(buf, connectionRequestFields, "source_address"), p.SourceAddress)
	byteOrder.PutUint32(fieldSlice(buf, connectionRequestFields, "target_address"), p.TargetAddress)
	return buf
}

// SerializeConnectionAccept produces the wire bytes for a ConnectionAccept
// packet.
func SerializeConnectionAccept(p ConnectionAcceptPacket) []byte {
	buf := make([]byte, ConnectionAcceptPacketWireSize)
	buf[0] = byte(TagConnectionAccept)
	byteOrder.PutUint32(fieldSlice(buf, connectionAcceptFields, "source_address"), p.SourceAddress)
	byteOrder.PutUint32(fieldSlice(buf, connectionAcceptFields, "target_address"), p.TargetAddress)
	wiretime.Encode(fieldSlice(buf, connectionAcceptFields, "session_start_time"), p.SessionStartTime)
	byteOrder.PutUint32(fieldSlice(buf, connectionAcceptFields, "session_id"), p.SessionID)
	return buf
}

// SerializeAdvertising produces the wire bytes for an Advertising packet.
func SerializeAdvertising(p AdvertisingPacket) []byte {
	buf := make([]byte, AdvertisingPacketWireSize)
	buf[0] = byte(TagAdvertising)
	byteOrder.PutUint32(fieldSlice(buf, advertisingFields, "source_address"), p.SourceAddress)
	return buf
}

// fieldSlice returns the sub-slice of buf described by the named field in
// fields. Panics if the name is not present — a programmer error, not a
// runtime condition, since the field tables are static.
func fieldSlice(buf []byte, fields []FieldSpec, name string) []byte {
	for _, f := range fields {
		if f.Name == name {
			return buf[f.Offset:f.end()]
		}
	}
	panic("protocol: unknown field " + name)
}
