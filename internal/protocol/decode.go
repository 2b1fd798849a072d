package protocol

import "github.com/danmuck/bcp/internal/wiretime"

// DeserializeSession parses buf as a Session packet. buf may be longer
// than the packet (e.g. a full ReceiveBuffer); only the leading
// SessionPacketWireSize bytes are consulted.
func DeserializeSession(buf []byte) (SessionPacket, error) {
	var p SessionPacket
	if err := checkTag(buf, TagSession, SessionPacketWireSize); err != nil {
		return p, err
	}
	p.SessionID = byteOrder.Uint32(fieldSlice(buf, sessionFields, "session_id"))
	p.Subtype = Subtype(fieldSlice(buf, sessionFields, "subtype")[0])
	p.Length = fieldSlice(buf, sessionFields, "length")[0]
	p.NESN = fieldSlice(buf, sessionFields, "nesn")[0]
	p.SN = fieldSlice(buf, sessionFields, "sn")[0]
	copy(p.Payload[:], fieldSlice(buf, sessionFields, "payload"))
	return p, nil
}

// DeserializeConnectionRequest parses buf as a ConnectionRequest packet.
func DeserializeConnectionRequest(buf []byte) (ConnectionRequestPacket, error) {
	var p ConnectionRequestPacket
	if err := checkTag(buf, TagConnectionRequest, ConnectionRequestPacketWireSize); err != nil {
		return p, err
	}
	p.SourceAddress = byteOrder.Uint32(fieldSlice(buf, connectionRequestFields, "source_address"))
	p.TargetAddress = byteOrder.Uint32(fieldSlice(buf, connectionRequestFields, "target_address"))
	return p, nil
}

// DeserializeConnectionAccept parses buf as a ConnectionAccept packet.
func DeserializeConnectionAccept(buf []byte) (ConnectionAcceptPacket, error) {
	var p ConnectionAcceptPacket
	if err := checkTag(buf, TagConnectionAccept, ConnectionAcceptPacketWireSize); err != nil {
		return p, err
	}
	p.SourceAddress = byteOrder.Uint32(fieldSlice(buf, connectionAcceptFields, "source_address"))
	p.TargetAddress = byteOrder.Uint32(fieldSlice(buf, connectionAcceptFields, "target_address"))
	p.SessionStartTime = wiretime.Decode(fieldSlice(buf, connectionAcceptFields, "session_start_time"))
	p.SessionID = byteOrder.Uint32(fieldSlice(buf, connectionAcceptFields, "session_id"))
	return p, nil
}

// DeserializeAdvertising parses buf as an Advertising packet.
func DeserializeAdvertising(buf []byte) (AdvertisingPacket, error) {
	var p AdvertisingPacket
	if err := checkTag(buf, TagAdvertising, AdvertisingPacketWireSize); err != nil {
		return p, err
	}
	p.SourceAddress = byteOrder.Uint32(fieldSlice(buf, advertisingFields, "source_address"))
	return p, nil
}

// PeekTag reads the leading tag byte of buf without otherwise interpreting
// it, so a caller can dispatch to the right Deserialize function. Returns
// ErrShortBuffer if buf is empty.
func PeekTag(buf []byte) (Tag, error) {
	if len(buf) < 1 {
		return 0, ErrShortBuffer
	}
	return Tag(buf[0]), nil
}

func checkTag(buf []byte, want Tag, wireSize int) error {
	if len(buf) < 1 {
		return ErrShortBuffer
	}
	if Tag(buf[0]) != want {
		return ErrTagMismatch
	}
	if len(buf) < wireSize {
		return ErrShortBuffer
	}
	return nil
}
