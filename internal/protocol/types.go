package protocol

import "github.com/danmuck/bcp/internal/wiretime"

// Tag identifies a packet type on the wire. It is always the first byte of
// every wire packet.
type Tag uint8

const (
	TagSession           Tag = 0
	TagConnectionRequest Tag = 1
	TagConnectionAccept  Tag = 2
	TagAdvertising       Tag = 3
)

func (t Tag) String() string {
	switch t {
	case TagSession:
		return "Session"
	case TagConnectionRequest:
		return "ConnectionRequest"
	case TagConnectionAccept:
		return "ConnectionAccept"
	case TagAdvertising:
		return "Advertising"
	default:
		return "Unknown"
	}
}

// Subtype distinguishes the kind of Session packet. Subtype 0 (NACK) is
// permitted on the wire today; tightening that is left for a future
// revision.
type Subtype uint8

const (
	SubtypeNack              Subtype = 0
	SubtypeData              Subtype = 1
	SubtypeConnectionRequest Subtype = 3
	SubtypeConnectionAccept  Subtype = 4
)

func (s Subtype) String() string {
	switch s {
	case SubtypeNack:
		return "NACK"
	case SubtypeData:
		return "DATA"
	case SubtypeConnectionRequest:
		return "CONNECTION_REQUEST"
	case SubtypeConnectionAccept:
		return "CONNECTION_ACCEPT"
	default:
		return "UNKNOWN"
	}
}

// MaxPayloadLengthBytes is the fixed payload width carried by every Session
// packet, regardless of how many bytes of it are actually in use (see
// Length).
const MaxPayloadLengthBytes = 32

// FIFOCapacity is the reference SX127x radio PHY's FIFO capacity in bytes.
// Every wire packet produced by this package must fit within it; this is
// verified once at package init (see fields.go).
const FIFOCapacity = 66

// Payload is the fixed-width application payload carried by a Session/DATA
// packet.
type Payload [MaxPayloadLengthBytes]byte

// SessionPacket is the tag-0 packet: the body of every in-session exchange.
type SessionPacket struct {
	SessionID uint32
	Subtype   Subtype
	Length    uint8
	NESN      uint8
	SN        uint8
	Payload   Payload
}

// ConnectionRequestPacket is the tag-1 packet, sent by a seeker to an
// advertiser to begin a handshake.
type ConnectionRequestPacket struct {
	SourceAddress uint32
	TargetAddress uint32
}

// ConnectionAcceptPacket is the tag-2 packet, sent by an advertiser back to
// the requester to complete a handshake and name the session's start time.
type ConnectionAcceptPacket struct {
	SourceAddress    uint32
	TargetAddress    uint32
	SessionStartTime wiretime.Point
	SessionID        uint32
}

// AdvertisingPacket is the tag-3 packet: a bare broadcast of presence.
type AdvertisingPacket struct {
	SourceAddress uint32
}

// ReceiveBuffer is a fixed-size byte buffer sized to the radio PHY's FIFO
// capacity. It is the destination of every radio.Receive call in this
// module; deserialization reads the leading tag byte out of it and
// validates against the expected type before touching the rest.
type ReceiveBuffer [FIFOCapacity]byte
