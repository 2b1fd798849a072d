// Package pipe connects a running session to the application layer: it
// supplies outgoing payloads and hands off incoming ones.
package pipe

import "github.com/danmuck/bcp/internal/protocol"

// GetMessageFunc supplies the next outgoing payload, or nil if there is
// nothing to send. A returned payload longer than
// protocol.MaxPayloadLengthBytes is truncated by
// MessagePipe.GetNextMessageToSend before it reaches the session.
type GetMessageFunc func() []byte

// ReceiveMessageFunc hands off a fully-received payload to the
// application. It is called at most once per distinct sequence number.
type ReceiveMessageFunc func(payload []byte)

// MessagePipe is the callback pair a Session uses to exchange payloads
// with whatever owns it. The zero value never sends anything and drops
// everything it receives.
type MessagePipe struct {
	getMessage     GetMessageFunc
	receiveMessage ReceiveMessageFunc
}

// New builds a MessagePipe from a send source and a receive sink. Either
// may be nil, in which case the corresponding default behavior applies.
func New(getMessage GetMessageFunc, receiveMessage ReceiveMessageFunc) MessagePipe {
	return MessagePipe{getMessage: getMessage, receiveMessage: receiveMessage}
}

// GetNextMessageToSend returns the next outgoing payload, or nil if there
// is nothing to send right now.
func (p MessagePipe) GetNextMessageToSend() []byte {
	if p.getMessage == nil {
		return nil
	}
	msg := p.getMessage()
	if len(msg) > protocol.MaxPayloadLengthBytes {
		msg = msg[:protocol.MaxPayloadLengthBytes]
	}
	return msg
}

// DepositReceivedMessage hands payload to the configured sink, or drops
// it silently if none was configured.
func (p MessagePipe) DepositReceivedMessage(payload []byte) {
	if p.receiveMessage == nil {
		return
	}
	p.receiveMessage(payload)
}
