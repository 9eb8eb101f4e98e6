// Package protocol implements the Kaillera wire framing: datagram
// splitting/joining (codec.go) and the individual message payloads
// (messages.go). The reader/writer helpers in bitstream.go play the same role as
// the teacher's BitStream in source/protocol/raknet.go, adapted to this
// protocol's little-endian integers and NUL-terminated strings instead of
// RakNet's big-endian fields and length-prefixed strings.
package protocol

import (
	"encoding/binary"
	"errors"
)

// ErrMalformedFrame is returned by DecodeDatagram when a datagram violates the
// wire framing: a message length of zero, a payload that runs past the
// end of the datagram, or a declared message count the datagram doesn't
// actually contain.
var ErrMalformedFrame = errors.New("protocol: malformed frame")

// Message is one decoded wire message: a sequence number, a one-byte type
// code, and the payload that follows it.
type Message struct {
	Seq     uint16
	Type    byte
	Payload []byte
}

// Encode serializes a single message as it appears inside a datagram:
// seq:u16_le, len:u16_le (payload length + 1 for the type byte),
// type:u8, payload.
func Encode(m Message) []byte {
	buf := make([]byte, 5+len(m.Payload))
	binary.LittleEndian.PutUint16(buf[0:2], m.Seq)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(m.Payload)+1))
	buf[4] = m.Type
	copy(buf[5:], m.Payload)
	return buf
}

// EncodeDatagram bundles count:u8 followed by the encoding of each
// message, in the order given.
func EncodeDatagram(messages []Message) []byte {
	out := make([]byte, 1, 1+len(messages)*8)
	out[0] = byte(len(messages))
	for _, m := range messages {
		out = append(out, Encode(m)...)
	}
	return out
}

// DecodeDatagram splits a raw datagram into its constituent messages per
// §4.1: count:u8 followed by count messages of seq:u16_le, len:u16_le,
// type:u8, payload(len-1).
func DecodeDatagram(data []byte) ([]Message, error) {
	if len(data) < 1 {
		return nil, ErrMalformedFrame
	}
	count := int(data[0])
	offset := 1

	messages := make([]Message, 0, count)
	for i := 0; i < count; i++ {
		if offset+5 > len(data) {
			return nil, ErrMalformedFrame
		}
		seq := binary.LittleEndian.Uint16(data[offset : offset+2])
		length := binary.LittleEndian.Uint16(data[offset+2 : offset+4])
		if length < 1 {
			return nil, ErrMalformedFrame
		}
		msgType := data[offset+4]
		payloadLen := int(length) - 1
		payloadStart := offset + 5
		payloadEnd := payloadStart + payloadLen
		if payloadEnd > len(data) {
			return nil, ErrMalformedFrame
		}
		payload := make([]byte, payloadLen)
		copy(payload, data[payloadStart:payloadEnd])

		messages = append(messages, Message{Seq: seq, Type: msgType, Payload: payload})
		offset = payloadEnd
	}

	if len(messages) != count {
		return nil, ErrMalformedFrame
	}
	return messages, nil
}
