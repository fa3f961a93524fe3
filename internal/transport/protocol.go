// Package transport is the framed game-message path over websockets.
//
// Frames are [type:u8][payload...]. Types with the high bit clear (1-127)
// are time-critical and handed to the fast path on the read goroutine;
// types with the high bit set (128+) are time-deferrable and enqueued into
// the worker pool.
package transport

import "github.com/pkg/errors"

// MessageType is the leading byte of every frame.
type MessageType uint8

const (
	TypeInvalid MessageType = 0

	// Time critical.
	TypePlayerInput MessageType = 1
	TypeGameState   MessageType = 2

	// Time deferrable.
	TypeInitializeWorld   MessageType = 128
	TypeRequestInventory  MessageType = 129
	TypeResponseInventory MessageType = 130
	TypeRequestOpenPack   MessageType = 131
	TypeResponseOpenPack  MessageType = 132
)

// Deferred reports whether the type is time-deferrable (high bit set).
func (t MessageType) Deferred() bool {
	return t >= 128
}

// EncodeFrame prepends the type byte to the payload.
func EncodeFrame(t MessageType, payload []byte) []byte {
	frame := make([]byte, 0, 1+len(payload))
	frame = append(frame, byte(t))
	return append(frame, payload...)
}

// DecodeFrame splits a frame into its type and payload. The payload slice
// aliases the input.
func DecodeFrame(frame []byte) (MessageType, []byte, error) {
	if len(frame) == 0 {
		return TypeInvalid, nil, errors.New("empty frame")
	}
	return MessageType(frame[0]), frame[1:], nil
}
