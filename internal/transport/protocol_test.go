package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	frame := EncodeFrame(TypeRequestInventory, []byte(`{"token":"abc"}`))

	typ, payload, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, TypeRequestInventory, typ)
	assert.Equal(t, []byte(`{"token":"abc"}`), payload)
}

func TestDecodeEmptyFrame(t *testing.T) {
	_, _, err := DecodeFrame(nil)
	assert.Error(t, err)
}

func TestEmptyPayloadFrame(t *testing.T) {
	typ, payload, err := DecodeFrame(EncodeFrame(TypeInitializeWorld, nil))
	require.NoError(t, err)
	assert.Equal(t, TypeInitializeWorld, typ)
	assert.Empty(t, payload)
}

func TestHighBitPartition(t *testing.T) {
	assert.False(t, TypePlayerInput.Deferred())
	assert.False(t, TypeGameState.Deferred())
	assert.False(t, MessageType(127).Deferred())

	assert.True(t, TypeInitializeWorld.Deferred())
	assert.True(t, TypeRequestInventory.Deferred())
	assert.True(t, TypeResponseInventory.Deferred())
	assert.True(t, TypeRequestOpenPack.Deferred())
	assert.True(t, TypeResponseOpenPack.Deferred())
	assert.True(t, MessageType(255).Deferred())
}

func TestFrameTypeValues(t *testing.T) {
	// Wire compatibility: these values are fixed.
	assert.Equal(t, MessageType(128), TypeInitializeWorld)
	assert.Equal(t, MessageType(129), TypeRequestInventory)
	assert.Equal(t, MessageType(130), TypeResponseInventory)
	assert.Equal(t, MessageType(131), TypeRequestOpenPack)
	assert.Equal(t, MessageType(132), TypeResponseOpenPack)
}
