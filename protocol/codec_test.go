package protocol

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripEncodablePackets(t *testing.T) {
	packets := []Packet{
		KeepAlive{ID: 0},
		KeepAlive{ID: 123456789},
		KeepAlive{ID: -1},
		KeepAlive{ID: math.MaxInt32},
		KeepAlive{ID: math.MinInt32},
		LoginResponse{
			EntityID:    1,
			Seed:        7372904636961397206,
			GameMode:    1,
			Dimension:   0,
			Difficulty:  2,
			WorldHeight: 127,
			MaxPlayers:  20,
		},
		LoginResponse{EntityID: math.MaxInt32, Seed: math.MinInt64, GameMode: 0, Dimension: -1, Difficulty: 3, WorldHeight: 127, MaxPlayers: 100},
		LoginResponse{},
		Handshake{Value: "-"},
		Handshake{Value: ""},
		Chat{Message: "<Steve> hello"},
		Chat{Message: ""},
		Chat{Message: "§eSteve joined the game"},
		Disconnect{Reason: "Server shutting down"},
	}

	for _, p := range packets {
		frame, err := Encode(p)
		require.NoError(t, err, "%#v", p)

		decoded, err := Decode(frame)
		require.NoError(t, err, "%#v", p)
		assert.Equal(t, p, decoded)
	}
}

func TestRoundTripMaxLengthString(t *testing.T) {
	msg := strings.Repeat("a", math.MaxUint16)
	frame, err := Encode(Chat{Message: msg})
	require.NoError(t, err)

	decoded, err := Decode(frame)
	require.NoError(t, err)
	require.Equal(t, Chat{Message: msg}, decoded)

	_, err = Encode(Chat{Message: msg + "a"})
	require.Error(t, err)
}

func TestDecodeInboundLogin(t *testing.T) {
	frame, err := Encode(Chat{Message: "Steve"})
	require.NoError(t, err)

	// Splice a protocol version ahead of the username string.
	login := append([]byte{TagLogin, 0, 0, 0, 61}, frame[1:]...)
	decoded, err := Decode(login)
	require.NoError(t, err)
	assert.Equal(t, Login{ProtocolVersion: 61, Username: "Steve"}, decoded)
}

func TestDecodeUndersizedFrames(t *testing.T) {
	frames := [][]byte{
		{},
		{TagKeepAlive},
		{TagKeepAlive, 0x00, 0x01},
		{TagLogin},
		{TagLogin, 0, 0, 0, 61},
		{TagLogin, 0, 0, 0, 61, 0x00},
		{TagHandshake},
		{TagHandshake, 0x00},
		{TagChat, 0x00, 0x05, 'h', 'i'}, // length prefix past the end
		{TagDisconnect, 0xFF, 0xFF},
	}

	for _, frame := range frames {
		_, err := Decode(frame)
		var decErr *DecodeError
		require.ErrorAs(t, err, &decErr, "% X", frame)
	}
}

func TestDecodeUnknownTagPreservesRaw(t *testing.T) {
	frame := []byte{0x0B, 0xDE, 0xAD, 0xBE, 0xEF}
	decoded, err := Decode(frame)
	require.NoError(t, err)

	unknown, ok := decoded.(Unknown)
	require.True(t, ok)
	assert.Equal(t, byte(0x0B), unknown.Tag)
	assert.Equal(t, frame, unknown.Raw)

	// A one-byte frame with an unhandled tag is still well formed.
	decoded, err = Decode([]byte{0x12})
	require.NoError(t, err)
	assert.Equal(t, Unknown{Tag: 0x12, Raw: []byte{0x12}}, decoded)
}

func TestEncodeUnsupportedPackets(t *testing.T) {
	for _, p := range []Packet{
		Login{ProtocolVersion: 61, Username: "Steve"},
		Unknown{Tag: 0x0B, Raw: []byte{0x0B}},
	} {
		_, err := Encode(p)
		require.ErrorIs(t, err, ErrUnsupportedPacket, "%#v", p)
	}
}
