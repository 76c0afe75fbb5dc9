package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedPacket is returned by Encode for packet kinds with no
// outbound wire format. Hitting it is a programming error at the call site.
var ErrUnsupportedPacket = errors.New("protocol: unsupported packet")

// DecodeError reports a frame too short for the layout its leading tag
// implies. Unrecognized tags never produce a DecodeError.
type DecodeError struct {
	Tag  byte
	Size int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("protocol: undersized frame for tag 0x%02X (%d bytes)", e.Tag, e.Size)
}

// loginResponseTail is the byte count after the entity ID and the unused
// string slot: seed i64, game mode i32, then four i8 fields.
const loginResponseTail = 8 + 4 + 1 + 1 + 1 + 1

// Decode parses one transport frame into a Packet. A frame with an
// unrecognized tag decodes to Unknown with its raw bytes preserved; only an
// undersized frame fails.
func Decode(frame []byte) (Packet, error) {
	if len(frame) == 0 {
		return nil, &DecodeError{Size: 0}
	}
	tag := frame[0]
	body := frame[1:]

	switch tag {
	case TagKeepAlive:
		if len(body) < 4 {
			return nil, &DecodeError{Tag: tag, Size: len(frame)}
		}
		return KeepAlive{ID: int32(binary.BigEndian.Uint32(body))}, nil

	case TagLogin:
		if len(body) < 4 {
			return nil, &DecodeError{Tag: tag, Size: len(frame)}
		}
		first := int32(binary.BigEndian.Uint32(body))
		str, rest, ok := readString(body[4:])
		if !ok {
			return nil, &DecodeError{Tag: tag, Size: len(frame)}
		}
		if len(rest) >= loginResponseTail {
			return decodeLoginResponse(first, rest), nil
		}
		return Login{ProtocolVersion: first, Username: str}, nil

	case TagHandshake:
		str, _, ok := readString(body)
		if !ok {
			return nil, &DecodeError{Tag: tag, Size: len(frame)}
		}
		return Handshake{Value: str}, nil

	case TagChat:
		str, _, ok := readString(body)
		if !ok {
			return nil, &DecodeError{Tag: tag, Size: len(frame)}
		}
		return Chat{Message: str}, nil

	case TagDisconnect:
		str, _, ok := readString(body)
		if !ok {
			return nil, &DecodeError{Tag: tag, Size: len(frame)}
		}
		return Disconnect{Reason: str}, nil

	default:
		raw := make([]byte, len(frame))
		copy(raw, frame)
		return Unknown{Tag: tag, Raw: raw}, nil
	}
}

func decodeLoginResponse(entityID int32, rest []byte) LoginResponse {
	return LoginResponse{
		EntityID:    entityID,
		Seed:        int64(binary.BigEndian.Uint64(rest)),
		GameMode:    int32(binary.BigEndian.Uint32(rest[8:])),
		Dimension:   int8(rest[12]),
		Difficulty:  int8(rest[13]),
		WorldHeight: int8(rest[14]),
		MaxPlayers:  int8(rest[15]),
	}
}

// Encode serializes an outbound packet. Only the server-to-client forms have
// a wire layout; encoding anything else fails with ErrUnsupportedPacket.
func Encode(p Packet) ([]byte, error) {
	switch p := p.(type) {
	case KeepAlive:
		buf := make([]byte, 5)
		buf[0] = TagKeepAlive
		binary.BigEndian.PutUint32(buf[1:], uint32(p.ID))
		return buf, nil

	case LoginResponse:
		buf := make([]byte, 0, 7+loginResponseTail)
		buf = append(buf, TagLogin)
		buf = binary.BigEndian.AppendUint32(buf, uint32(p.EntityID))
		buf = appendString(buf, "") // unused field in the 1.5.2 layout
		buf = binary.BigEndian.AppendUint64(buf, uint64(p.Seed))
		buf = binary.BigEndian.AppendUint32(buf, uint32(p.GameMode))
		buf = append(buf, byte(p.Dimension), byte(p.Difficulty), byte(p.WorldHeight), byte(p.MaxPlayers))
		return buf, nil

	case Handshake:
		return encodeStringPacket(TagHandshake, p.Value)

	case Chat:
		return encodeStringPacket(TagChat, p.Message)

	case Disconnect:
		return encodeStringPacket(TagDisconnect, p.Reason)

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPacket, p)
	}
}

func encodeStringPacket(tag byte, s string) ([]byte, error) {
	if len(s) > math.MaxUint16 {
		return nil, fmt.Errorf("protocol: string of %d bytes exceeds length prefix", len(s))
	}
	buf := make([]byte, 0, 3+len(s))
	buf = append(buf, tag)
	buf = appendString(buf, s)
	return buf, nil
}

// readString parses a u16 length prefix followed by that many UTF-8 bytes,
// returning the remainder of the buffer after the string.
func readString(b []byte) (string, []byte, bool) {
	if len(b) < 2 {
		return "", nil, false
	}
	n := int(binary.BigEndian.Uint16(b))
	if len(b) < 2+n {
		return "", nil, false
	}
	return string(b[2 : 2+n]), b[2+n:], true
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}
