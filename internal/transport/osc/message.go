// Package osc implements the OSC bridge client: a request/response
// bridge over two UDP ports to an in-DAW scripting device, carrying
// standard OSC 1.0 packets. The wire format is a small, fully specified
// binary layout, so the codec is hand-rolled rather than given a
// dependency.
package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// encodeMessage builds an OSC 1.0 message: address string, type-tag
// string, then each argument in order. Supported argument kinds are
// int32 ("i"), float32 ("f"), and string ("s"), the set the bridge
// accepts.
func encodeMessage(address string, args ...any) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(oscString(address))

	tags := []byte{','}
	var encodedArgs bytes.Buffer
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			tags = append(tags, 'i')
			writeInt32(&encodedArgs, int32(v))
		case int32:
			tags = append(tags, 'i')
			writeInt32(&encodedArgs, v)
		case float32:
			tags = append(tags, 'f')
			writeFloat32(&encodedArgs, v)
		case float64:
			tags = append(tags, 'f')
			writeFloat32(&encodedArgs, float32(v))
		case string:
			tags = append(tags, 's')
			encodedArgs.Write(oscString(v))
		default:
			return nil, bridgeerr.Newf(bridgeerr.Internal, "unsupported OSC argument type %T", arg)
		}
	}

	buf.Write(oscString(string(tags)))
	buf.Write(encodedArgs.Bytes())
	return buf.Bytes(), nil
}

// decodeMessage parses an OSC 1.0 message, returning its address and
// decoded arguments as int32, float32, or string values matching the type
// tags.
func decodeMessage(data []byte) (address string, args []any, err error) {
	address, rest, err := readOSCString(data)
	if err != nil {
		return "", nil, bridgeerr.Wrap(bridgeerr.ProtocolError, "reading OSC address", err)
	}
	tagString, rest, err := readOSCString(rest)
	if err != nil {
		return "", nil, bridgeerr.Wrap(bridgeerr.ProtocolError, "reading OSC type tags", err)
	}
	if len(tagString) == 0 || tagString[0] != ',' {
		return "", nil, bridgeerr.New(bridgeerr.ProtocolError, "OSC type tag string missing leading comma")
	}

	for _, tag := range tagString[1:] {
		switch tag {
		case 'i':
			if len(rest) < 4 {
				return "", nil, bridgeerr.New(bridgeerr.ProtocolError, "truncated OSC int32 argument")
			}
			args = append(args, int32(binary.BigEndian.Uint32(rest[:4])))
			rest = rest[4:]
		case 'f':
			if len(rest) < 4 {
				return "", nil, bridgeerr.New(bridgeerr.ProtocolError, "truncated OSC float32 argument")
			}
			bits := binary.BigEndian.Uint32(rest[:4])
			args = append(args, math.Float32frombits(bits))
			rest = rest[4:]
		case 's':
			var s string
			s, rest, err = readOSCString(rest)
			if err != nil {
				return "", nil, bridgeerr.Wrap(bridgeerr.ProtocolError, "reading OSC string argument", err)
			}
			args = append(args, s)
		default:
			return "", nil, bridgeerr.Newf(bridgeerr.ProtocolError, "unsupported OSC type tag %q", tag)
		}
	}
	return address, args, nil
}

// oscString encodes s as a null-terminated, 4-byte-aligned OSC string.
func oscString(s string) []byte {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// readOSCString reads one OSC string from the front of data, returning the
// string and the remaining bytes.
func readOSCString(data []byte) (string, []byte, error) {
	idx := bytes.IndexByte(data, 0)
	if idx < 0 {
		return "", nil, fmt.Errorf("unterminated OSC string")
	}
	s := string(data[:idx])
	aligned := (idx + 4) &^ 3 // next multiple of 4 after the null terminator
	if aligned > len(data) {
		return "", nil, fmt.Errorf("OSC string padding exceeds buffer")
	}
	return s, data[aligned:], nil
}

func writeInt32(buf *bytes.Buffer, v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	buf.Write(tmp[:])
}

func writeFloat32(buf *bytes.Buffer, v float32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], math.Float32bits(v))
	buf.Write(tmp[:])
}
