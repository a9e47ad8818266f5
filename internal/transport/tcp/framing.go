package tcp

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// maxLineBytes caps a single response line; anything longer is rejected
// as a protocol error without tearing down the connection.
const maxLineBytes = 16 * 1024 * 1024

// writeCommand serializes cmd as one JSON line terminated by \n.
func writeCommand(w *bufio.Writer, cmd Command) error {
	encoded, err := json.Marshal(cmd)
	if err != nil {
		return bridgeerr.Wrap(bridgeerr.Internal, "encoding command", err)
	}
	if _, err := w.Write(encoded); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// readResponse reads one newline-terminated JSON line from r and decodes
// it as a Response. The reader retains any bytes after the line for the
// next call, so a caller that times out leaves the stream in a defined
// state for the next reader. Lines are
// accumulated incrementally and capped at maxLineBytes so a runaway frame
// cannot be used to exhaust memory before the limit is enforced.
func readResponse(r *bufio.Reader) (Response, error) {
	line, err := readLineCapped(r, maxLineBytes)
	if err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, bridgeerr.Wrap(bridgeerr.ProtocolError, "malformed response frame", err)
	}
	return resp, nil
}

func readLineCapped(r *bufio.Reader, limit int) ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > limit {
			// Drain the rest of this over-long line so the connection's
			// reader is left at the next frame boundary.
			for isPrefix {
				_, isPrefix, err = r.ReadLine()
				if err != nil {
					break
				}
			}
			return nil, bridgeerr.New(bridgeerr.ProtocolError,
				fmt.Sprintf("response line exceeds %d bytes", limit))
		}
		if !isPrefix {
			return line, nil
		}
	}
}
