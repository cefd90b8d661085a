// Package protocol defines the message schema exchanged between the dispatch
// engine and the worker process, along with the framed JSON codec used to
// ship messages over the worker's stdio pipes.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ljmurray/squircle/internal/geom"
)

// MaxMessageSize is the maximum allowed message payload (1 MiB). Path data
// for a full outline is a few kilobytes, so anything near the limit is a
// corrupt frame.
const MaxMessageSize = 1 << 20

// Request type discriminants.
const (
	TypeSymmetric  = "GENERATE_PATH_SYMMETRIC"
	TypeAsymmetric = "GENERATE_PATH_ASYMMETRIC"
)

// Request asks the worker to generate one outline. Type selects the
// generator variant; ID is echoed on the response so the engine can match
// replies to callers. Corners is set only for asymmetric requests.
type Request struct {
	Type     string                `json:"type"`
	ID       string                `json:"id"`
	Width    float64               `json:"width"`
	Height   float64               `json:"height"`
	Exponent float64               `json:"exponent,omitempty"`
	Corners  *geom.CornerExponents `json:"corners,omitempty"`
}

// Response carries the outcome of one request. Exactly one of PathData and
// Error is set.
type Response struct {
	ID       string `json:"id"`
	PathData string `json:"path_data,omitempty"`
	Error    string `json:"error,omitempty"`
}

// WriteMessage writes a length-prefixed JSON message to w.
// The frame format is: 4-byte big-endian length prefix followed by the JSON payload.
func WriteMessage(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	length := uint32(len(data))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	return nil
}

// ReadMessage reads a length-prefixed JSON message from r and decodes it into v.
func ReadMessage(r io.Reader, v any) error {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return fmt.Errorf("read length prefix: %w", err)
	}

	if length > MaxMessageSize {
		return fmt.Errorf("message size %d exceeds maximum %d", length, MaxMessageSize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	return nil
}
