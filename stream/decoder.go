// Package stream decodes generation byte streams into protocol events and
// encodes events back out as server-sent event lines.
//
// Two wire formats are understood: the standard event-tagged format
// ("data: {json}" lines with a type discriminator) and the legacy
// prefix format ("0:", "9:", "a:" lines). Both decode into the same
// model.StreamEvent union; the format is detected per line, so consumers
// never learn which format a stream used.
package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"rudra/model"
)

const (
	ssePrefix  = "data: "
	doneMarker = "[DONE]"
)

// Decoder turns a raw byte stream into an ordered sequence of protocol
// events. It is a lazy, finite, non-restartable sequence: chunks are pulled
// from the reader only as events are requested, a stream-end event is
// produced exactly once when the source is exhausted, and afterwards Next
// returns io.EOF.
//
// Lines are assembled before any byte is interpreted, so chunk boundaries
// (including boundaries inside a multi-byte character or a JSON payload)
// cannot change the decoded event sequence.
type Decoder struct {
	r     *bufio.Reader
	ended bool
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next protocol event. Lines that match neither wire format
// or carry malformed payloads are skipped silently; a malformed line never
// aborts the stream. When the underlying source ends cleanly, Next returns a
// stream-end event once, then io.EOF. Any other read error (a dropped
// connection, a timeout) is returned as-is: a torn stream is not a finished
// one.
func (d *Decoder) Next() (model.StreamEvent, error) {
	if d.ended {
		return model.StreamEvent{}, io.EOF
	}

	for {
		line, err := d.r.ReadString('\n')
		if err != nil && err != io.EOF {
			// A partial line read before the failure is torn; never decode it.
			d.ended = true
			return model.StreamEvent{}, err
		}

		// A final line without a trailing newline is still a complete line
		// once the source is exhausted.
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			if ev, ok := decodeLine(trimmed); ok {
				return ev, nil
			}
		}

		if err == io.EOF {
			d.ended = true
			return model.StreamEndEvent(), nil
		}
	}
}

// decodeLine classifies a single complete line against both wire formats.
// Returns ok=false for blank, unrecognized, malformed, and [DONE] lines.
func decodeLine(line string) (model.StreamEvent, bool) {
	if strings.HasPrefix(line, ssePrefix) {
		return decodeDataLine(strings.TrimPrefix(line, ssePrefix))
	}
	if len(line) >= 2 && line[1] == ':' {
		switch line[0] {
		case '0', '9', 'a':
			return decodeLegacyLine(line[0], line[2:])
		}
	}
	return model.StreamEvent{}, false
}

// dataPayload is the standard format's event envelope.
type dataPayload struct {
	Type       string         `json:"type"`
	Delta      string         `json:"delta"`
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Output     map[string]any `json:"output"`
}

func decodeDataLine(payload string) (model.StreamEvent, bool) {
	// [DONE] ends meaningful content but produces no event; stream-end is
	// emitted when the byte source itself closes.
	if payload == doneMarker {
		return model.StreamEvent{}, false
	}

	var p dataPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return model.StreamEvent{}, false
	}

	switch p.Type {
	case "text-delta":
		return model.TextDeltaEvent(p.Delta), true
	case "tool-input-start":
		// Args are unknown at input-start time in this format.
		return model.ToolCallStartEvent(p.ToolCallID, p.ToolName, nil), true
	case "tool-output-available":
		return model.ToolCallResultEvent(p.ToolCallID, p.Output), true
	}
	return model.StreamEvent{}, false
}

// legacyPayload is the legacy format's object payload for the 9: and a:
// prefixes.
type legacyPayload struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args"`
	Result     map[string]any `json:"result"`
}

func decodeLegacyLine(prefix byte, payload string) (model.StreamEvent, bool) {
	switch prefix {
	case '0':
		var text string
		if err := json.Unmarshal([]byte(payload), &text); err != nil {
			return model.StreamEvent{}, false
		}
		return model.TextDeltaEvent(text), true
	case '9':
		var p legacyPayload
		if err := json.Unmarshal([]byte(payload), &p); err != nil || p.ToolCallID == "" {
			return model.StreamEvent{}, false
		}
		return model.ToolCallStartEvent(p.ToolCallID, p.ToolName, p.Args), true
	case 'a':
		var p legacyPayload
		if err := json.Unmarshal([]byte(payload), &p); err != nil || p.ToolCallID == "" {
			return model.StreamEvent{}, false
		}
		return model.ToolCallResultEvent(p.ToolCallID, p.Result), true
	}
	return model.StreamEvent{}, false
}
