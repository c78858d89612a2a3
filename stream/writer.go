package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"rudra/model"
)

// Writer encodes protocol events as standard-format "data: {json}" lines.
// If the underlying writer supports http.Flusher, each event is flushed
// immediately so clients see deltas as they are generated.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter creates an event writer on top of w.
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: w}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// WriteEvent encodes one event. A stream-end event is written as the [DONE]
// marker; the actual end of stream is the response body closing.
func (sw *Writer) WriteEvent(ev model.StreamEvent) error {
	if ev.Type == model.EventStreamEnd {
		return sw.writeLine(doneMarker)
	}

	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return sw.writeLine(string(payload))
}

func (sw *Writer) writeLine(payload string) error {
	if _, err := fmt.Fprintf(sw.w, "%s%s\n", ssePrefix, payload); err != nil {
		return err
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}

func encodeEvent(ev model.StreamEvent) ([]byte, error) {
	switch ev.Type {
	case model.EventTextDelta:
		return json.Marshal(map[string]any{
			"type":  "text-delta",
			"delta": ev.Text,
		})
	case model.EventToolCallStart:
		return json.Marshal(map[string]any{
			"type":       "tool-input-start",
			"toolCallId": ev.ToolCallID,
			"toolName":   ev.ToolName,
		})
	case model.EventToolCallResult:
		return json.Marshal(map[string]any{
			"type":       "tool-output-available",
			"toolCallId": ev.ToolCallID,
			"output":     ev.Result,
		})
	}
	return nil, fmt.Errorf("unknown stream event type: %s", ev.Type)
}
