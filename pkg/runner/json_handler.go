package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler implements IOHandler for structured JSON-Lines communication.
// Every turn is written as one JSON object; input lines may be JSON strings or raw text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Output writes the turn as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, turn Turn) error {
	return h.Encoder.Encode(turn)
}

// Input reads one line, unquoting it when it is a JSON string.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return SanitizeInput(text)
}

// SystemOutput writes {"system": msg}.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"system": msg})
}
