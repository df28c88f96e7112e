package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/itchyny/gojq"
)

// Response is the success envelope for JSON output.
type Response struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// ErrorResponse is the error envelope for JSON output.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

// Format specifies the output format.
type Format int

const (
	FormatAuto Format = iota // Auto-detect: TTY -> styled, non-TTY -> JSON
	FormatJSON
	FormatStyled
	FormatQuiet // Data only, no envelope
)

// Options controls output behavior.
type Options struct {
	Format Format
	Writer io.Writer
	Filter string // gojq expression applied to the data payload
}

// Writer handles all output formatting.
type Writer struct {
	opts Options
}

// New creates a new output writer.
func New(opts Options) *Writer {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &Writer{opts: opts}
}

// OK outputs a success response.
func (w *Writer) OK(data any, opts ...ResponseOption) error {
	resp := &Response{OK: true, Data: data}
	for _, opt := range opts {
		opt(resp)
	}

	if w.opts.Filter != "" {
		return w.writeFiltered(resp.Data)
	}
	return w.write(resp)
}

// Err outputs an error response.
func (w *Writer) Err(err error) error {
	e := AsError(err)
	resp := &ErrorResponse{
		OK:    false,
		Error: e.Message,
		Code:  e.Code,
		Hint:  e.Hint,
	}
	return w.write(resp)
}

func (w *Writer) write(v any) error {
	format := w.opts.Format

	if format == FormatAuto {
		if isTTY(w.opts.Writer) {
			format = FormatStyled
		} else {
			format = FormatJSON
		}
	}

	switch format {
	case FormatQuiet:
		if resp, ok := v.(*Response); ok {
			return w.writeJSON(resp.Data)
		}
		return w.writeJSON(v)
	case FormatStyled:
		return w.writeStyled(v)
	default:
		return w.writeJSON(v)
	}
}

// writeFiltered runs the configured gojq expression over the data payload
// and emits each produced value as a JSON line. Filtering bypasses the
// envelope entirely so results compose with shell pipelines.
func (w *Writer) writeFiltered(data any) error {
	query, err := gojq.Parse(w.opts.Filter)
	if err != nil {
		return ErrUsageHint("Invalid --jq expression", err.Error())
	}

	// Round-trip through JSON so typed structs become plain maps/slices,
	// which is what gojq operates on.
	normalized, err := normalizeData(data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w.opts.Writer)
	iter := query.Run(normalized)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if qerr, isErr := v.(error); isErr {
			return ErrUsageHint("--jq evaluation failed", qerr.Error())
		}
		if s, isStr := v.(string); isStr {
			// Bare strings print raw, matching jq -r ergonomics.
			fmt.Fprintln(w.opts.Writer, s)
			continue
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// normalizeData converts any value to plain JSON-shaped Go types.
func normalizeData(data any) (any, error) {
	if data == nil {
		return nil, nil
	}
	if raw, ok := data.(json.RawMessage); ok {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// isTTY checks if the writer is a terminal.
func isTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.opts.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ResponseOption modifies a Response.
type ResponseOption func(*Response)

// WithSummary adds a summary to the response.
func WithSummary(s string) ResponseOption {
	return func(r *Response) { r.Summary = s }
}
