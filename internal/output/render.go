package output

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleSummary = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleHint    = lipgloss.NewStyle().Faint(true)
)

// writeStyled renders a compact terminal view: the summary (or error) line
// styled, followed by the data payload as indented JSON when present.
func (w *Writer) writeStyled(v any) error {
	switch resp := v.(type) {
	case *Response:
		if resp.Summary != "" {
			fmt.Fprintln(w.opts.Writer, styleSummary.Render(resp.Summary))
		}
		if resp.Data != nil {
			return w.writeDataJSON(resp.Data)
		}
		return nil
	case *ErrorResponse:
		fmt.Fprintln(w.opts.Writer, styleError.Render("Error: "+resp.Error))
		if resp.Hint != "" {
			fmt.Fprintln(w.opts.Writer, styleHint.Render(resp.Hint))
		}
		return nil
	default:
		return w.writeJSON(v)
	}
}

func (w *Writer) writeDataJSON(data any) error {
	normalized, err := normalizeData(data)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w.opts.Writer, string(b))
	return nil
}
