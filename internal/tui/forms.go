// Package tui provides the interactive prompts and pickers used when the
// tool runs attached to a terminal.
package tui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// ConfirmDangerous shows a confirmation prompt for destructive actions.
func ConfirmDangerous(message string) (bool, error) {
	var result bool
	err := huh.NewConfirm().
		Title(message).
		Description("This action cannot be undone.").
		Affirmative("Yes, I'm sure").
		Negative("Cancel").
		Value(&result).
		Run()
	if err != nil {
		return false, err
	}
	return result, nil
}

// InputRequired shows a required text input prompt.
func InputRequired(title, placeholder string) (string, error) {
	var result string
	err := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&result).
		Validate(requireValue).
		Run()
	return result, err
}

// InputSecret shows a masked input prompt for secrets.
func InputSecret(title string) (string, error) {
	var result string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&result).
		Validate(requireValue).
		Run()
	return result, err
}

func requireValue(s string) error {
	if s == "" {
		return errors.New("this field is required")
	}
	return nil
}

// FormField represents a field in a form.
type FormField struct {
	Key         string
	Title       string
	Placeholder string
	Required    bool
	Default     string
}

// Form shows a multi-field form and returns a map of key -> value.
func Form(title string, fields []FormField) (map[string]string, error) {
	results := make(map[string]string)
	values := make([]*string, len(fields))

	huhFields := make([]huh.Field, len(fields))
	for i, f := range fields {
		value := f.Default
		values[i] = &value

		input := huh.NewInput().
			Title(f.Title).
			Placeholder(f.Placeholder).
			Value(values[i])

		if f.Required {
			input = input.Validate(requireValue)
		}

		huhFields[i] = input
	}

	form := huh.NewForm(
		huh.NewGroup(huhFields...).Title(title),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	for i, f := range fields {
		results[f.Key] = *values[i]
	}

	return results, nil
}
