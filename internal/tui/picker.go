package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PickerItem represents an item in a picker.
type PickerItem struct {
	ID          string
	Title       string
	Description string
}

// FilterValue returns the string to filter on.
func (i PickerItem) FilterValue() string {
	return i.Title + " " + i.Description
}

var (
	pickerTitleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	pickerCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	pickerSelectedStyle = lipgloss.NewStyle().Bold(true)
	pickerMutedStyle    = lipgloss.NewStyle().Faint(true)
)

// pickerModel is the bubbletea model for a fuzzy picker.
type pickerModel struct {
	items        []PickerItem
	filtered     []PickerItem
	textInput    textinput.Model
	cursor       int
	selected     *PickerItem
	quitting     bool
	title        string
	maxVisible   int
	scrollOffset int
	emptyMessage string
}

func newPickerModel(items []PickerItem, title string) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Width = 40
	ti.Focus()

	return pickerModel{
		items:        items,
		filtered:     items,
		textInput:    ti,
		title:        title,
		maxVisible:   10,
		emptyMessage: "No items found",
	}
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if len(m.filtered) > 0 && m.cursor < len(m.filtered) {
				item := m.filtered[m.cursor]
				m.selected = &item
			}
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.scrollOffset {
					m.scrollOffset = m.cursor
				}
			}
		case "down", "ctrl+n":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				if m.cursor >= m.scrollOffset+m.maxVisible {
					m.scrollOffset = m.cursor - m.maxVisible + 1
				}
			}
		case "tab":
			if len(m.filtered) > 0 {
				item := m.filtered[0]
				m.selected = &item
			}
			return m, tea.Quit
		default:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			m.filtered = filterItems(m.items, m.textInput.Value())
			m.cursor = 0
			m.scrollOffset = 0
			return m, cmd
		}
	}
	return m, nil
}

// filterItems keeps items whose title or description contains the query,
// case insensitively.
func filterItems(items []PickerItem, query string) []PickerItem {
	if query == "" {
		return items
	}
	query = strings.ToLower(query)
	var result []PickerItem
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.FilterValue()), query) {
			result = append(result, item)
		}
	}
	return result
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render(m.title) + "\n\n")
	b.WriteString(m.textInput.View() + "\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(pickerMutedStyle.Render(m.emptyMessage))
		return b.String()
	}

	start := m.scrollOffset
	end := start + m.maxVisible
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	for i := start; i < end; i++ {
		item := m.filtered[i]
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = pickerCursorStyle.Render("> ")
			style = pickerSelectedStyle
		}
		line := cursor + style.Render(item.Title)
		if item.Description != "" {
			line += pickerMutedStyle.Render(" - " + item.Description)
		}
		b.WriteString(line + "\n")
	}

	if len(m.filtered) > m.maxVisible {
		b.WriteString("\n" + pickerMutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d", start+1, end, len(m.filtered))))
	}

	b.WriteString("\n" + pickerMutedStyle.Render("↑↓ navigate • enter select • esc cancel"))
	return b.String()
}

// Pick shows a fuzzy-search picker and returns the selected item.
// Returns nil if the user canceled.
func Pick(title string, items []PickerItem) (*PickerItem, error) {
	if len(items) == 1 {
		return &items[0], nil
	}

	m := newPickerModel(items, title)
	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}

	final := finalModel.(pickerModel) //nolint:errcheck // type assertion always succeeds here
	if final.quitting {
		return nil, nil
	}
	return final.selected, nil
}

// PickAccount shows a picker for stored accounts.
func PickAccount(accounts []PickerItem) (*PickerItem, error) {
	return Pick("Select an account", accounts)
}

// PickOrganization shows a picker for organizations.
func PickOrganization(orgs []PickerItem) (*PickerItem, error) {
	return Pick("Select an organization", orgs)
}

// PickCustomer shows a picker for customers.
func PickCustomer(customers []PickerItem) (*PickerItem, error) {
	return Pick("Select a customer", customers)
}

// PickInvoice shows a picker for invoices.
func PickInvoice(invoices []PickerItem) (*PickerItem, error) {
	return Pick("Select an invoice", invoices)
}
