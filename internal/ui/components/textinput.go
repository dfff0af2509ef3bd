package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textinput. With NumericOnly set, printable
// non-digit keys are dropped.
type TextInput struct {
	Model       textinput.Model
	NumericOnly bool
}

// NewTextInput returns a focused input with the given prompt and
// placeholder. charLimit <= 0 means unlimited.
func NewTextInput(prompt, placeholder string, numericOnly bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.Focus()
	return TextInput{Model: ti, NumericOnly: numericOnly}
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && t.NumericOnly && len(kmsg.Text) > 0 {
		for _, r := range kmsg.Text {
			if r < '0' || r > '9' {
				return t, nil
			}
		}
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	return t.Model.View()
}

func (t TextInput) Value() string {
	return t.Model.Value()
}

// NumericValue parses the input as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Model.Value())
}
