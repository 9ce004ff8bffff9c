package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dod/internal/form"
	"github.com/Makepad-fr/dod/internal/ui"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindPassword
	kindNumber
	kindToggle
	kindChoice
)

// field is one labelled input of a form screen or dialog.
type field struct {
	name  string
	label string
	kind  fieldKind
	input textinput.Model

	on      bool     // kindToggle
	choices []string // kindChoice
	choice  int      // -1 until picked

	err string
}

func textField(name, label, placeholder string, limit int) field {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return field{name: name, label: label, kind: kindText, input: ti, choice: -1}
}

func passwordField(name, label string) field {
	f := textField(name, label, "", 128)
	f.kind = kindPassword
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func numberField(name, label string, def int) field {
	f := textField(name, label, "0", 9)
	f.kind = kindNumber
	f.input.SetValue(strconv.Itoa(def))
	f.input.Validate = func(s string) error {
		if s == "" || s == "-" {
			return nil
		}
		_, err := strconv.Atoi(s)
		return err
	}
	return f
}

func toggleField(name, label string, on bool) field {
	return field{name: name, label: label, kind: kindToggle, on: on, choice: -1}
}

func choiceField(name, label string, choices ...string) field {
	return field{name: name, label: label, kind: kindChoice, choices: choices, choice: -1}
}

func (f field) value() string {
	switch f.kind {
	case kindToggle:
		return strconv.FormatBool(f.on)
	case kindChoice:
		if f.choice < 0 {
			return ""
		}
		return f.choices[f.choice]
	}
	return f.input.Value()
}

func (f field) intValue() int {
	n, _ := strconv.Atoi(strings.TrimSpace(f.input.Value()))
	return n
}

func (f field) isInput() bool {
	return f.kind == kindText || f.kind == kindPassword || f.kind == kindNumber
}

func (f field) view(focused bool) string {
	t := ui.Current()
	label := t.Muted.Render(f.label)
	if focused {
		label = t.Accent.Render(f.label)
	}
	var body string
	switch f.kind {
	case kindToggle:
		box := t.BoxUnchecked
		if f.on {
			box = t.BoxChecked
		}
		body = box + " " + t.Help.Render("(space to toggle)")
	case kindChoice:
		parts := make([]string, len(f.choices))
		for i, c := range f.choices {
			if i == f.choice {
				parts[i] = t.Selected.Render(" " + c + " ")
			} else {
				parts[i] = " " + c + " "
			}
		}
		body = strings.Join(parts, " ") + " " + t.Help.Render("(←/→)")
	default:
		body = f.input.View()
	}
	out := label + "\n" + body
	if f.err != "" {
		out += "\n" + t.Error.Render(f.err)
	}
	return out
}

// fieldSet drives focus and input across a form's fields.
type fieldSet struct {
	fields []field
	focus  int
}

func newFieldSet(fields ...field) fieldSet {
	fs := fieldSet{fields: fields}
	fs.applyFocus()
	return fs
}

func (fs *fieldSet) applyFocus() {
	for i := range fs.fields {
		if !fs.fields[i].isInput() {
			continue
		}
		if i == fs.focus {
			fs.fields[i].input.Focus()
		} else {
			fs.fields[i].input.Blur()
		}
	}
}

func (fs *fieldSet) next() {
	fs.focus = (fs.focus + 1) % len(fs.fields)
	fs.applyFocus()
}

func (fs *fieldSet) prev() {
	fs.focus = (fs.focus - 1 + len(fs.fields)) % len(fs.fields)
	fs.applyFocus()
}

func (fs *fieldSet) onLast() bool { return fs.focus == len(fs.fields)-1 }

// update routes a key to the focused field. Navigation keys are handled by the caller.
func (fs *fieldSet) update(msg tea.Msg) tea.Cmd {
	f := &fs.fields[fs.focus]
	if k, ok := msg.(tea.KeyMsg); ok {
		switch f.kind {
		case kindToggle:
			if k.String() == " " {
				f.on = !f.on
			}
			return nil
		case kindChoice:
			switch k.String() {
			case "left", "h":
				if f.choice <= 0 {
					f.choice = len(f.choices) - 1
				} else {
					f.choice--
				}
			case "right", "l", " ":
				f.choice = (f.choice + 1) % len(f.choices)
			}
			return nil
		}
	}
	if !f.isInput() {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (fs *fieldSet) get(name string) field {
	for _, f := range fs.fields {
		if f.name == name {
			return f
		}
	}
	return field{}
}

func (fs *fieldSet) set(name, value string) {
	for i := range fs.fields {
		if fs.fields[i].name == name {
			fs.fields[i].input.SetValue(value)
		}
	}
}

// setErrors shows validation messages next to their fields; nil clears them.
func (fs *fieldSet) setErrors(errs form.Errors) {
	for i := range fs.fields {
		fs.fields[i].err = errs.Field(fs.fields[i].name)
	}
}

func (fs fieldSet) view() string {
	parts := make([]string, len(fs.fields))
	for i, f := range fs.fields {
		parts[i] = f.view(i == fs.focus)
	}
	return strings.Join(parts, "\n\n")
}

// handleKey applies the shared form bindings. submit reports enter on the last field.
func (fs *fieldSet) handleKey(msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	switch msg.String() {
	case "tab", "down":
		fs.next()
		return nil, false
	case "shift+tab", "up":
		fs.prev()
		return nil, false
	case "enter":
		if fs.onLast() {
			return nil, true
		}
		fs.next()
		return nil, false
	case "ctrl+s":
		return nil, true
	}
	return fs.update(msg), false
}
