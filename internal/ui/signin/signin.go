// Package signin is the user selection screen: a username and password form.
package signin

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// SubmitMsg is emitted when the form is submitted.
type SubmitMsg struct {
	Username string
	Password string
}

// Model is the sign-in form.
type Model struct {
	server   string
	username textinput.Model
	password textinput.Model
	err      string
	busy     bool
}

// New creates a form for server with username prefilled.
func New(server, username string) Model {
	u := textinput.New()
	u.Prompt = "User:     "
	u.SetValue(username)

	p := textinput.New()
	p.Prompt = "Password: "
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'

	m := Model{server: server, username: u, password: p}
	if username == "" {
		m.username.Focus()
	} else {
		m.password.Focus()
	}
	return m
}

// SetError shows err below the form and re-enables input.
func (m *Model) SetError(err string) {
	m.err = err
	m.busy = false
	m.password.SetValue("")
}

// Busy reports whether a submission is in flight.
func (m Model) Busy() bool {
	return m.busy
}

// Update handles keys. Enter on the username moves to the password; enter
// on the password submits.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "shift+tab", "up", "down":
			m.toggleFocus()
			return m, nil
		case "enter":
			if m.username.Focused() {
				m.toggleFocus()
				return m, nil
			}
			username := strings.TrimSpace(m.username.Value())
			if username == "" {
				m.err = "username is required"
				return m, nil
			}
			m.busy = true
			m.err = ""
			submit := SubmitMsg{Username: username, Password: m.password.Value()}
			return m, func() tea.Msg { return submit }
		}
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.username.Focused() {
		m.username.Blur()
		m.password.Focus()
		return
	}
	m.password.Blur()
	m.username.Focus()
}

// View renders the form centred in width x height.
func (m Model) View(width, height int) string {
	lines := []string{
		titleStyle.Render("Sign in to " + m.server),
		"",
		m.username.View(),
		m.password.View(),
		"",
	}
	switch {
	case m.busy:
		lines = append(lines, hintStyle.Render("Signing in…"))
	case m.err != "":
		lines = append(lines, errStyle.Render(m.err))
	default:
		lines = append(lines, hintStyle.Render("enter: sign in · tab: switch field · ctrl+c: quit"))
	}
	box := boxStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
