package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/sweet/internal/identity"
	"github.com/dori/sweet/internal/session"
	"github.com/dori/sweet/internal/ui/theme"
)

const connectTimeout = 10 * time.Second

// AccountSwitcher lets the connect screen point the wallet at a typed address
type AccountSwitcher interface {
	Switch(address string)
}

// ConnectView is shown while no wallet is connected
type ConnectView struct {
	sess   *session.Session
	wallet AccountSwitcher
	width  int
	height int

	entering   bool
	input      textinput.Model
	connecting bool
	errMsg     string
}

// NewConnectView creates the connect screen
func NewConnectView(sess *session.Session, wallet AccountSwitcher) ConnectView {
	ti := textinput.New()
	ti.Placeholder = "0x..."
	ti.CharLimit = 42

	return ConnectView{
		sess:   sess,
		wallet: wallet,
		input:  ti,
	}
}

// Init tries to resume the last identity
func (v ConnectView) Init() tea.Cmd {
	sess := v.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		ok, err := sess.Resume(ctx)
		if err != nil || !ok {
			return nil
		}
		user, _ := sess.User()
		return ConnectedMsg{User: user}
	}
}

// SetSize sets the view dimensions
func (v ConnectView) SetSize(width, height int) ConnectView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode returns true while an address is being typed
func (v ConnectView) IsInputMode() bool {
	return v.entering
}

// Update handles messages for the connect screen
func (v ConnectView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ConnectedMsg:
		v.connecting = false
		if msg.Err != nil {
			v.errMsg = connectError(msg.Err)
			return v, nil
		}
		v.errMsg = ""
		v.entering = false
		v.input.Reset()
		return v, nil

	case tea.KeyMsg:
		if v.entering {
			return v.handleAddressInput(msg)
		}
		switch msg.String() {
		case "enter", "c":
			v.connecting = true
			v.errMsg = ""
			return v, v.connect("")
		case "e":
			v.entering = true
			v.errMsg = ""
			cmd := v.input.Focus()
			return v, cmd
		}
	}
	return v, nil
}

func (v ConnectView) handleAddressInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.entering = false
		v.input.Blur()
		v.input.Reset()
		return v, nil
	case "enter":
		address := strings.TrimSpace(v.input.Value())
		if !identity.ValidAddress(address) {
			v.errMsg = "That doesn't look like a wallet address (0x + 40 hex characters)."
			return v, nil
		}
		v.entering = false
		v.input.Blur()
		v.connecting = true
		v.errMsg = ""
		return v, v.connect(address)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// connect points the wallet at address when given, then asks it for an account
func (v ConnectView) connect(address string) tea.Cmd {
	sess, wallet := v.sess, v.wallet
	return func() tea.Msg {
		if address != "" && wallet != nil {
			wallet.Switch(address)
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		user, err := sess.Connect(ctx)
		return ConnectedMsg{User: user, Err: err}
	}
}

func connectError(err error) string {
	switch {
	case errors.Is(err, identity.ErrNoProvider):
		return "No wallet configured. Press 'e' to enter an address or set one with `sweet connect`."
	case errors.Is(err, identity.ErrRejected):
		return "The wallet declined the request."
	default:
		return fmt.Sprintf("Wallet connection failed: %v", err)
	}
}

// View renders the connect screen
func (v ConnectView) View() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	var sections []string
	sections = append(sections, "💖", "")
	sections = append(sections, styles.Title.Render("My Sweet Tasks"))
	sections = append(sections, styles.Label.Render("Please connect your wallet to manage your tasks."), "")

	switch {
	case v.connecting:
		sections = append(sections, styles.Subtitle.Render("Connecting..."))
	case v.entering:
		sections = append(sections, styles.InputFocused.Width(48).Render(v.input.View()))
		sections = append(sections, styles.Label.Render("enter: connect • esc: cancel"))
	default:
		button := lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Bold(true).
			Padding(0, 3).
			Render("Connect Wallet")
		sections = append(sections, button, "")
		sections = append(sections, styles.Label.Render("enter: connect • e: use another address"))
	}

	if v.errMsg != "" {
		sections = append(sections, "", styles.Failure.Render(v.errMsg))
	}

	content := styles.Panel.Align(lipgloss.Center).Render(lipgloss.JoinVertical(lipgloss.Center, sections...))
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, content)
}
