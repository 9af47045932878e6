// Package clientui is a minimal bubbletea reference client for the
// table's wire protocol: enough to join, act on a turn signal, and watch
// the game log scroll by. It exists to exercise internal/protocol
// end-to-end, not as a product surface in its own right.
package clientui

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-server/internal/protocol"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// serverMsg wraps one decoded frame for delivery into the bubbletea loop.
type serverMsg struct {
	msg protocol.ServerMessage
	err error
}

// Model is the bubbletea model driving one connection.
type Model struct {
	conn   net.Conn
	name   string
	logger *log.Logger

	viewport viewport.Model
	input    textinput.Model

	lines        []string
	legalActions []protocol.ActionKind

	width, height int
	quitting      bool
}

// New builds a Model bound to an already-dialed conn.
func New(conn net.Conn, name string, logger *log.Logger) *Model {
	vp := viewport.New(80, 20)
	ti := textinput.New()
	ti.Placeholder = "fold | check | call | raise <amount> | allin | show | start | quit"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "> "

	return &Model{
		conn:     conn,
		name:     name,
		logger:   logger,
		viewport: vp,
		input:    ti,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.connectCmd(), m.readCmd())
}

// connectCmd sends the Connect handshake as the model's first outbound
// message; the rest of the session is driven by user input and
// readCmd's loop.
func (m *Model) connectCmd() tea.Cmd {
	return func() tea.Msg {
		err := protocol.WriteClientMessage(m.conn, protocol.ClientMessage{Username: m.name, Kind: protocol.CmdConnect})
		return connectSentMsg{err: err}
	}
}

type connectSentMsg struct{ err error }

// readCmd reads exactly one frame per invocation; Update re-issues it so
// the read loop keeps pace with bubbletea's message pump instead of
// racing it from a free-running goroutine.
func (m *Model) readCmd() tea.Cmd {
	return func() tea.Msg {
		msg, err := protocol.ReadServerMessage(m.conn)
		return serverMsg{msg: msg, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3
		m.input.Width = msg.Width - 4

	case connectSentMsg:
		if msg.err != nil {
			m.appendLine(fmt.Sprintf("connect failed: %v", msg.err))
			m.quitting = true
			return m, tea.Quit
		}

	case serverMsg:
		if msg.err != nil {
			m.appendLine(fmt.Sprintf("connection closed: %v", msg.err))
			m.quitting = true
			return m, tea.Quit
		}
		m.handleServerMessage(msg.msg)
		return m, m.readCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if cmd == "quit" {
				m.quitting = true
				return m, tea.Quit
			}
			if cmd != "" {
				m.submit(cmd)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleServerMessage(msg protocol.ServerMessage) {
	switch msg.Kind {
	case protocol.CmdAck:
		m.appendLine(dimStyle.Render(fmt.Sprintf("ack: command %d accepted", msg.Ack.Kind)))
	case protocol.CmdClientError:
		m.appendLine(fmt.Sprintf("connection error %d", msg.ClientError))
	case protocol.CmdUserError:
		detail := msg.UserErrorValue
		if detail == "" {
			m.appendLine(fmt.Sprintf("rejected: error kind %d", msg.UserError))
		} else {
			m.appendLine(fmt.Sprintf("rejected: error kind %d (%s)", msg.UserError, detail))
		}
	case protocol.CmdStatus:
		m.appendLine(dimStyle.Render("phase: " + msg.Status))
	case protocol.CmdGameView:
		m.appendLine(renderView(msg.View, m.name))
	case protocol.CmdTurnSignal:
		m.legalActions = msg.LegalActions
		m.appendLine(promptStyle.Render("your turn: " + actionNames(msg.LegalActions)))
	}
}

func (m *Model) submit(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}
	var out protocol.ClientMessage
	switch strings.ToLower(fields[0]) {
	case "start":
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdStartGame}
	case "join", "play":
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdChangeState, Play: true}
	case "spectate":
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdChangeState, Play: false}
	case "leave":
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdLeave}
	case "show":
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdShowHand}
	case "fold":
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdTakeAction, Action: protocol.Action{Kind: protocol.ActionFold}}
	case "check":
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdTakeAction, Action: protocol.Action{Kind: protocol.ActionCheck}}
	case "call":
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdTakeAction, Action: protocol.Action{Kind: protocol.ActionCall}}
	case "allin":
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdTakeAction, Action: protocol.Action{Kind: protocol.ActionAllIn}}
	case "raise":
		amount := 0
		if len(fields) > 1 {
			amount, _ = strconv.Atoi(fields[1])
		}
		out = protocol.ClientMessage{Username: m.name, Kind: protocol.CmdTakeAction, Action: protocol.Action{Kind: protocol.ActionRaise, Amount: uint32(amount)}}
	default:
		m.appendLine("unrecognized command: " + fields[0])
		return
	}
	if err := protocol.WriteClientMessage(m.conn, out); err != nil {
		m.appendLine(fmt.Sprintf("send failed: %v", err))
	}
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) View() string {
	if m.quitting {
		return "disconnected.\n"
	}
	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), dimStyle.Render(strings.Repeat("-", m.widthOr(60))), m.input.View())
}

func (m *Model) widthOr(fallback int) int {
	if m.width > 0 {
		return m.width
	}
	return fallback
}

func actionNames(kinds []protocol.ActionKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = actionName(k)
	}
	return strings.Join(names, ", ")
}

func actionName(k protocol.ActionKind) string {
	switch k {
	case protocol.ActionFold:
		return "fold"
	case protocol.ActionCheck:
		return "check"
	case protocol.ActionCall:
		return "call"
	case protocol.ActionRaise:
		return "raise <amount>"
	case protocol.ActionAllIn:
		return "allin"
	default:
		return "?"
	}
}

func renderView(v protocol.GameViewWire, self string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pot=%d board=%s\n", v.PotSize, renderBoard(v.Board))
	for _, p := range v.Players {
		marker := " "
		if p.Name == self {
			marker = "*"
		}
		fmt.Fprintf(&b, "  %s seat %d: %-12s $%-6d state=%d\n", marker, p.Seat, p.Name, p.Money, p.State)
	}
	return b.String()
}

func renderBoard(cards []protocol.CardWire) string {
	if len(cards) == 0 {
		return "(none)"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = fmt.Sprintf("%d-%d", c.Suit, c.Value)
	}
	return strings.Join(parts, " ")
}
