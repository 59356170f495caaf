package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/eventpass/pkg/code"
	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/pass"
	"github.com/matzehuels/eventpass/pkg/registration"
)

// historySize is the number of scans shown in the desk table.
const historySize = 8

var (
	bannerBase    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	bannerAdmit   = bannerBase.Background(colorGreen).Foreground(lipgloss.Color("0"))
	bannerRepeat  = bannerBase.Background(colorYellow).Foreground(lipgloss.Color("0"))
	bannerReject  = bannerBase.Background(colorRed).Foreground(colorWhite)
	deskHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// checker is the part of the registration service the desk needs.
type checker interface {
	CheckIn(ctx context.Context, code string) (*registration.Registration, bool, error)
}

// scanMsg carries the outcome of one check-in back to the model.
type scanMsg struct {
	code  string
	reg   *registration.Registration
	first bool
	err   error
	at    time.Time
}

// admitted reports whether the attendee was let in by this scan.
func (s scanMsg) admitted() bool { return s.err == nil && s.first }

// CheckinModel is the bubbletea model of the check-in desk. Codes arrive
// from a keyboard-emulating scanner or manual typing, each ended by enter.
type CheckinModel struct {
	ctx  context.Context
	svc  checker
	now  func() time.Time
	busy bool

	Input    string
	Last     *scanMsg
	History  []scanMsg // newest first
	Admitted int
	Scans    int
}

// NewCheckinModel creates a desk backed by svc.
func NewCheckinModel(ctx context.Context, svc checker) CheckinModel {
	return CheckinModel{ctx: ctx, svc: svc, now: time.Now}
}

func (m CheckinModel) Init() tea.Cmd {
	return nil
}

func (m CheckinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			c := code.Normalize(m.Input)
			m.Input = ""
			if c == "" || m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.scan(c)
		case tea.KeyBackspace:
			if r := []rune(m.Input); len(r) > 0 {
				m.Input = string(r[:len(r)-1])
			}
		case tea.KeyRunes:
			if len(m.Input) < 2*code.Length {
				m.Input += strings.ToUpper(string(msg.Runes))
			}
		}
	case scanMsg:
		m.busy = false
		m.Scans++
		if msg.admitted() {
			m.Admitted++
		}
		m.Last = &msg
		m.History = append([]scanMsg{msg}, m.History...)
		if len(m.History) > historySize {
			m.History = m.History[:historySize]
		}
	}
	return m, nil
}

func (m CheckinModel) scan(c string) tea.Cmd {
	return func() tea.Msg {
		reg, first, err := m.svc.CheckIn(m.ctx, c)
		return scanMsg{code: c, reg: reg, first: first, err: err, at: m.now()}
	}
}

func (m CheckinModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Check-in Desk"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d admitted · %d scans", m.Admitted, m.Scans)))
	b.WriteString("\n")
	b.WriteString(deskHelpStyle.Render("scan or type a code, ⏎ check in, esc quit"))
	b.WriteString("\n\n")

	cursor := "▌"
	if m.busy {
		cursor = StyleDim.Render("…")
	}
	b.WriteString("Code: " + StyleHighlight.Render(m.Input) + cursor + "\n\n")

	if m.Last != nil {
		b.WriteString(banner(*m.Last))
		b.WriteString("\n\n")
	}

	if len(m.History) > 0 {
		rows := make([][]string, len(m.History))
		for i, s := range m.History {
			rows[i] = []string{s.at.Format("15:04:05"), s.code, attendee(s), outcome(s)}
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Time", "Code", "Attendee", "Result").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
				}
				base := lipgloss.NewStyle().Padding(0, 1)
				if col != 3 || row < 0 || row >= len(m.History) {
					return base
				}
				s := m.History[row]
				switch {
				case s.admitted():
					return base.Foreground(colorGreen)
				case s.err == nil:
					return base.Foreground(colorYellow)
				default:
					return base.Foreground(colorRed)
				}
			})
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	return b.String()
}

func banner(s scanMsg) string {
	switch {
	case s.admitted():
		return bannerAdmit.Render("ADMITTED") + " " + StyleValue.Render(attendee(s)) +
			" " + StyleDim.Render(s.reg.Event.Name)
	case s.err == nil:
		at := ""
		if s.reg.AttendedAt != nil {
			at = " at " + s.reg.AttendedAt.Local().Format("15:04")
		}
		return bannerRepeat.Render("ALREADY CHECKED IN") + " " + StyleValue.Render(attendee(s)) + StyleDim.Render(at)
	default:
		return bannerReject.Render("REJECTED") + " " + StyleError.Render(errors.UserMessage(s.err))
	}
}

func attendee(s scanMsg) string {
	if s.reg == nil {
		return pass.Placeholder
	}
	return s.reg.Input().FullName()
}

func outcome(s scanMsg) string {
	switch {
	case s.admitted():
		return "admitted"
	case s.err == nil:
		return "repeat"
	case errors.Is(s.err, errors.ErrCodeNotFound):
		return "not found"
	case errors.Is(s.err, errors.ErrCodeInvalidCode):
		return "invalid"
	default:
		return "error"
	}
}
