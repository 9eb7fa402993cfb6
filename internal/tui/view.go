package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/dimfu/tempo/internal/metronome"
)

const pendulumWidth = 31

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	bpmStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	nameStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	beatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	playStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	stopStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	frameStyle  = lipgloss.NewStyle().Padding(1, 3).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238"))
	pendulumRod = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	pendulumBob = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

func (m Model) View() string {
	s := m.state

	var b strings.Builder
	b.WriteString(titleStyle.Render("tempo"))
	b.WriteString("\n\n")
	b.WriteString(lights(s))
	b.WriteString("\n\n")
	b.WriteString(bpmStyle.Render(fmt.Sprintf("%d BPM", s.BPM)))
	b.WriteString("  ")
	b.WriteString(nameStyle.Render(metronome.TempoName(s.BPM)))
	b.WriteString("  ")
	fmt.Fprintf(&b, "%d beats", s.TimeSignature)
	b.WriteString("\n\n")
	b.WriteString(pendulum(m.angle))
	b.WriteString("\n\n")

	vol := "vol " + m.volume.ViewAs(s.Volume/metronome.MaxVolume) + fmt.Sprintf(" %.2f", s.Volume)
	if m.muted {
		vol += "  " + errStyle.Render("muted")
	}
	b.WriteString(vol)
	b.WriteString("\n\n")

	if s.Playing {
		b.WriteString(playStyle.Render("▶ playing"))
	} else {
		b.WriteString(stopStyle.Render("■ stopped"))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(errorText(m.err, m.muter != nil)))
	}

	return frameStyle.Render(b.String()) + "\n" + m.help.View(m.keys) + "\n"
}

func errorText(err error, canMute bool) string {
	if errors.Is(err, metronome.ErrAudioUnavailable) && canMute {
		return err.Error() + " (press m to run silently)"
	}
	return err.Error()
}

// lights draws one indicator per beat of the measure.
func lights(s metronome.State) string {
	dots := make([]string, s.TimeSignature)
	for i := range dots {
		switch {
		case !s.Playing || i != s.Beat:
			dots[i] = idleStyle.Render("●")
		case i == 0:
			dots[i] = accentStyle.Render("●")
		default:
			dots[i] = beatStyle.Render("●")
		}
	}
	return strings.Join(dots, " ")
}

// pendulum draws a pivot and a bob displaced by angle degrees.
func pendulum(angle float64) string {
	center := pendulumWidth / 2
	offset := int(math.Round(math.Sin(angle*math.Pi/180) * float64(center)))
	pos := center + offset
	if pos < 0 {
		pos = 0
	}
	if pos >= pendulumWidth {
		pos = pendulumWidth - 1
	}

	pivot := strings.Repeat(" ", center) + pendulumRod.Render("┴")
	bob := strings.Repeat(" ", pos) + pendulumBob.Render("●")
	return pivot + "\n" + bob
}
