package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/baileyrd/naner-sub002/internal/installer"
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleFail = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func colorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// renderOutcome styles a per-vendor outcome label for terminal output.
func renderOutcome(outcome installer.Outcome) string {
	text := string(outcome)
	if !colorEnabled() {
		return text
	}
	switch outcome {
	case installer.OutcomeInstalled:
		return styleOK.Render(text)
	case installer.OutcomeSkipped:
		return styleDim.Render(text)
	case installer.OutcomeWarnings:
		return styleWarn.Render(text)
	default:
		return styleFail.Render(text)
	}
}
