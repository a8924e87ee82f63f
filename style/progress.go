package style

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/josueBarretogit/manga-tui/color"
)

// Bar renders download progress without a running bubbletea program.
type Bar struct {
	model progress.Model
}

// NewBar returns a bar of the given total width, counter included.
func NewBar(width int) *Bar {
	model := progress.New(
		progress.WithGradient(string(Mauve), string(Sapphire)),
		progress.WithoutPercentage(),
	)
	model.Width = max(width, 10)

	return &Bar{model: model}
}

// Render draws done out of total pages followed by the counter.
func (b *Bar) Render(done, total int) string {
	var ratio float64
	if total > 0 {
		ratio = float64(done) / float64(total)
	}

	return fmt.Sprintf("%s %s", b.model.ViewAs(ratio), Faint(fmt.Sprintf("%d/%d", done, total)))
}

// State colors the name of a download state by outcome.
func State(name string, failed, terminal bool) string {
	var c lipgloss.Color
	switch {
	case failed:
		c = color.Red
	case terminal:
		c = color.Green
	default:
		c = color.Yellow
	}

	return Fg(c)(name)
}
