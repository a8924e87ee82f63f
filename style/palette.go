package style

import "github.com/charmbracelet/lipgloss"

// Hex accents used where lipgloss needs true colors, such as progress gradients.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Mauve    = lipgloss.Color("#cba6f7")
	Sapphire = lipgloss.Color("#74c7ec")
	Peach    = lipgloss.Color("#fab387")
)
