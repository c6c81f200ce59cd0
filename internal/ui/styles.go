package ui

import "github.com/charmbracelet/lipgloss"

// Colour palette shared by the console and the dashboard.
var (
	ColorSetup    = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#8BE9FD"}
	ColorBackend  = lipgloss.AdaptiveColor{Light: "#00875F", Dark: "#50FA7B"}
	ColorFrontend = lipgloss.AdaptiveColor{Light: "#AF00AF", Dark: "#FF79C6"}
	ColorError    = lipgloss.AdaptiveColor{Light: "#AA0000", Dark: "#FF5555"}
	ColorWarning  = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#F1FA8C"}
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorAccent   = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"}
)

// Icons
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconStop    = "🛑"
)

// Styles holds the lipgloss styles used to render log lines. Styles are
// bound to a renderer so colour support follows the destination writer.
type Styles struct {
	Tags    map[Tag]lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
}

// NewStyles builds the palette for r.
func NewStyles(r *lipgloss.Renderer) Styles {
	tag := func(c lipgloss.TerminalColor) lipgloss.Style {
		return r.NewStyle().Foreground(c).Bold(true)
	}
	return Styles{
		Tags: map[Tag]lipgloss.Style{
			TagSetup:    tag(ColorSetup),
			TagBackend:  tag(ColorBackend),
			TagFrontend: tag(ColorFrontend),
			TagError:    tag(ColorError),
		},
		Warning: r.NewStyle().Foreground(ColorWarning),
		Error:   r.NewStyle().Foreground(ColorError),
		Muted:   r.NewStyle().Foreground(ColorMuted),
		Accent:  r.NewStyle().Foreground(ColorAccent).Bold(true),
	}
}

// Render formats line as "[TAG] text". Warnings and errors colour the whole
// line; plain lines only colour the tag.
func (s Styles) Render(line LogLine) string {
	tag := line.Tag
	if _, ok := s.Tags[tag]; !ok {
		tag = TagError
	}
	prefix := "[" + string(tag) + "]"

	switch line.Level {
	case LevelError:
		return s.Error.Bold(true).Render(prefix) + " " + s.Error.Render(line.Text)
	case LevelWarn:
		return s.Warning.Bold(true).Render(prefix) + " " + s.Warning.Render(line.Text)
	default:
		return s.Tags[tag].Render(prefix) + " " + line.Text
	}
}
