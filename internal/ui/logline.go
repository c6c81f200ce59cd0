package ui

import (
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Tag names the source of a log line.
type Tag string

const (
	TagSetup    Tag = "SETUP"
	TagBackend  Tag = "BACKEND"
	TagFrontend Tag = "FRONTEND"
	TagError    Tag = "ERROR"
)

// Level marks lines that should stand out from regular child output.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// LogLine is one tagged line of output.
type LogLine struct {
	Tag   Tag
	Level Level
	Text  string
}

// Sink receives log lines. Implementations must be safe for concurrent use;
// stdout and stderr of both children are relayed from separate goroutines.
type Sink interface {
	Emit(LogLine)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(LogLine)

// Emit implements Sink.
func (f SinkFunc) Emit(line LogLine) { f(line) }

// Tee fans every line out to each non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	if len(live) == 1 {
		return live[0]
	}
	return SinkFunc(func(line LogLine) {
		for _, s := range live {
			s.Emit(line)
		}
	})
}

// Console writes rendered lines to a terminal, one whole line at a time.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
}

// NewConsole returns a Console writing to w. Colour is enabled only when w
// is a terminal that supports it.
func NewConsole(w io.Writer) *Console {
	return &Console{
		w:      w,
		styles: NewStyles(lipgloss.NewRenderer(w)),
	}
}

// Emit implements Sink.
func (c *Console) Emit(line LogLine) {
	rendered := c.styles.Render(line)
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, rendered+"\n")
}

// Emit sends an informational line to s.
func Emit(s Sink, tag Tag, text string) {
	s.Emit(LogLine{Tag: tag, Level: LevelInfo, Text: text})
}

// EmitWarn sends a warning line to s.
func EmitWarn(s Sink, tag Tag, text string) {
	s.Emit(LogLine{Tag: tag, Level: LevelWarn, Text: text})
}

// EmitError sends an error line to s.
func EmitError(s Sink, tag Tag, text string) {
	s.Emit(LogLine{Tag: tag, Level: LevelError, Text: text})
}
