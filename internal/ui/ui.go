package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes one-off status lines for the non-streaming commands
// (doctor, init).
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: NewStyles(lipgloss.NewRenderer(w))}
}

func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, p.styles.Tags[TagBackend].Render(IconSuccess), msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.styles.Muted.Render(IconInfo), msg)
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.w, p.styles.Warning.Render(IconWarning), msg)
}

func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.w, p.styles.Error.Render(IconError), msg)
}

// Heading prints an accented section title.
func (p *Printer) Heading(msg string) {
	fmt.Fprintln(p.w, p.styles.Accent.Render(msg))
}
