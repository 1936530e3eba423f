package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Markers prefixed to per-item report lines.
const (
	MarkAdded   = "[+]"
	MarkUpdated = "[.]"
	MarkFailed  = "[!]"
	MarkSkipped = "[-]"
)

// Styles is the palette used by the CLI.
var Styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Title renders a section heading.
func (p *Palette) Title(text string) string {
	return p.title.Render(text)
}

// Added renders a "[+]" line for a created task.
func (p *Palette) Added(format string, args ...any) string {
	return p.ok.Render(MarkAdded) + " " + fmt.Sprintf(format, args...)
}

// Updated renders a "[.]" line for an updated task.
func (p *Palette) Updated(format string, args ...any) string {
	return p.ok.Render(MarkUpdated) + " " + fmt.Sprintf(format, args...)
}

// Failed renders a "[!]" line for a failed item.
func (p *Palette) Failed(format string, args ...any) string {
	return p.err.Render(MarkFailed) + " " + fmt.Sprintf(format, args...)
}

// Skipped renders a "[-]" line for a skipped course or assignment.
func (p *Palette) Skipped(format string, args ...any) string {
	return p.warn.Render(MarkSkipped) + " " + fmt.Sprintf(format, args...)
}

// Help renders a muted hint.
func (p *Palette) Help(text string) string {
	return p.help.Render(text)
}
