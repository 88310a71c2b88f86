package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorHeader = lipgloss.Color("#fe8019")
	colorDim    = lipgloss.Color("#928374")
	colorGreen  = lipgloss.Color("#8ec07c")
	colorRed    = lipgloss.Color("#fb4934")

	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	styleRed    = lipgloss.NewStyle().Foreground(colorRed)
)

// printer writes styled output on terminals and plain text elsewhere
type printer struct {
	w      io.Writer
	styled bool
}

func (p printer) header(text string) {
	if !p.styled {
		fmt.Fprintln(p.w, text)
		return
	}
	fmt.Fprintln(p.w, styleHeader.Render(text))
	fmt.Fprintln(p.w, styleDim.Render(strings.Repeat("─", lipgloss.Width(text))))
}

func (p printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p printer) dim(text string) {
	if p.styled {
		text = styleDim.Render(text)
	}
	fmt.Fprintln(p.w, text)
}

func (p printer) status(ok bool, text string) {
	if p.styled {
		if ok {
			text = styleGreen.Render(text)
		} else {
			text = styleRed.Render(text)
		}
	}
	fmt.Fprintln(p.w, text)
}

// table renders aligned columns. Widths are measured with lipgloss so wide runes line up.
func (p printer) table(headers []string, rows [][]string) {
	if !p.styled {
		fmt.Fprintln(p.w, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(p.w, strings.Join(row, "\t"))
		}
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const gap = 2
	var b strings.Builder
	for i, h := range headers {
		b.WriteString(styleHeader.Render(h))
		if i < len(headers)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(h)+gap))
		}
	}
	b.WriteString("\n")
	for i, w := range widths {
		b.WriteString(styleDim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", gap))
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i := 0; i < len(widths); i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(cell)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+gap))
			}
		}
		b.WriteString("\n")
	}
	fmt.Fprint(p.w, b.String())
}
