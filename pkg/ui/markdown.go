package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/spotlight/pkg/debug"
)

// MarkdownRenderer renders step content with glamour. Renderers are cached
// per wrap width because tooltips are re-measured on every resize.
type MarkdownRenderer struct {
	style string

	mu    sync.Mutex
	cache map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer returns a renderer using a glamour standard style
// ("dark", "light", "notty"). An empty style picks one from the terminal.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	return &MarkdownRenderer{style: style, cache: make(map[int]*glamour.TermRenderer)}
}

func (r *MarkdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.cache[width]; ok {
		return tr, nil
	}
	styleOpt := glamour.WithAutoStyle()
	if r.style != "" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	r.cache[width] = tr
	return tr, nil
}

// Render renders md wrapped at width cells. Rendering errors fall back to
// plain wrapped text so a broken step never hides the tooltip.
func (r *MarkdownRenderer) Render(md string, width int) string {
	if width < 10 {
		width = 10
	}
	tr, err := r.renderer(width)
	if err == nil {
		var out string
		if out, err = tr.Render(md); err == nil {
			return trimBlankLines(out)
		}
	}
	debug.Log("markdown render failed, using plain text: %v", err)
	return lipgloss.NewStyle().Width(width).Render(strings.TrimSpace(md))
}

// trimBlankLines drops the leading and trailing blank lines glamour adds
// around every document, and trailing spaces on each line.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(stripANSI(lines[start])) == "" {
		start++
	}
	for end > start && strings.TrimSpace(stripANSI(lines[end-1])) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
