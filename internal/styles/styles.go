package styles

import (
	"io"
	"os"

	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	stderr = termenv.NewOutput(os.Stderr)

	ERROR = func(s string) string {
		return stderr.String(s).
			Foreground(stderr.Color("9")).
			String()
	}
)

var kindColors = map[completion.Kind]string{
	completion.KindCommand:    "12",
	completion.KindSubcommand: "14",
	completion.KindOption:     "11",
	completion.KindArgument:   "13",
	completion.KindFile:       "7",
	completion.KindDirectory:  "10",
	completion.KindHistory:    "8",
}

// Palette renders completion output for one writer.
type Palette struct {
	renderer    *lipgloss.Renderer
	kinds       map[completion.Kind]lipgloss.Style
	description lipgloss.Style
	header      lipgloss.Style
}

// NewPalette creates a Palette for w. Colors are dropped when disabled or
// when w is not a terminal.
func NewPalette(w io.Writer, colors bool) *Palette {
	renderer := lipgloss.NewRenderer(w)
	if !colors || !IsTerminal(w) {
		renderer.SetColorProfile(termenv.Ascii)
	}

	p := &Palette{
		renderer:    renderer,
		kinds:       make(map[completion.Kind]lipgloss.Style, len(kindColors)),
		description: renderer.NewStyle().Foreground(lipgloss.Color("8")),
		header:      renderer.NewStyle().Bold(true),
	}
	for kind, color := range kindColors {
		p.kinds[kind] = renderer.NewStyle().Foreground(lipgloss.Color(color))
	}
	p.kinds[completion.KindSubcommand] = p.kinds[completion.KindSubcommand].Bold(true)
	return p
}

// Kind styles text according to kind.
func (p *Palette) Kind(kind completion.Kind, text string) string {
	style, ok := p.kinds[kind]
	if !ok {
		return text
	}
	return style.Render(text)
}

func (p *Palette) Description(text string) string {
	return p.description.Render(text)
}

func (p *Palette) Header(text string) string {
	return p.header.Render(text)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
