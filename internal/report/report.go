package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
	"github.com/robert-at-pretension-io/verilog-scan/internal/facts"
)

// Options controls text rendering
type Options struct {
	Color bool
}

type palette struct {
	file  *color.Color
	label *color.Color
	name  *color.Color
	added *color.Color
	gone  *color.Color
	warn  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		file:  color.New(color.FgCyan, color.Bold),
		label: color.New(color.Faint),
		name:  color.New(color.FgGreen),
		added: color.New(color.FgGreen),
		gone:  color.New(color.FgRed),
		warn:  color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.file, p.label, p.name, p.added, p.gone, p.warn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// ResolveColor turns an "auto" / "on" / "off" setting into a decision for f.
// "auto" colors only terminals and honors NO_COLOR.
func ResolveColor(mode string, f *os.File) bool {
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// WriteText renders one summary in a human-readable layout.
func WriteText(w io.Writer, path string, s extractor.Summary, opts Options) error {
	p := newPalette(opts.Color)
	var b strings.Builder

	p.file.Fprintln(&b, path)
	line := func(label, body string) {
		p.label.Fprintf(&b, "  %-8s", label)
		b.WriteString(" " + body + "\n")
	}

	if len(s.ModuleNames) == 0 {
		line("modules", "-")
	} else {
		line("modules", p.name.Sprint(strings.Join(s.ModuleNames, ", ")))
	}
	line("inputs", formatWidths(p, s.Inputs))
	line("outputs", formatWidths(p, s.Outputs))
	line("wires", formatWidths(p, s.Wires))
	line("regs", formatWidths(p, s.Regs))

	exprs := sortedKeys(s.ContinuousAssignments)
	if len(exprs) == 0 {
		line("assign", "-")
	}
	for _, expr := range exprs {
		op := s.ContinuousAssignments[expr]
		line("assign", fmt.Sprintf("%s  (%s %d)", expr, op, int(op)))
	}

	edges := sortedKeys(s.SequentialAssignments)
	if len(edges) == 0 {
		line("always", "-")
	}
	for _, edge := range edges {
		line("always", fmt.Sprintf("%s: %s", p.name.Sprint(edge), s.SequentialAssignments[edge]))
	}

	for _, d := range s.Diagnostics {
		p.warn.Fprintf(&b, "  line %d %s: ", d.Line, d.Kind)
		b.WriteString(strings.TrimSpace(d.Text) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteDelta renders added (+) and removed (-) fact rows.
func WriteDelta(w io.Writer, d facts.Delta, opts Options) error {
	p := newPalette(opts.Color)
	var b strings.Builder

	if d.IsEmpty() {
		b.WriteString("no changes\n")
	}
	writeRows(&b, p.added, "+", d.Added)
	writeRows(&b, p.gone, "-", d.Removed)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRows(b *strings.Builder, c *color.Color, sign string, t facts.Tables) {
	for _, r := range t.Files {
		c.Fprintf(b, "%s file %s\n", sign, r.Path)
	}
	for _, r := range t.Modules {
		c.Fprintf(b, "%s module %s (%s)\n", sign, r.Name, r.File)
	}
	for _, r := range t.Ports {
		c.Fprintf(b, "%s %s %s[%d] (%s)\n", sign, r.Direction, r.Name, r.Width, r.File)
	}
	for _, r := range t.Nets {
		c.Fprintf(b, "%s %s %s[%d] (%s)\n", sign, r.Kind, r.Name, r.Width, r.File)
	}
	for _, r := range t.ContinuousAssigns {
		c.Fprintf(b, "%s assign %s (%s)\n", sign, r.Expr, r.File)
	}
	for _, r := range t.SequentialAssigns {
		c.Fprintf(b, "%s always %s: %s (%s)\n", sign, r.Edge, r.Expr, r.File)
	}
	for _, r := range t.Diagnostics {
		c.Fprintf(b, "%s %s %s:%d\n", sign, r.Kind, r.File, r.Line)
	}
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatWidths(p palette, m map[string]int) string {
	if len(m) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(m))
	for _, name := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s[%d]", p.name.Sprint(name), m[name]))
	}
	return strings.Join(parts, " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
