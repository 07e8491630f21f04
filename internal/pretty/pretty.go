// MIT License

// Copyright (c) 2018 Akhil Indurti

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package pretty prints parse warnings for people, with lipgloss styles
// when the output is a terminal.
package pretty

import (
	"fmt"
	"io"
	"os"
	"strings"

	"akhil.cc/wikitext/ast"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds the styles of the parts of a printed warning.
type Styles struct {
	Location lipgloss.Style
	Kind     lipgloss.Style
	Message  lipgloss.Style
	Source   lipgloss.Style
	Caret    lipgloss.Style
	Summary  lipgloss.Style
}

// NewStyles returns coloured styles for w, or plain ones when color is
// false.
func NewStyles(w io.Writer, color bool) *Styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		plain := r.NewStyle()
		return &Styles{plain, plain, plain, plain, plain, plain}
	}
	return &Styles{
		Location: r.NewStyle().Bold(true),
		Kind:     r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Message:  r.NewStyle(),
		Source:   r.NewStyle().Faint(true),
		Caret:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Summary:  r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// ColorEnabled reports whether w is a terminal and NO_COLOR is unset.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintWarnings writes every warning of f to w, each followed by its
// source line with the warning's range underlined.
func (st *Styles) PrintWarnings(w io.Writer, name string, f *ast.File) error {
	for _, warn := range f.Warnings {
		pos := f.Position(warn.Start)
		_, err := fmt.Fprintf(w, "%s %s %s\n",
			st.Location.Render(fmt.Sprintf("%s:%d:%d:", name, pos.Line, pos.Column)),
			st.Kind.Render(warn.Message.Name()+":"),
			st.Message.Render(warn.Message.String()))
		if err != nil {
			return err
		}
		line, caret := sourceLine(f.Source, warn.Start, warn.End)
		if line == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "    %s\n    %s\n", st.Source.Render(line), st.Caret.Render(caret)); err != nil {
			return err
		}
	}
	if n := len(f.Warnings); n > 0 {
		_, err := fmt.Fprintln(w, st.Summary.Render(fmt.Sprintf("%s: %d warning(s)", name, n)))
		return err
	}
	return nil
}

// sourceLine returns the line holding start and a marker line pointing at
// [start, end), clipped to that line.
func sourceLine(src string, start, end int) (line, caret string) {
	if start > len(src) {
		return "", ""
	}
	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	lineEnd := len(src)
	if i := strings.IndexByte(src[start:], '\n'); i >= 0 {
		lineEnd = start + i
	}
	end = min(max(end, start+1), lineEnd)
	pad := len([]rune(src[lineStart:start]))
	width := max(1, len([]rune(src[start:max(start, end)])))
	return src[lineStart:lineEnd], strings.Repeat(" ", pad) + strings.Repeat("^", width)
}
