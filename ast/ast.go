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

// Package ast declares the types used to represent syntax trees for wikitext.
//
// Every node records a half-open byte range [Start, End) into the text that
// was parsed. Nodes produced by a recursive parse of a link target use the
// same address space as the enclosing document.
package ast // import "akhil.cc/wikitext/ast"

import "unicode/utf8"

//go:generate sumgen Node = *Text | *Link | *Category | *Image | *Template | *Parameter
type Node interface {
	Span() Span
	node()
}

// Span is a half-open byte range into the parsed text.
type Span struct {
	Start int
	End   int
}

// Len returns the length of the span in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether offset lies inside the span.
func (s Span) Contains(offset int) bool { return offset >= s.Start && offset < s.End }

// Encloses reports whether o lies entirely inside s.
func (s Span) Encloses(o Span) bool { return s.Start <= o.Start && o.End <= s.End }

// Text is a literal slice of the input. Value equals text[Start:End].
type Text struct {
	Start int
	End   int
	Value string
}

// Link is an internal link, [[Target]] or [[Target|Text]].
type Link struct {
	Start int
	End   int
	// Target is the raw target text with trailing whitespace trimmed.
	Target string
	// TargetNodes holds the target parsed as wikitext. It is only set
	// when the target contained a template or parameter.
	TargetNodes []Node
	// Text is the display text, including any absorbed link trail.
	Text     []Node
	Reparsed bool
}

// Category is a link into the category namespace.
type Category struct {
	Start   int
	End     int
	Target  string
	Ordinal []Node
}

// Image is a link into the file namespace.
type Image struct {
	Start  int
	End    int
	Target string
	Text   []Node
}

// Template is a template transclusion, {{Name|...}}.
type Template struct {
	Start      int
	End        int
	Name       []Node
	Parameters []TemplateParameter
}

// TemplateParameter is one |-separated argument of a template.
// Name is nil for positional arguments.
type TemplateParameter struct {
	Start int
	End   int
	Name  []Node
	Value []Node
}

// Parameter is a template parameter reference, {{{Name|Default}}}.
// Default is nil when no default was given and non-nil (possibly empty)
// otherwise.
type Parameter struct {
	Start   int
	End     int
	Name    []Node
	Default []Node
}

func (n *Text) Span() Span      { return Span{n.Start, n.End} }
func (n *Link) Span() Span      { return Span{n.Start, n.End} }
func (n *Category) Span() Span  { return Span{n.Start, n.End} }
func (n *Image) Span() Span     { return Span{n.Start, n.End} }
func (n *Template) Span() Span  { return Span{n.Start, n.End} }
func (n *Parameter) Span() Span { return Span{n.Start, n.End} }

// Span returns the range covered by the argument.
func (p TemplateParameter) Span() Span { return Span{p.Start, p.End} }

func (*Text) node()      {}
func (*Link) node()      {}
func (*Category) node()  {}
func (*Image) node()     {}
func (*Template) node()  {}
func (*Parameter) node() {}

// File is the result of parsing a document.
type File struct {
	// Source is the text the spans refer to.
	Source   string
	Nodes    []Node
	Warnings []Warning
}

// Position is a 1-based line and column. Columns count codepoints.
type Position struct {
	Line   int
	Column int
}

// Position converts a byte offset in f.Source into a line and column.
func (f *File) Position(offset int) Position {
	if offset > len(f.Source) {
		offset = len(f.Source)
	}
	pos := Position{Line: 1, Column: 1}
	lineStart := 0
	for i := 0; i < offset; i++ {
		if f.Source[i] == '\n' {
			pos.Line++
			lineStart = i + 1
		}
	}
	pos.Column += utf8.RuneCountInString(f.Source[lineStart:offset])
	return pos
}

// Walk calls f on n and then on each of n's children, depth first,
// replacing every child with the node f returns. A nil result removes the
// child. Walk stops at the first error.
func Walk(n Node, f Walker) (Node, error) {
	if n == nil {
		return nil, nil
	}
	n, err := f(n)
	if err != nil || n == nil {
		return n, err
	}
	switch t := n.(type) {
	case *Link:
		if t.TargetNodes, err = walkList(t.TargetNodes, f); err != nil {
			return n, err
		}
		t.Text, err = walkList(t.Text, f)
	case *Category:
		t.Ordinal, err = walkList(t.Ordinal, f)
	case *Image:
		t.Text, err = walkList(t.Text, f)
	case *Template:
		if t.Name, err = walkList(t.Name, f); err != nil {
			return n, err
		}
		for i := range t.Parameters {
			p := &t.Parameters[i]
			if p.Name, err = walkList(p.Name, f); err != nil {
				return n, err
			}
			if p.Value, err = walkList(p.Value, f); err != nil {
				return n, err
			}
		}
	case *Parameter:
		if t.Name, err = walkList(t.Name, f); err != nil {
			return n, err
		}
		t.Default, err = walkList(t.Default, f)
	}
	return n, err
}

// WalkList is like Walk for a sequence of sibling nodes.
func WalkList(list []Node, f Walker) ([]Node, error) {
	return walkList(list, f)
}

func walkList(list []Node, f Walker) ([]Node, error) {
	out := list[:0]
	for i, n := range list {
		nn, err := Walk(n, f)
		if err != nil {
			return append(out, list[i:]...), err
		}
		if nn != nil {
			out = append(out, nn)
		}
	}
	return out, nil
}

type Walker func(Node) (Node, error)

// Inspect visits every node in list depth first. If f returns false the
// children of that node are skipped.
func Inspect(list []Node, f func(Node) bool) {
	for _, n := range list {
		if !f(n) {
			continue
		}
		switch t := n.(type) {
		case *Link:
			Inspect(t.TargetNodes, f)
			Inspect(t.Text, f)
		case *Category:
			Inspect(t.Ordinal, f)
		case *Image:
			Inspect(t.Text, f)
		case *Template:
			Inspect(t.Name, f)
			for _, p := range t.Parameters {
				Inspect(p.Name, f)
				Inspect(p.Value, f)
			}
		case *Parameter:
			Inspect(t.Name, f)
			Inspect(t.Default, f)
		}
	}
}

// Clone returns a deep copy of list.
func Clone(list []Node) []Node {
	if list == nil {
		return nil
	}
	out := make([]Node, len(list))
	for i, n := range list {
		out[i] = clone(n)
	}
	return out
}

func clone(n Node) Node {
	switch t := n.(type) {
	case *Text:
		c := *t
		return &c
	case *Link:
		c := *t
		c.TargetNodes = Clone(t.TargetNodes)
		c.Text = Clone(t.Text)
		return &c
	case *Category:
		c := *t
		c.Ordinal = Clone(t.Ordinal)
		return &c
	case *Image:
		c := *t
		c.Text = Clone(t.Text)
		return &c
	case *Template:
		c := *t
		c.Name = Clone(t.Name)
		if t.Parameters != nil {
			c.Parameters = make([]TemplateParameter, len(t.Parameters))
			for i, p := range t.Parameters {
				c.Parameters[i] = TemplateParameter{Start: p.Start, End: p.End, Name: Clone(p.Name), Value: Clone(p.Value)}
			}
		}
		return &c
	case *Parameter:
		c := *t
		c.Name = Clone(t.Name)
		c.Default = Clone(t.Default)
		return &c
	}
	return n
}
