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

package parser

import (
	"context"
	"unicode/utf8"

	"akhil.cc/wikitext/ast"
	"akhil.cc/wikitext/config"
	"akhil.cc/wikitext/internal/logging"
	"github.com/charmbracelet/log"
)

// openNodeType is one of *linkFrame, *templateFrame or *parameterFrame.
type openNodeType interface {
	openNode()
}

// openNode is a construct whose end tag has not been seen yet.
type openNode struct {
	start int
	// nodes is the accumulator of the enclosing construct, owned by the
	// frame until it is closed or rewound.
	nodes []ast.Node
	typ   openNodeType
}

type linkFrame struct {
	namespace     config.Namespace
	shouldReparse bool
	target        string
	// raw target range, trailing whitespace excluded
	targetStart int
	targetEnd   int
}

// name is nil until the first separator.
type templateFrame struct {
	name       []ast.Node
	parameters []ast.TemplateParameter
}

type parameterFrame struct {
	name []ast.Node
	def  []ast.Node
}

func (*linkFrame) openNode()      {}
func (*templateFrame) openNode()  {}
func (*parameterFrame) openNode() {}

type state struct {
	ctx  context.Context
	cfg  *config.Configuration
	log  *log.Logger
	text string

	scan    int
	flushed int

	// nodes accumulates the content of the innermost open construct.
	nodes    []ast.Node
	stack    []openNode
	warnings []ast.Warning

	// unclosed holds the starts of constructs that reached the end of the
	// text without an end tag. They are read as text when scanned again.
	unclosed    map[int]struct{}
	// failedLinks holds the starts of links found to be invalid.
	failedLinks map[int]struct{}
	// seen holds every warning reported so far. Text re-read after a
	// rewind reports each problem once.
	seen        map[ast.Warning]struct{}
}

func newState(ctx context.Context, cfg *config.Configuration, text string, start int) *state {
	return &state{
		ctx:     ctx,
		cfg:     cfg,
		log:     logging.FromContext(ctx),
		text:    text,
		scan:    start,
		flushed: start,
	}
}

// is reports whether the byte at pos is b. It is false past the end.
func (s *state) is(pos int, b byte) bool {
	return pos < len(s.text) && s.text[pos] == b
}

func (s *state) top() *openNode {
	if len(s.stack) == 0 {
		return nil
	}
	return &s.stack[len(s.stack)-1]
}

func (s *state) pop() openNode {
	n := s.stack[len(s.stack)-1]
	s.stack[len(s.stack)-1] = openNode{}
	s.stack = s.stack[:len(s.stack)-1]
	return n
}

func (s *state) warn(start, end int, msg ast.WarningMessage) {
	w := ast.Warning{Start: start, End: end, Message: msg}
	if _, ok := s.seen[w]; ok {
		return
	}
	if s.seen == nil {
		s.seen = make(map[ast.Warning]struct{})
	}
	s.seen[w] = struct{}{}
	s.warnings = append(s.warnings, w)
}

// flush commits the pending text up to end as a Text node.
func (s *state) flush(end int) {
	if end <= s.flushed {
		return
	}
	s.nodes = append(s.nodes, &ast.Text{Start: s.flushed, End: end, Value: s.text[s.flushed:end]})
	s.flushed = end
}

// takeNodes hands over the accumulator and starts an empty one.
// The result is never nil.
func (s *state) takeNodes() []ast.Node {
	return s.swapNodes(nil)
}

// swapNodes installs nodes as the accumulator and returns the previous
// one, never nil.
func (s *state) swapNodes(nodes []ast.Node) []ast.Node {
	prev := s.nodes
	s.nodes = nodes
	if prev == nil {
		prev = []ast.Node{}
	}
	return prev
}

func (s *state) skipWhitespaceForwards(pos int) int {
	for pos < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[pos:])
		if r != ' ' && r != '\t' {
			break
		}
		pos += size
	}
	return pos
}

func (s *state) skipWhitespaceBackwards(pos int) int {
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(s.text[:pos])
		if r != ' ' && r != '\t' {
			break
		}
		pos -= size
	}
	return pos
}

// pushOpenNode opens a construct starting at the scan position. Its
// content starts at inner.
func (s *state) pushOpenNode(typ openNodeType, inner int) {
	start := s.scan
	s.flush(start)
	s.stack = append(s.stack, openNode{start: start, nodes: s.takeNodes(), typ: typ})
	s.scan = inner
	s.flushed = inner
}

// rewind abandons the current construct, which started at start, and
// restores the accumulator that was live when it opened. Scanning resumes
// one byte past start so the opening byte is read as text; a Text node
// ending at start is reopened so the text is not split.
func (s *state) rewind(nodes []ast.Node, start int) {
	s.log.Debug("rewinding", logging.FieldStart, start, logging.FieldEnd, s.scan)
	s.nodes = nodes
	s.scan = start + 1
	s.flushed = start
	if n := len(s.nodes); n > 0 {
		if t, ok := s.nodes[n-1].(*ast.Text); ok && t.End == start {
			s.flushed = t.Start
			s.nodes[n-1] = nil
			s.nodes = s.nodes[:n-1]
		}
	}
}
