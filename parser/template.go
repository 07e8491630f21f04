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

import "akhil.cc/wikitext/ast"

// parseTemplateStart is called with the scan position on "{{".
//
// Three braces open a parameter and two a template. Five or more are
// ambiguous: {{{{{X}}}}} is a parameter inside a template, and the first
// closing run decides which one is innermost.
func (s *state) parseTemplateStart() {
	pos := s.scan
	isParameter := false
	if s.is(pos+2, '{') {
		isParameter = true
		if s.is(pos+3, '{') && s.is(pos+4, '{') {
			for i := pos + 5; i+1 < len(s.text); i++ {
				if s.text[i] == '}' && s.text[i+1] == '}' {
					// "}}" closes a template first, so the outer construct
					// is a template only if the inner one is a parameter.
					isParameter = !s.is(i+2, '}')
					break
				}
			}
		}
	}
	if isParameter {
		s.pushOpenNode(&parameterFrame{}, s.skipWhitespaceForwards(pos+3))
	} else {
		s.pushOpenNode(&templateFrame{}, s.skipWhitespaceForwards(pos+2))
	}
}

// parseTemplateSeparator is called on '|' with a template on top.
func (s *state) parseTemplateSeparator() {
	f := s.top().typ.(*templateFrame)
	position := s.skipWhitespaceBackwards(s.scan)
	s.flush(position)
	s.flushed = s.skipWhitespaceForwards(s.scan + 1)
	s.scan = s.flushed
	if f.name == nil {
		f.name = s.takeNodes()
	} else {
		p := &f.parameters[len(f.parameters)-1]
		p.End = max(p.Start, position)
		p.Value = s.takeNodes()
	}
	f.parameters = append(f.parameters, ast.TemplateParameter{Start: s.scan})
}

// parseParameterNameEnd is called on '='. Only the first '=' of a
// template argument separates its name; any other is text.
func (s *state) parseParameterNameEnd() {
	if top := s.top(); top != nil {
		if f, ok := top.typ.(*templateFrame); ok && f.name != nil {
			p := &f.parameters[len(f.parameters)-1]
			if p.Name == nil {
				s.flush(s.skipWhitespaceBackwards(s.scan))
				s.flushed = s.skipWhitespaceForwards(s.scan + 1)
				s.scan = s.flushed
				p.Name = s.takeNodes()
				return
			}
		}
	}
	s.scan++
}

// parseParameterSeparator is called on '|' with a parameter on top.
func (s *state) parseParameterSeparator() {
	f := s.top().typ.(*parameterFrame)
	if f.name == nil {
		s.flush(s.skipWhitespaceBackwards(s.scan))
		f.name = s.takeNodes()
	} else {
		s.flush(s.scan)
		f.def = s.takeNodes()
		s.warn(s.scan, s.scan+1, ast.UselessTextInParameter)
	}
	s.scan++
	s.flushed = s.scan
}

// parseTemplateEnd is called with the scan position on "}}".
func (s *state) parseTemplateEnd() {
	if top := s.top(); top != nil {
		switch f := top.typ.(type) {
		case *parameterFrame:
			open := s.pop()
			if !s.is(s.scan+2, '}') {
				s.warn(s.scan, s.scan+2, ast.UnexpectedEndTagRewinding)
				s.rewind(open.nodes, open.start)
				return
			}
			param := &ast.Parameter{Start: open.start}
			if f.name != nil {
				s.flush(s.scan)
				param.Name = f.name
				param.Default = s.swapNodes(open.nodes)
				if f.def != nil {
					param.Default = f.def
				}
			} else {
				s.flush(s.skipWhitespaceBackwards(s.scan))
				param.Name = s.swapNodes(open.nodes)
			}
			s.scan += 3
			s.flushed = s.scan
			param.End = s.scan
			s.nodes = append(s.nodes, param)
			return
		case *templateFrame:
			open := s.pop()
			position := s.skipWhitespaceBackwards(s.scan)
			s.flush(position)
			s.scan += 2
			s.flushed = s.scan
			tmpl := &ast.Template{Start: open.start, End: s.scan}
			if f.name == nil {
				tmpl.Name = s.swapNodes(open.nodes)
			} else {
				p := &f.parameters[len(f.parameters)-1]
				p.End = max(p.Start, position)
				p.Value = s.swapNodes(open.nodes)
				tmpl.Name = f.name
				tmpl.Parameters = f.parameters
			}
			s.nodes = append(s.nodes, tmpl)
			return
		}
	}
	// The top of the stack is not a template or parameter. If an enclosing
	// one can be closed by this tag, the constructs in between are dropped.
	for i := len(s.stack) - 2; i >= 0; i-- {
		switch s.stack[i].typ.(type) {
		case *templateFrame:
		case *parameterFrame:
			if !s.is(s.scan+2, '}') {
				continue
			}
		default:
			continue
		}
		s.warn(s.scan, s.scan+2, ast.UnexpectedEndTagRewinding)
		if _, ok := s.top().typ.(*linkFrame); ok {
			// TODO: close the link's enclosing template once end tags can be
			// handed to the constructs below the top; for now the tag stays
			// in the link text.
			s.scan += 2
			return
		}
		open := s.pop()
		s.rewind(open.nodes, open.start)
		return
	}
	s.warn(s.scan, s.scan+2, ast.UnexpectedEndTag)
	s.scan += 2
}
