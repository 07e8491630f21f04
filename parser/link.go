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
	"unicode/utf8"

	"akhil.cc/wikitext/ast"
	"akhil.cc/wikitext/config"
	"akhil.cc/wikitext/internal/logging"
)

// parseLinkStart is called with the scan position on "[[".
//
// The target is scanned up front, counting the templates and parameters
// it contains, so that a '|' or ']' inside {{...}} does not end it.
func (s *state) parseLinkStart() {
	if top := s.top(); top != nil {
		if link, ok := top.typ.(*linkFrame); ok && link.namespace != config.File {
			open := s.pop()
			s.warn(open.start, s.scan, ast.InvalidLinkSyntax)
			s.markFailedLink(open.start)
			s.rewind(open.nodes, open.start)
			return
		}
	}
	targetStart := s.skipWhitespaceForwards(s.scan + 2)
	length, namespace, ok := s.cfg.Namespaces.Find(s.text[targetStart:])
	if !ok {
		namespace = 0
	}
	pos := targetStart + length
	nTemplates, nParameters := 0, 0
	shouldReparse := false
	for {
		if pos >= len(s.text) {
			s.invalidLink(pos)
			return
		}
		balanced := nTemplates == 0 && nParameters == 0
		switch c := s.text[pos]; {
		case c == '\n', c == '[' && balanced:
			s.invalidLink(pos)
			return
		case c == '{' && s.is(pos+1, '{'):
			shouldReparse = true
			pos += 2
			if s.is(pos, '{') {
				pos++
				nParameters++
			} else {
				nTemplates++
			}
		case c == '}' && s.is(pos+1, '}'):
			pos += 2
			if s.is(pos, '}') {
				pos++
				nParameters--
			} else {
				nTemplates--
			}
			if nParameters < 0 || nTemplates < 0 {
				s.invalidLink(pos)
				return
			}
		case c == ']' && balanced:
			s.parseEnd(targetStart, length, ok, pos, namespace, shouldReparse)
			return
		case c == '|' && balanced:
			nameStart := targetStart
			if ok {
				nameStart += length
			}
			targetEnd := s.skipWhitespaceBackwards(pos)
			s.pushOpenNode(&linkFrame{
				namespace:     namespace,
				shouldReparse: shouldReparse,
				target:        s.text[nameStart:max(nameStart, targetEnd)],
				targetStart:   targetStart,
				targetEnd:     max(targetStart, targetEnd),
			}, s.skipWhitespaceForwards(pos+1))
			return
		default:
			pos++
		}
	}
}

// parseEnd closes a link that has no display text. targetEnd is the
// position of the first ']'.
func (s *state) parseEnd(targetStart, prefixLength int, hasNamespace bool, targetEnd int, namespace config.Namespace, shouldReparse bool) {
	if !s.is(targetEnd+1, ']') {
		s.invalidLink(targetEnd)
		return
	}
	start := s.scan
	s.flush(start)
	end := targetEnd + 2
	trimmedEnd := max(targetStart+prefixLength, s.skipWhitespaceBackwards(targetEnd))
	nameStart := targetStart
	if hasNamespace {
		nameStart += prefixLength
	}
	target := s.text[nameStart:trimmedEnd]
	switch namespace {
	case config.Category:
		s.nodes = append(s.nodes, &ast.Category{Start: start, End: end, Target: target})
	case config.File:
		s.nodes = append(s.nodes, &ast.Image{Start: start, End: end, Target: target})
	default:
		link := &ast.Link{Start: start, Target: target, Reparsed: shouldReparse}
		if shouldReparse {
			link.TargetNodes = s.reparse(targetStart, trimmedEnd)
			link.Text = ast.Clone(link.TargetNodes)
		} else {
			// A leading colon only escapes the namespace; it is not shown.
			textStart := targetStart + prefixLength
			link.Text = []ast.Node{&ast.Text{Start: textStart, End: trimmedEnd, Value: s.text[textStart:trimmedEnd]}}
		}
		end = s.absorbLinkTrail(end, &link.Text)
		link.End = end
		s.nodes = append(s.nodes, link)
	}
	s.scan = end
	s.flushed = end
}

// parseLinkEnd is called with the scan position on "]]" and a link on top
// of the stack.
func (s *state) parseLinkEnd() {
	open := s.pop()
	link := open.typ.(*linkFrame)
	s.flush(s.skipWhitespaceBackwards(s.scan))
	s.scan += 2
	s.flushed = s.scan
	text := s.swapNodes(open.nodes)
	end := s.scan
	switch link.namespace {
	case config.Category:
		s.nodes = append(s.nodes, &ast.Category{Start: open.start, End: end, Target: link.target, Ordinal: text})
	case config.File:
		s.nodes = append(s.nodes, &ast.Image{Start: open.start, End: end, Target: link.target, Text: text})
	default:
		n := &ast.Link{Start: open.start, Target: link.target, Text: text, Reparsed: link.shouldReparse}
		if link.shouldReparse {
			n.TargetNodes = s.reparse(link.targetStart, link.targetEnd)
		}
		end = s.absorbLinkTrail(end, &n.Text)
		n.End = end
		s.nodes = append(s.nodes, n)
		s.scan = end
		s.flushed = end
	}
}

// absorbLinkTrail appends the run of link trail characters at pos to text
// and returns the position after it.
func (s *state) absorbLinkTrail(pos int, text *[]ast.Node) int {
	end := pos
	for end < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[end:])
		if !s.cfg.LinkTrail.Contains(r) {
			break
		}
		end += size
	}
	if end > pos {
		*text = append(*text, &ast.Text{Start: pos, End: end, Value: s.text[pos:end]})
	}
	return end
}

// reparse parses text[start:end] as a document of its own. When that
// fails the range is returned as a single Text node.
func (s *state) reparse(start, end int) []ast.Node {
	literal := []ast.Node{&ast.Text{Start: start, End: end, Value: s.text[start:end]}}
	if err := s.ctx.Err(); err != nil {
		s.log.Debug("link target kept as text", logging.FieldStart, start, logging.FieldEnd, end, logging.FieldError, err)
		return literal
	}
	sub := newState(s.ctx, s.cfg, s.text[:end], start)
	if err := sub.run(); err != nil {
		s.log.Debug("link target kept as text", logging.FieldStart, start, logging.FieldEnd, end, logging.FieldError, err)
		return literal
	}
	for _, w := range sub.warnings {
		s.warn(w.Start, w.End, w.Message)
	}
	if sub.nodes == nil {
		return []ast.Node{}
	}
	return sub.nodes
}

func (s *state) invalidLink(end int) {
	s.warn(s.scan, end, ast.InvalidLinkSyntax)
	s.markFailedLink(s.scan)
	s.scan++
}

// markFailedLink records that the link opened at pos cannot be completed.
// The "[[" there is read as text from then on.
func (s *state) markFailedLink(pos int) {
	if s.failedLinks == nil {
		s.failedLinks = make(map[int]struct{})
	}
	s.failedLinks[pos] = struct{}{}
}
