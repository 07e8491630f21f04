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

// Package parser implements the bracket constructs of wikitext: links,
// templates and template parameters. It takes the text of a page and a
// Configuration and returns an *ast.File.
//
// The three constructs nest inside each other and inside the argument
// lists of links and templates:
//
//	link      = "[[" target [ "|" text ] "]]" [ trail ] .
//	template  = "{{" name { "|" [ argname "=" ] value } "}}" .
//	parameter = "{{{" name [ "|" default ] "}}}" .
//
// The input is scanned once, left to right. Constructs that are not closed
// properly are undone and their characters read again as text, and every
// problem found is reported as an ast.Warning. Parsing never fails because
// of the input; it only fails when its context ends first.
//
// A link target that contains a template or parameter is parsed again as a
// document of its own. Spans of the nodes produced that way still refer
// to the whole text.
package parser // import "akhil.cc/wikitext/parser"

import (
	"context"
	"fmt"

	"akhil.cc/wikitext/ast"
	"akhil.cc/wikitext/config"
	"akhil.cc/wikitext/internal/logging"
)

// pollInterval is the number of scanner steps between context checks.
const pollInterval = 1024

// MustParse is like Parse but panics if the text cannot be parsed.
func MustParse(cfg *config.Configuration, text string) *ast.File {
	f, err := Parse(cfg, text)
	if err != nil {
		panic("Parse error: " + err.Error())
	}
	return f
}

// Parse parses text. A nil cfg means config.Default.
func Parse(cfg *config.Configuration, text string) (*ast.File, error) {
	return ParseContext(context.Background(), cfg, text)
}

// ParseContext is like Parse but stops with an error once ctx is done.
// The context also bounds the parsing of link targets; when it ends
// during one, that target is kept as text.
func ParseContext(ctx context.Context, cfg *config.Configuration, text string) (*ast.File, error) {
	if ctx == nil {
		panic("nil context")
	}
	if cfg == nil {
		var err error
		if cfg, err = config.Default().Configuration(); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	s := newState(ctx, cfg, text, 0)
	if err := s.run(); err != nil {
		return nil, err
	}
	s.log.Debug("parsed", logging.FieldBytes, len(text), logging.FieldNodes, len(s.nodes), logging.FieldWarnings, len(s.warnings))
	return &ast.File{Source: text, Nodes: s.nodes, Warnings: s.warnings}, nil
}

// run scans from the current position to the end of the text.
func (s *state) run() error {
	for step := 1; ; step++ {
		if step%pollInterval == 0 {
			if err := s.ctx.Err(); err != nil {
				return fmt.Errorf("parser: %w", err)
			}
		}
		if s.scan >= len(s.text) {
			if len(s.stack) == 0 {
				break
			}
			open := s.pop()
			if s.unclosed == nil {
				s.unclosed = make(map[int]struct{})
			}
			s.unclosed[open.start] = struct{}{}
			s.warn(open.start, len(s.text), ast.MissingEndTagRewinding)
			s.rewind(open.nodes, open.start)
			continue
		}
		switch s.text[s.scan] {
		case '[':
			if s.is(s.scan+1, '[') && !s.isUnclosed(s.scan) && !s.isFailedLink(s.scan) {
				s.parseLinkStart()
			} else {
				s.scan++
			}
		case ']':
			if top := s.top(); top != nil && s.is(s.scan+1, ']') {
				if _, ok := top.typ.(*linkFrame); ok {
					s.parseLinkEnd()
					break
				}
			}
			s.scan++
		case '{':
			if s.is(s.scan+1, '{') && !s.isUnclosed(s.scan) {
				s.parseTemplateStart()
			} else {
				s.scan++
			}
		case '}':
			if s.is(s.scan+1, '}') {
				s.parseTemplateEnd()
			} else {
				s.scan++
			}
		case '|':
			var typ openNodeType
			if top := s.top(); top != nil {
				typ = top.typ
			}
			switch typ.(type) {
			case *templateFrame:
				s.parseTemplateSeparator()
			case *parameterFrame:
				s.parseParameterSeparator()
			default:
				s.scan++
			}
		case '=':
			s.parseParameterNameEnd()
		default:
			s.scan++
		}
	}
	s.flush(len(s.text))
	return nil
}

// isUnclosed reports whether a construct starting at pos already reached
// the end of the text unclosed. Opening it again could only end the same
// way.
func (s *state) isUnclosed(pos int) bool {
	_, ok := s.unclosed[pos]
	return ok
}

func (s *state) isFailedLink(pos int) bool {
	_, ok := s.failedLinks[pos]
	return ok
}
