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

// Package html converts an AST file structure into html output.
// Text is escaped. Categories are collected and listed after the content.
//
// AST nodes correspond to the following HTML tags:
// 	Text                        escaped text
// 	Link                        <a href=""></a>
// 	Image                       <figure><img><figcaption></figcaption></figure>
// 	Category                    <li> inside a trailing <ul class="categories">
// 	Template                    <span class="template" data-name=""></span>
// 	Template argument           <span class="argument" data-name=""></span>
// 	Parameter                   <span class="parameter" data-name=""></span>
package html // import "akhil.cc/wikitext/gen/html"

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"
	"sync"

	"akhil.cc/wikitext/ast"
)

type stickyCountWriter struct {
	n   int64
	err error
	w   io.Writer
}

func (c *stickyCountWriter) Write(p []byte) (n int, err error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err = c.w.Write(p)
	c.err = err
	c.n += int64(n)
	return
}

func (c *stickyCountWriter) WriteString(s string) (n int, err error) {
	return c.Write([]byte(s))
}

// Generator represents a non-reusable HTML output generator for an *ast.File.
type Generator struct {
	// Stdout specifies the generator's output. If nil, output is discarded.
	Stdout   io.Writer
	ctx      context.Context
	file     *ast.File
	waitdone chan error

	m     sync.Mutex
	pipes []io.Closer
}

// Gen returns the Generator struct to convert the given file into HTML output.
//
// It sets only the file in the returned structure.
func Gen(file *ast.File) *Generator {
	return &Generator{ctx: context.TODO(), file: file}
}

// GenContext is like Gen but includes a context.
//
// The provided context is used to halt HTML generation after processing
// a top-level node.
func GenContext(ctx context.Context, file *ast.File) *Generator {
	if ctx == nil {
		panic("nil context")
	}
	return &Generator{ctx: ctx, file: file}
}

// Start starts the generator but does not wait for it to complete.
func (g *Generator) Start() error {
	if g.waitdone != nil {
		return fmt.Errorf("already started")
	}
	if g.Stdout == nil {
		g.Stdout = io.Discard
	}
	g.waitdone = make(chan error, 1)
	go func() {
		err := g.gen()
		g.m.Lock()
		for _, p := range g.pipes {
			p.Close()
		}
		g.pipes = nil
		g.m.Unlock()
		g.waitdone <- err
	}()
	return nil
}

// Wait waits for the generator to complete. It is an error to call Wait
// before Start has been called.
func (g *Generator) Wait() error {
	if g.waitdone == nil {
		return fmt.Errorf("not started")
	}
	return <-g.waitdone
}

// Run starts the generator and waits for it to complete, returning
// any errors enountered.
func (g *Generator) Run() error {
	if err := g.Start(); err != nil {
		return err
	}
	return g.Wait()
}

// StdoutPipe returns a pipe that is connected to the generator's
// standard output. The pipe is closed once generation ends.
func (g *Generator) StdoutPipe() (io.Reader, error) {
	if g.Stdout != nil {
		return nil, fmt.Errorf("Stdout already set")
	}
	pr, pw := io.Pipe()
	g.Stdout = pw
	g.pipes = append(g.pipes, pw)
	return pr, nil
}

// Output runs the generator and returns its standard output.
func (g *Generator) Output() ([]byte, error) {
	if g.Stdout != nil {
		return nil, fmt.Errorf("Stdout already set")
	}
	var stdout bytes.Buffer
	g.Stdout = &stdout
	err := g.Run()
	return stdout.Bytes(), err
}

func (g *Generator) gen() error {
	cw := &stickyCountWriter{0, nil, g.Stdout}
	var categories []*ast.Category
	for _, n := range g.file.Nodes {
		select {
		case <-g.ctx.Done():
			if cw.err != nil {
				return cw.err
			}
			return g.ctx.Err()
		default:
		}
		g.node(cw, n, &categories)
	}
	if len(categories) > 0 {
		cw.WriteString(`<ul class="categories">`)
		for _, c := range categories {
			cw.WriteString("<li>")
			cw.WriteString(html.EscapeString(c.Target))
			cw.WriteString("</li>")
		}
		cw.WriteString("</ul>")
	}
	return cw.err
}

func (g *Generator) nodes(w *stickyCountWriter, list []ast.Node, categories *[]*ast.Category) {
	for _, n := range list {
		g.node(w, n, categories)
	}
}

func (g *Generator) node(w *stickyCountWriter, n ast.Node, categories *[]*ast.Category) {
	switch t := n.(type) {
	case *ast.Text:
		w.WriteString(html.EscapeString(t.Value))
	case *ast.Link:
		fmt.Fprintf(w, `<a href="%s">`, html.EscapeString(href(t.Target)))
		g.nodes(w, t.Text, categories)
		w.WriteString("</a>")
	case *ast.Image:
		caption := PlainText(t.Text)
		fmt.Fprintf(w, `<figure><img src="%s" alt="%s">`, html.EscapeString(href(t.Target)), html.EscapeString(caption))
		if len(t.Text) > 0 {
			w.WriteString("<figcaption>")
			g.nodes(w, t.Text, categories)
			w.WriteString("</figcaption>")
		}
		w.WriteString("</figure>")
	case *ast.Category:
		*categories = append(*categories, t)
	case *ast.Template:
		fmt.Fprintf(w, `<span class="template" data-name="%s">`, html.EscapeString(PlainText(t.Name)))
		for _, p := range t.Parameters {
			if p.Name != nil {
				fmt.Fprintf(w, `<span class="argument" data-name="%s">`, html.EscapeString(PlainText(p.Name)))
			} else {
				w.WriteString(`<span class="argument">`)
			}
			g.nodes(w, p.Value, categories)
			w.WriteString("</span>")
		}
		w.WriteString("</span>")
	case *ast.Parameter:
		fmt.Fprintf(w, `<span class="parameter" data-name="%s">`, html.EscapeString(PlainText(t.Name)))
		g.nodes(w, t.Default, categories)
		w.WriteString("</span>")
	}
}

// href turns a link target into a relative URL.
func href(target string) string {
	return "./" + url.PathEscape(strings.ReplaceAll(strings.TrimSpace(target), " ", "_"))
}

// PlainText returns the text of list without markup. Templates and
// parameters are written in their source form.
func PlainText(list []ast.Node) string {
	var b strings.Builder
	plainText(&b, list)
	return b.String()
}

func plainText(b *strings.Builder, list []ast.Node) {
	for _, n := range list {
		switch t := n.(type) {
		case *ast.Text:
			b.WriteString(t.Value)
		case *ast.Link:
			plainText(b, t.Text)
		case *ast.Image:
			plainText(b, t.Text)
		case *ast.Template:
			b.WriteString("{{")
			plainText(b, t.Name)
			for _, p := range t.Parameters {
				b.WriteString("|")
				if p.Name != nil {
					plainText(b, p.Name)
					b.WriteString("=")
				}
				plainText(b, p.Value)
			}
			b.WriteString("}}")
		case *ast.Parameter:
			b.WriteString("{{{")
			plainText(b, t.Name)
			if t.Default != nil {
				b.WriteString("|")
				plainText(b, t.Default)
			}
			b.WriteString("}}}")
		}
	}
}
