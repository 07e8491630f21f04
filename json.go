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

package main

import (
	"encoding/json"
	"io"

	"akhil.cc/wikitext/ast"
)

// jsonFile is the json form of an *ast.File. Every node carries a "type".
type jsonFile struct {
	Nodes    []any         `json:"nodes"`
	Warnings []jsonWarning `json:"warnings"`
}

type jsonWarning struct {
	Start   int                `json:"start"`
	End     int                `json:"end"`
	Message ast.WarningMessage `json:"message"`
	Text    string             `json:"text"`
}

func writeJSON(w io.Writer, f *ast.File) error {
	out := jsonFile{Nodes: jsonNodes(f.Nodes), Warnings: []jsonWarning{}}
	for _, warn := range f.Warnings {
		out.Warnings = append(out.Warnings, jsonWarning{warn.Start, warn.End, warn.Message, warn.Message.String()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func jsonNodes(list []ast.Node) []any {
	if list == nil {
		return nil
	}
	out := make([]any, 0, len(list))
	for _, n := range list {
		out = append(out, jsonNode(n))
	}
	return out
}

func jsonNode(n ast.Node) map[string]any {
	span := n.Span()
	m := map[string]any{"start": span.Start, "end": span.End}
	switch t := n.(type) {
	case *ast.Text:
		m["type"] = "text"
		m["value"] = t.Value
	case *ast.Link:
		m["type"] = "link"
		m["target"] = t.Target
		m["text"] = jsonNodes(t.Text)
		m["reparsed"] = t.Reparsed
		if t.TargetNodes != nil {
			m["target_nodes"] = jsonNodes(t.TargetNodes)
		}
	case *ast.Category:
		m["type"] = "category"
		m["target"] = t.Target
		m["ordinal"] = jsonNodes(t.Ordinal)
	case *ast.Image:
		m["type"] = "image"
		m["target"] = t.Target
		m["text"] = jsonNodes(t.Text)
	case *ast.Template:
		m["type"] = "template"
		m["name"] = jsonNodes(t.Name)
		params := make([]map[string]any, 0, len(t.Parameters))
		for _, p := range t.Parameters {
			pm := map[string]any{"start": p.Start, "end": p.End, "value": jsonNodes(p.Value)}
			if p.Name != nil {
				pm["name"] = jsonNodes(p.Name)
			}
			params = append(params, pm)
		}
		m["parameters"] = params
	case *ast.Parameter:
		m["type"] = "parameter"
		m["name"] = jsonNodes(t.Name)
		if t.Default != nil {
			m["default"] = jsonNodes(t.Default)
		}
	}
	return m
}
