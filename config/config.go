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

// Package config holds the per-wiki settings the parser consults: which
// link prefixes name the category and file namespaces, and which
// characters directly after a link are absorbed into its text.
//
// A Configuration is immutable once built and may be shared between
// concurrent parses.
package config // import "akhil.cc/wikitext/config"

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Namespace classifies a link target prefix.
type Namespace int

const (
	// Category links assign the page to a category.
	Category Namespace = iota + 1
	// File links embed an image or other media file.
	File
)

func (ns Namespace) String() string {
	switch ns {
	case Category:
		return "Category"
	case File:
		return "File"
	}
	return "Namespace(" + fmt.Sprint(int(ns)) + ")"
}

// Configuration is the compiled form of a Source.
type Configuration struct {
	Namespaces *NamespaceMatcher
	LinkTrail  LinkTrail
}

// NamespaceMatcher recognizes namespace prefixes such as "Category:".
// Names compare case-insensitively, with '_' and ' ' equivalent.
type NamespaceMatcher struct {
	names map[string]Namespace
	// sorted for deterministic listing
	list []string
}

// NewNamespaceMatcher builds a matcher. A name may belong to only one
// namespace.
func NewNamespaceMatcher(namespaces map[Namespace][]string) (*NamespaceMatcher, error) {
	m := &NamespaceMatcher{names: make(map[string]Namespace)}
	for ns, names := range namespaces {
		for _, name := range names {
			key := normalizeName(name)
			if key == "" {
				return nil, fmt.Errorf("config: empty %s namespace name", ns)
			}
			if strings.ContainsAny(key, ":|[]{}\n") {
				return nil, fmt.Errorf("config: invalid %s namespace name %q", ns, name)
			}
			if prev, ok := m.names[key]; ok && prev != ns {
				return nil, fmt.Errorf("config: namespace name %q used for both %s and %s", name, prev, ns)
			}
			if _, ok := m.names[key]; !ok {
				m.list = append(m.list, key)
			}
			m.names[key] = ns
		}
	}
	sort.Strings(m.list)
	return m, nil
}

// Find matches the start of text against the configured namespace names.
// On a match it returns the number of bytes taken by the name, the colon
// and any spaces or tabs after it. Without a match it returns ok == false
// and the number of bytes that still belong to the prefix: 1 for a
// leading colon, which escapes namespace recognition, otherwise 0.
func (m *NamespaceMatcher) Find(text string) (length int, ns Namespace, ok bool) {
	if strings.HasPrefix(text, ":") {
		return 1, 0, false
	}
	if m == nil {
		return 0, 0, false
	}
	colon := strings.IndexAny(text, ":|[]{}\n")
	if colon <= 0 || text[colon] != ':' {
		return 0, 0, false
	}
	ns, ok = m.names[normalizeName(text[:colon])]
	if !ok {
		return 0, 0, false
	}
	length = colon + 1
	for length < len(text) && (text[length] == ' ' || text[length] == '\t') {
		length++
	}
	return length, ns, true
}

// Names returns the normalized names of ns in sorted order.
func (m *NamespaceMatcher) Names(ns Namespace) []string {
	var names []string
	for _, name := range m.list {
		if m.names[name] == ns {
			names = append(names, name)
		}
	}
	return names
}

func normalizeName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == '\t' }), " ")
	// A Caser keeps state, so each call gets its own.
	return cases.Fold().String(name)
}

// LinkTrail is the set of codepoints that may follow a link and be
// absorbed into its display text.
type LinkTrail struct {
	set map[rune]struct{}
}

// NewLinkTrail returns the set of the codepoints in chars.
func NewLinkTrail(chars string) LinkTrail {
	t := LinkTrail{set: make(map[rune]struct{}, len(chars))}
	for _, r := range chars {
		t.set[r] = struct{}{}
	}
	return t
}

// Contains reports whether r belongs to the trail.
func (t LinkTrail) Contains(r rune) bool {
	_, ok := t.set[r]
	return ok
}

// Len returns the number of codepoints in the trail.
func (t LinkTrail) Len() int { return len(t.set) }
