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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	sq "github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by Load for files that are neither YAML
// nor TOML.
var ErrUnknownFormat = errors.New("config: unknown configuration file format")

// Environment variables read by FromEnv.
const (
	EnvCategoryNamespaces = "WIKITEXT_CATEGORY_NAMESPACES"
	EnvFileNamespaces     = "WIKITEXT_FILE_NAMESPACES"
	EnvLinkTrail          = "WIKITEXT_LINK_TRAIL"
)

// Source is the declarative description of a Configuration, as found in
// configuration files.
type Source struct {
	CategoryNamespaces []string `yaml:"category_namespaces" toml:"category_namespaces"`
	FileNamespaces     []string `yaml:"file_namespaces" toml:"file_namespaces"`
	// LinkTrail is nil when unset. An empty trail absorbs nothing.
	LinkTrail          *string  `yaml:"link_trail" toml:"link_trail"`
}

// Default returns the settings of the English Wikipedia.
func Default() Source {
	return Source{
		CategoryNamespaces: []string{"Category"},
		FileNamespaces:     []string{"File", "Image"},
		LinkTrail:          Trail("abcdefghijklmnopqrstuvwxyz"),
	}
}

// Configuration compiles s.
func (s Source) Configuration() (*Configuration, error) {
	m, err := NewNamespaceMatcher(map[Namespace][]string{
		Category: s.CategoryNamespaces,
		File:     s.FileNamespaces,
	})
	if err != nil {
		return nil, err
	}
	var trail string
	if s.LinkTrail != nil {
		trail = *s.LinkTrail
	}
	return &Configuration{Namespaces: m, LinkTrail: NewLinkTrail(trail)}, nil
}

// Trail returns a pointer to chars, for use as Source.LinkTrail.
func Trail(chars string) *string { return &chars }

// Merge returns s with every field that is set in o replaced.
func (s Source) Merge(o Source) Source {
	if o.CategoryNamespaces != nil {
		s.CategoryNamespaces = o.CategoryNamespaces
	}
	if o.FileNamespaces != nil {
		s.FileNamespaces = o.FileNamespaces
	}
	if o.LinkTrail != nil {
		s.LinkTrail = o.LinkTrail
	}
	return s
}

// Load reads the file at path on top of Default. The format is chosen by
// the extension: .yaml and .yml for YAML, .toml for TOML.
func Load(path string) (Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("config: %w", err)
	}
	src, err := Decode(filepath.Ext(path), b)
	if err != nil {
		return Source{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return Default().Merge(src), nil
}

// Decode parses b in the format named by ext.
func Decode(ext string, b []byte) (Source, error) {
	var src Source
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&src); err != nil && !errors.Is(err, io.EOF) {
			return Source{}, err
		}
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(b)).Decode(&src)
		if err != nil {
			return Source{}, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Source{}, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	default:
		return Source{}, fmt.Errorf("%w %q", ErrUnknownFormat, ext)
	}
	return src, nil
}

// FromEnv returns s with overrides from the environment, looked up with
// lookup (normally os.LookupEnv). Namespace lists are split into words the
// way a shell would, so a name containing spaces can be quoted.
func FromEnv(s Source, lookup func(string) (string, bool)) (Source, error) {
	var o Source
	var err error
	if v, ok := lookup(EnvCategoryNamespaces); ok {
		if o.CategoryNamespaces, err = SplitList(v); err != nil {
			return s, fmt.Errorf("config: %s: %w", EnvCategoryNamespaces, err)
		}
	}
	if v, ok := lookup(EnvFileNamespaces); ok {
		if o.FileNamespaces, err = SplitList(v); err != nil {
			return s, fmt.Errorf("config: %s: %w", EnvFileNamespaces, err)
		}
	}
	if v, ok := lookup(EnvLinkTrail); ok {
		o.LinkTrail = Trail(v)
	}
	return s.Merge(o), nil
}

// SplitList splits a list of namespace names using shell word splitting.
// The result is never nil.
func SplitList(v string) ([]string, error) {
	words, err := sq.Split(v)
	if err != nil {
		return nil, err
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}
