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

// Tests for parse.go
package parser_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"akhil.cc/wikitext/ast"
	"akhil.cc/wikitext/config"
	"akhil.cc/wikitext/parser"
	"github.com/sanity-io/litter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type smallcase struct {
	in   string
	want []ast.Node
	warn []ast.Warning
}

var litCfg = litter.Options{
	Compact:           true,
	StripPackageNames: false,
	HidePrivateFields: false,
	Separator:         " ",
}

func defaultConfig(t *testing.T) *config.Configuration {
	t.Helper()
	cfg, err := config.Default().Configuration()
	require.NoError(t, err)
	return cfg
}

func text(start int, value string) *ast.Text {
	return &ast.Text{Start: start, End: start + len(value), Value: value}
}

func runCases(t *testing.T, cfg *config.Configuration, cases []smallcase) {
	t.Helper()
	for i, test := range cases {
		got, err := parser.Parse(cfg, test.in)
		require.NoError(t, err, "case %d, in %q", i, test.in)
		assert.Equal(t, test.want, got.Nodes, "case %d, in %q,\nwant %s,\ngot %s", i, test.in, litCfg.Sdump(test.want), litCfg.Sdump(got.Nodes))
		assert.Equal(t, test.warn, got.Warnings, "case %d, in %q", i, test.in)
	}
}

var linkSmall = []smallcase{
	{"[[Target|Display]]", []ast.Node{
		&ast.Link{Start: 0, End: 18, Target: "Target", Text: []ast.Node{text(9, "Display")}},
	}, nil},
	{"[[ Target | Display ]]", []ast.Node{
		&ast.Link{Start: 0, End: 22, Target: "Target", Text: []ast.Node{text(12, "Display")}},
	}, nil},
	{"[[Cat]]s are", []ast.Node{
		&ast.Link{Start: 0, End: 8, Target: "Cat", Text: []ast.Node{text(2, "Cat"), text(7, "s")}},
		text(8, " are"),
	}, nil},
	{"[[a|b]]cd!", []ast.Node{
		&ast.Link{Start: 0, End: 9, Target: "a", Text: []ast.Node{text(4, "b"), text(7, "cd")}},
		text(9, "!"),
	}, nil},
	{"see [[:Category:Foo]]", []ast.Node{
		text(0, "see "),
		&ast.Link{Start: 4, End: 21, Target: ":Category:Foo", Text: []ast.Node{text(7, "Category:Foo")}},
	}, nil},
	{"[[a|]]", []ast.Node{
		&ast.Link{Start: 0, End: 6, Target: "a", Text: []ast.Node{}},
	}, nil},
}

func TestLink(t *testing.T) {
	runCases(t, defaultConfig(t), linkSmall)
}

var namespaceSmall = []smallcase{
	{"[[Category:Foo]]", []ast.Node{
		&ast.Category{Start: 0, End: 16, Target: "Foo"},
	}, nil},
	{"[[category: Foo bar ]]", []ast.Node{
		&ast.Category{Start: 0, End: 22, Target: "Foo bar"},
	}, nil},
	{"[[Category:Foo|Bar]]", []ast.Node{
		&ast.Category{Start: 0, End: 20, Target: "Foo", Ordinal: []ast.Node{text(15, "Bar")}},
	}, nil},
	{"[[Image:B.jpg]]", []ast.Node{
		&ast.Image{Start: 0, End: 15, Target: "B.jpg"},
	}, nil},
	{"[[File:A.png|thumb|Caption]]", []ast.Node{
		&ast.Image{Start: 0, End: 28, Target: "A.png", Text: []ast.Node{text(13, "thumb|Caption")}},
	}, nil},
	{"[[File:A.png|a [[b]] c]]", []ast.Node{
		&ast.Image{Start: 0, End: 24, Target: "A.png", Text: []ast.Node{
			text(13, "a "),
			&ast.Link{Start: 15, End: 20, Target: "b", Text: []ast.Node{text(17, "b")}},
			text(20, " c"),
		}},
	}, nil},
	// categories take no link trail
	{"[[Category:X]]yz", []ast.Node{
		&ast.Category{Start: 0, End: 14, Target: "X"},
		text(14, "yz"),
	}, nil},
}

func TestNamespaces(t *testing.T) {
	runCases(t, defaultConfig(t), namespaceSmall)
}

var invalidLinkSmall = []smallcase{
	{"[[a|b[[c]]", []ast.Node{
		text(0, "[[a|b"),
		&ast.Link{Start: 5, End: 10, Target: "c", Text: []ast.Node{text(7, "c")}},
	}, []ast.Warning{
		{Start: 0, End: 5, Message: ast.InvalidLinkSyntax},
	}},
	{"[[a\nb]]", []ast.Node{text(0, "[[a\nb]]")}, []ast.Warning{
		{Start: 0, End: 3, Message: ast.InvalidLinkSyntax},
	}},
	{"[[a]b]]", []ast.Node{text(0, "[[a]b]]")}, []ast.Warning{
		{Start: 0, End: 3, Message: ast.InvalidLinkSyntax},
	}},
	{"[[a", []ast.Node{text(0, "[[a")}, []ast.Warning{
		{Start: 0, End: 3, Message: ast.InvalidLinkSyntax},
	}},
	{"[[a}}b]]", []ast.Node{text(0, "[[a}}b]]")}, []ast.Warning{
		{Start: 0, End: 5, Message: ast.InvalidLinkSyntax},
		{Start: 3, End: 5, Message: ast.UnexpectedEndTag},
	}},
	{"x [[a|b[[c]]", []ast.Node{
		text(0, "x [[a|b"),
		&ast.Link{Start: 7, End: 12, Target: "c", Text: []ast.Node{text(9, "c")}},
	}, []ast.Warning{
		{Start: 2, End: 7, Message: ast.InvalidLinkSyntax},
	}},
	{"{{t}} [[a|b[[c]]", []ast.Node{
		&ast.Template{Start: 0, End: 5, Name: []ast.Node{text(2, "t")}},
		text(5, " [[a|b"),
		&ast.Link{Start: 11, End: 16, Target: "c", Text: []ast.Node{text(13, "c")}},
	}, []ast.Warning{
		{Start: 6, End: 11, Message: ast.InvalidLinkSyntax},
	}},
	{"=|[[{|[[", []ast.Node{text(0, "=|[[{|[[")}, []ast.Warning{
		{Start: 2, End: 6, Message: ast.InvalidLinkSyntax},
		{Start: 6, End: 8, Message: ast.InvalidLinkSyntax},
	}},
}

func TestInvalidLink(t *testing.T) {
	runCases(t, defaultConfig(t), invalidLinkSmall)
}

func TestUnicodeLinkTrail(t *testing.T) {
	src := config.Default()
	src.LinkTrail = config.Trail("abcé")
	cfg, err := src.Configuration()
	require.NoError(t, err)
	runCases(t, cfg, []smallcase{
		{"[[x]]éa€", []ast.Node{
			&ast.Link{Start: 0, End: 8, Target: "x", Text: []ast.Node{text(2, "x"), text(5, "éa")}},
			text(8, "€"),
		}, nil},
	})
}

var reparseSmall = []smallcase{
	{"[[{{T}}|x]]", []ast.Node{
		&ast.Link{
			Start:       0,
			End:         11,
			Target:      "{{T}}",
			TargetNodes: []ast.Node{&ast.Template{Start: 2, End: 7, Name: []ast.Node{text(4, "T")}}},
			Text:        []ast.Node{text(8, "x")},
			Reparsed:    true,
		},
	}, nil},
	{"[[{{T}}]]", []ast.Node{
		&ast.Link{
			Start:       0,
			End:         9,
			Target:      "{{T}}",
			TargetNodes: []ast.Node{&ast.Template{Start: 2, End: 7, Name: []ast.Node{text(4, "T")}}},
			Text:        []ast.Node{&ast.Template{Start: 2, End: 7, Name: []ast.Node{text(4, "T")}}},
			Reparsed:    true,
		},
	}, nil},
	{"[[a{{{p}}}]]s", []ast.Node{
		&ast.Link{
			Start:  0,
			End:    13,
			Target: "a{{{p}}}",
			TargetNodes: []ast.Node{
				text(2, "a"),
				&ast.Parameter{Start: 3, End: 10, Name: []ast.Node{text(6, "p")}},
			},
			Text: []ast.Node{
				text(2, "a"),
				&ast.Parameter{Start: 3, End: 10, Name: []ast.Node{text(6, "p")}},
				text(12, "s"),
			},
			Reparsed: true,
		},
	}, nil},
	// '|' and ']' inside a template do not end the target
	{"[[{{a|b]]}}|c]]", []ast.Node{
		&ast.Link{
			Start:  0,
			End:    15,
			Target: "{{a|b]]}}",
			TargetNodes: []ast.Node{&ast.Template{Start: 2, End: 11, Name: []ast.Node{text(4, "a")}, Parameters: []ast.TemplateParameter{
				{Start: 6, End: 9, Value: []ast.Node{text(6, "b]]")}},
			}}},
			Text:     []ast.Node{text(12, "c")},
			Reparsed: true,
		},
	}, nil},
}

func TestReparse(t *testing.T) {
	runCases(t, defaultConfig(t), reparseSmall)
}

var templateSmall = []smallcase{
	{"{{foo}}", []ast.Node{
		&ast.Template{Start: 0, End: 7, Name: []ast.Node{text(2, "foo")}},
	}, nil},
	{"{{foo|bar|baz=qux}}", []ast.Node{
		&ast.Template{Start: 0, End: 19, Name: []ast.Node{text(2, "foo")}, Parameters: []ast.TemplateParameter{
			{Start: 6, End: 9, Value: []ast.Node{text(6, "bar")}},
			{Start: 10, End: 17, Name: []ast.Node{text(10, "baz")}, Value: []ast.Node{text(14, "qux")}},
		}},
	}, nil},
	{"{{ foo | a = b }}", []ast.Node{
		&ast.Template{Start: 0, End: 17, Name: []ast.Node{text(3, "foo")}, Parameters: []ast.TemplateParameter{
			{Start: 9, End: 14, Name: []ast.Node{text(9, "a")}, Value: []ast.Node{text(13, "b")}},
		}},
	}, nil},
	{"{{t|a=b=c}}", []ast.Node{
		&ast.Template{Start: 0, End: 11, Name: []ast.Node{text(2, "t")}, Parameters: []ast.TemplateParameter{
			{Start: 4, End: 9, Name: []ast.Node{text(4, "a")}, Value: []ast.Node{text(6, "b=c")}},
		}},
	}, nil},
	{"{{a=b}}", []ast.Node{
		&ast.Template{Start: 0, End: 7, Name: []ast.Node{text(2, "a=b")}},
	}, nil},
	{"{{a|}}", []ast.Node{
		&ast.Template{Start: 0, End: 6, Name: []ast.Node{text(2, "a")}, Parameters: []ast.TemplateParameter{
			{Start: 4, End: 4, Value: []ast.Node{}},
		}},
	}, nil},
	{"{{a|[[b|c]]}}", []ast.Node{
		&ast.Template{Start: 0, End: 13, Name: []ast.Node{text(2, "a")}, Parameters: []ast.TemplateParameter{
			{Start: 4, End: 11, Value: []ast.Node{
				&ast.Link{Start: 4, End: 11, Target: "b", Text: []ast.Node{text(8, "c")}},
			}},
		}},
	}, nil},
	{"x {{a|{{b}}}} y", []ast.Node{
		text(0, "x "),
		&ast.Template{Start: 2, End: 13, Name: []ast.Node{text(4, "a")}, Parameters: []ast.TemplateParameter{
			{Start: 6, End: 11, Value: []ast.Node{
				&ast.Template{Start: 6, End: 11, Name: []ast.Node{text(8, "b")}},
			}},
		}},
		text(13, " y"),
	}, nil},
}

func TestTemplate(t *testing.T) {
	runCases(t, defaultConfig(t), templateSmall)
}

var parameterSmall = []smallcase{
	{"{{{x}}}", []ast.Node{
		&ast.Parameter{Start: 0, End: 7, Name: []ast.Node{text(3, "x")}},
	}, nil},
	{"{{{x|d}}}", []ast.Node{
		&ast.Parameter{Start: 0, End: 9, Name: []ast.Node{text(3, "x")}, Default: []ast.Node{text(5, "d")}},
	}, nil},
	{"{{{x|}}}", []ast.Node{
		&ast.Parameter{Start: 0, End: 8, Name: []ast.Node{text(3, "x")}, Default: []ast.Node{}},
	}, nil},
	{"{{{x|a|b}}}", []ast.Node{
		&ast.Parameter{Start: 0, End: 11, Name: []ast.Node{text(3, "x")}, Default: []ast.Node{text(5, "a")}},
	}, []ast.Warning{
		{Start: 6, End: 7, Message: ast.UselessTextInParameter},
	}},
}

func TestParameter(t *testing.T) {
	runCases(t, defaultConfig(t), parameterSmall)
}

var ambiguousSmall = []smallcase{
	{"{{{{{X}}}}}", []ast.Node{
		&ast.Template{Start: 0, End: 11, Name: []ast.Node{
			&ast.Parameter{Start: 2, End: 9, Name: []ast.Node{text(5, "X")}},
		}},
	}, nil},
	{"{{{{{x|y}}|z}}}", []ast.Node{
		&ast.Parameter{Start: 0, End: 15, Name: []ast.Node{
			&ast.Template{Start: 3, End: 10, Name: []ast.Node{text(5, "x")}, Parameters: []ast.TemplateParameter{
				{Start: 7, End: 8, Value: []ast.Node{text(7, "y")}},
			}},
		}, Default: []ast.Node{text(11, "z")}},
	}, nil},
}

func TestAmbiguousBraces(t *testing.T) {
	runCases(t, defaultConfig(t), ambiguousSmall)
}

var recoverySmall = []smallcase{
	{"{{{X}}", []ast.Node{
		text(0, "{"),
		&ast.Template{Start: 1, End: 6, Name: []ast.Node{text(3, "X")}},
	}, []ast.Warning{
		{Start: 4, End: 6, Message: ast.UnexpectedEndTagRewinding},
	}},
	{"ab{{{X}}", []ast.Node{
		text(0, "ab{"),
		&ast.Template{Start: 3, End: 8, Name: []ast.Node{text(5, "X")}},
	}, []ast.Warning{
		{Start: 6, End: 8, Message: ast.UnexpectedEndTagRewinding},
	}},
	{"a}}b", []ast.Node{text(0, "a}}b")}, []ast.Warning{
		{Start: 1, End: 3, Message: ast.UnexpectedEndTag},
	}},
	// the end tag is read twice, before and after the link is undone
	{"[[a|}}", []ast.Node{text(0, "[[a|}}")}, []ast.Warning{
		{Start: 4, End: 6, Message: ast.UnexpectedEndTag},
		{Start: 0, End: 6, Message: ast.MissingEndTagRewinding},
	}},
	{"{{a|b", []ast.Node{text(0, "{{a|b")}, []ast.Warning{
		{Start: 0, End: 5, Message: ast.MissingEndTagRewinding},
	}},
	{"{{a|[[b}}", []ast.Node{
		&ast.Template{Start: 0, End: 9, Name: []ast.Node{text(2, "a")}, Parameters: []ast.TemplateParameter{
			{Start: 4, End: 7, Value: []ast.Node{text(4, "[[b")}},
		}},
	}, []ast.Warning{
		{Start: 4, End: 9, Message: ast.InvalidLinkSyntax},
	}},
	// The end tag belongs to the template but a link is still open: the
	// tag stays in the link, which is then dropped at the end of the text.
	{"{{a|[[b|c}}", []ast.Node{
		&ast.Template{Start: 0, End: 11, Name: []ast.Node{text(2, "a")}, Parameters: []ast.TemplateParameter{
			{Start: 4, End: 7, Value: []ast.Node{text(4, "[[b")}},
			{Start: 8, End: 9, Value: []ast.Node{text(8, "c")}},
		}},
	}, []ast.Warning{
		{Start: 9, End: 11, Message: ast.UnexpectedEndTagRewinding},
		{Start: 4, End: 11, Message: ast.MissingEndTagRewinding},
	}},
}

func TestRecovery(t *testing.T) {
	runCases(t, defaultConfig(t), recoverySmall)
}

func TestUnterminatedBraces(t *testing.T) {
	for _, in := range []string{"{{{{{{X", "[[[[{{{{", "{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{{"} {
		f, err := parser.Parse(defaultConfig(t), in)
		require.NoError(t, err)
		require.NotEmpty(t, f.Warnings, "in %q", in)
		var got string
		for _, n := range f.Nodes {
			tn, ok := n.(*ast.Text)
			require.True(t, ok, "in %q: unexpected node %s", in, litCfg.Sdump(n))
			got += tn.Value
		}
		assert.Equal(t, in, got)
	}
}

func TestEmpty(t *testing.T) {
	f, err := parser.Parse(nil, "")
	require.NoError(t, err)
	assert.Empty(t, f.Nodes)
	assert.Empty(t, f.Warnings)
}

func TestWarningsAreUnique(t *testing.T) {
	cfg := defaultConfig(t)
	for _, in := range []string{
		strings.Repeat("[[{{a|", 4),
		strings.Repeat("[[{{a|", 2000),
		strings.Repeat("{{a|[[b|", 1000),
		strings.Repeat("x [[a|b", 1000),
	} {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		f, err := parser.ParseContext(ctx, cfg, in)
		cancel()
		require.NoError(t, err, "in %.24q (%d bytes)", in, len(in))
		seen := make(map[ast.Warning]bool)
		for _, w := range f.Warnings {
			require.False(t, seen[w], "in %.24q: warning %v reported twice", in, w)
			seen[w] = true
		}
	}
}
