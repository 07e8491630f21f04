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

package ast

import (
	"fmt"
	"strconv"
)

// WarningMessage identifies the kind of problem a Warning reports.
type WarningMessage int

const (
	// InvalidLinkSyntax reports a link that could not be completed.
	InvalidLinkSyntax WarningMessage = iota
	// MissingEndTagRewinding reports a construct still open at the end of
	// the input. Its characters were re-read as text.
	MissingEndTagRewinding
	// UnexpectedEndTag reports an end tag that closes nothing.
	UnexpectedEndTag
	// UnexpectedEndTagRewinding reports an end tag that closed an outer
	// construct and forced an inner one to be re-read as text.
	UnexpectedEndTagRewinding
	// UselessTextInParameter reports a second default in {{{...}}}.
	UselessTextInParameter
)

var warningNames = [...]string{
	InvalidLinkSyntax:         "InvalidLinkSyntax",
	MissingEndTagRewinding:    "MissingEndTagRewinding",
	UnexpectedEndTag:          "UnexpectedEndTag",
	UnexpectedEndTagRewinding: "UnexpectedEndTagRewinding",
	UselessTextInParameter:    "UselessTextInParameter",
}

var warningText = [...]string{
	InvalidLinkSyntax:         "the syntax of this link is invalid",
	MissingEndTagRewinding:    "missing end tag, the construct is read as text",
	UnexpectedEndTag:          "end tag without a matching start tag",
	UnexpectedEndTagRewinding: "end tag closes an outer construct, the inner construct is read as text",
	UselessTextInParameter:    "text after the default value of a parameter is ignored",
}

func (m WarningMessage) valid() bool { return m >= 0 && int(m) < len(warningNames) }

// Name returns the identifier of the message kind, e.g. "UnexpectedEndTag".
func (m WarningMessage) Name() string {
	if !m.valid() {
		return "WarningMessage(" + strconv.Itoa(int(m)) + ")"
	}
	return warningNames[m]
}

// String returns a human readable description.
func (m WarningMessage) String() string {
	if !m.valid() {
		return m.Name()
	}
	return warningText[m]
}

func (m WarningMessage) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("ast: invalid warning message %d", int(m))
	}
	return []byte(warningNames[m]), nil
}

func (m *WarningMessage) UnmarshalText(b []byte) error {
	for i, name := range warningNames {
		if name == string(b) {
			*m = WarningMessage(i)
			return nil
		}
	}
	return fmt.Errorf("ast: unknown warning message %q", b)
}

// Warning is a problem found in the input. Warnings never stop a parse.
type Warning struct {
	Start   int
	End     int
	Message WarningMessage
}

// Span returns the range the warning refers to.
func (w Warning) Span() Span { return Span{w.Start, w.End} }

func (w Warning) Error() string {
	return fmt.Sprintf("%d..%d: %s", w.Start, w.End, w.Message)
}
