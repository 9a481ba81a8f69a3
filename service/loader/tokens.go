package loader

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	commentCode
	directiveCode
	identifierCode
	numberCode
	stringCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	commentToken    = parsly.NewToken(commentCode, "Comment", newCommentMatcher())
	directiveToken  = parsly.NewToken(directiveCode, "Directive", newDirectiveMatcher())
	identifierToken = parsly.NewToken(identifierCode, "Identifier", newIdentifierMatcher())
	numberToken     = parsly.NewToken(numberCode, "Number", newNumberMatcher())
	stringToken     = parsly.NewToken(stringCode, "String", newStringMatcher())
)

// Custom matchers
func newCommentMatcher() parsly.Matcher {
	return &commentMatcher{}
}

func newDirectiveMatcher() parsly.Matcher {
	return &directiveMatcher{}
}

func newIdentifierMatcher() parsly.Matcher {
	return &identifierMatcher{}
}

func newNumberMatcher() parsly.Matcher {
	return &numberMatcher{}
}

func newStringMatcher() parsly.Matcher {
	return &stringMatcher{}
}

// commentMatcher matches a '#' comment running to end of line
type commentMatcher struct{}

func (m *commentMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size || input[pos] != '#' {
		return 0
	}
	matched := 1
	for pos+matched < size && input[pos+matched] != '\n' {
		matched++
	}
	return matched
}

// directiveMatcher matches '.' followed by letters
type directiveMatcher struct{}

func (m *directiveMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size || input[pos] != '.' {
		return 0
	}
	matched := 1
	for pos+matched < size && isLetter(input[pos+matched]) {
		matched++
	}
	if matched == 1 {
		return 0
	}
	return matched
}

// identifierMatcher matches operation mnemonics and symbol names
type identifierMatcher struct{}

func (m *identifierMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size || !isLetter(input[pos]) {
		return 0
	}
	matched := 1
	for pos+matched < size {
		c := input[pos+matched]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			break
		}
		matched++
	}
	return matched
}

// numberMatcher matches decimal and 0x-prefixed hexadecimal literals with an
// optional leading minus
type numberMatcher struct{}

func (m *numberMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	matched := 0
	if pos < size && input[pos] == '-' {
		matched++
	}
	if pos+matched >= size || !isDigit(input[pos+matched]) {
		return 0
	}
	hex := false
	if input[pos+matched] == '0' && pos+matched+1 < size && (input[pos+matched+1] == 'x' || input[pos+matched+1] == 'X') {
		hex = true
		matched += 2
		if pos+matched >= size || !isHexDigit(input[pos+matched]) {
			return 0
		}
	}
	for pos+matched < size {
		c := input[pos+matched]
		if hex && isHexDigit(c) || !hex && isDigit(c) {
			matched++
			continue
		}
		break
	}
	return matched
}

// stringMatcher matches a double-quoted literal without escapes
type stringMatcher struct{}

func (m *stringMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size || input[pos] != '"' {
		return 0
	}
	matched := 1
	for pos+matched < size {
		if input[pos+matched] == '"' {
			return matched + 1
		}
		matched++
	}
	return 0
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
