package mpdproto

import (
	"fmt"
	"strings"
)

// InputError is returned for malformed command lines.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func newInputError(format string, args ...interface{}) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// Tokenize splits a raw command line into whitespace-separated tokens,
// honoring backslash escapes and single/double quoting. Matches the
// upstream tokenizer: a backslash escapes the next character unconditionally,
// a quote character toggles quoted mode (during which whitespace is part of
// the token), and empty tokens between separators are dropped. Tokenize is
// total: a trailing backslash or an unterminated quote doesn't fail, the
// run accumulated so far is just flushed as-is.
func Tokenize(line string) []string {
	var tokens []string
	var current strings.Builder
	haveToken := false

	var quoteChar byte
	inQuotes := false
	escaped := false

	flush := func() {
		if haveToken {
			tokens = append(tokens, current.String())
			current.Reset()
			haveToken = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		if escaped {
			current.WriteByte(c)
			haveToken = true
			escaped = false
			continue
		}

		if c == '\\' {
			escaped = true
			continue
		}

		if inQuotes {
			if c == quoteChar {
				inQuotes = false
				continue
			}
			current.WriteByte(c)
			haveToken = true
			continue
		}

		switch c {
		case '\'', '"':
			inQuotes = true
			quoteChar = c
			haveToken = true
		case ' ', '\t':
			flush()
		default:
			current.WriteByte(c)
			haveToken = true
		}
	}

	flush()

	return tokens
}
