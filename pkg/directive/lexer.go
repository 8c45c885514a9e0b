// SPDX-License-Identifier: MPL-2.0

package directive

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokComma
	tokSemicolon
	tokColon
	tokEquals
)

type (
	tokenKind int

	token struct {
		kind tokenKind
		text string
		pos  int
	}

	lexer struct {
		src string
		pos int
	}
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of directive"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokComma:
		return "','"
	case tokSemicolon:
		return "';'"
	case tokColon:
		return "':'"
	case tokEquals:
		return "'='"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

var punctuation = map[byte]tokenKind{
	'{': tokLBrace,
	'}': tokRBrace,
	'[': tokLBracket,
	']': tokRBracket,
	',': tokComma,
	';': tokSemicolon,
	':': tokColon,
	'=': tokEquals,
}

// next returns the following token. Offsets in errors are 1-based columns
// within the directive text.
func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	if kind, ok := punctuation[c]; ok {
		l.pos++
		return token{kind: kind, text: string(c), pos: start}, nil
	}
	if c == '"' || c == '\'' {
		s, err := l.quoted(c)
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: s, pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	if !isIdentStart(r) {
		return token{}, fmt.Errorf("column %d: unexpected character %q", start+1, r)
	}
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
}

// quoted scans a string literal delimited by quote. Supported escapes are
// \\, \", \', \n and \t.
func (l *lexer) quoted(quote byte) (string, error) {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == quote:
			l.pos++
			return sb.String(), nil
		case c == '\\':
			if l.pos+1 >= len(l.src) {
				return "", fmt.Errorf("column %d: unterminated string", start+1)
			}
			esc := l.src[l.pos+1]
			switch esc {
			case '\\', '"', '\'':
				sb.WriteByte(esc)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				return "", fmt.Errorf("column %d: unknown escape \\%c", l.pos+1, esc)
			}
			l.pos += 2
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return "", fmt.Errorf("column %d: unterminated string", start+1)
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
