// SPDX-License-Identifier: MPL-2.0

package directive

import (
	"fmt"
	"strings"
)

// parser is a recursive-descent parser over the directive grammar:
//
//	directive  = [ assignment { ("," | ";") assignment } [ "," | ";" ] ]
//	assignment = key ("=" | ":") value
//	value      = bool | string | ident | list | mapping
//	list       = "[" [ value { "," value } [ "," ] ] "]"
//	mapping    = "{" [ assignment { "," assignment } [ "," ] ] "}"
//	key        = ident | string
//
// Bare identifiers other than true/false are read as strings so that enum
// values (WinExe) and package names need no quoting.
type parser struct {
	lex lexer
	tok token
}

// parseLiteral parses src into a tree of bool, string, []any and
// map[string]any values.
func parseLiteral(src string) (map[string]any, error) {
	p := &parser{lex: lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}

	out := map[string]any{}
	for p.tok.kind != tokEOF {
		if err := p.assignment(out); err != nil {
			return nil, err
		}
		switch p.tok.kind {
		case tokComma, tokSemicolon:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokEOF:
		default:
			return nil, p.unexpected("',' or ';'")
		}
	}
	return out, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected(want string) error {
	got := p.tok.kind.String()
	if p.tok.kind == tokIdent || p.tok.kind == tokString {
		got = fmt.Sprintf("%s %q", got, p.tok.text)
	}
	return fmt.Errorf("column %d: expected %s, got %s", p.tok.pos+1, want, got)
}

// assignment parses key=value (or key: value) into out. A repeated key
// replaces the earlier value.
func (p *parser) assignment(out map[string]any) error {
	if p.tok.kind != tokIdent && p.tok.kind != tokString {
		return p.unexpected("key")
	}
	key := p.tok.text
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok.kind != tokEquals && p.tok.kind != tokColon {
		return p.unexpected("'=' or ':'")
	}
	if err := p.advance(); err != nil {
		return err
	}
	v, err := p.value()
	if err != nil {
		return err
	}
	out[key] = v
	return nil
}

func (p *parser) value() (any, error) {
	tok := p.tok
	switch tok.kind {
	case tokString:
		return tok.text, p.advance()
	case tokIdent:
		switch strings.ToLower(tok.text) {
		case "true":
			return true, p.advance()
		case "false":
			return false, p.advance()
		}
		return tok.text, p.advance()
	case tokLBracket:
		return p.list()
	case tokLBrace:
		return p.mapping()
	default:
		return nil, p.unexpected("value")
	}
}

func (p *parser) list() (any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	items := []any{}
	for p.tok.kind != tokRBracket {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.tok.kind != tokRBracket {
			return nil, p.unexpected("',' or ']'")
		}
	}
	return items, p.advance()
}

func (p *parser) mapping() (any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	for p.tok.kind != tokRBrace {
		if err := p.assignment(fields); err != nil {
			return nil, err
		}
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.tok.kind != tokRBrace {
			return nil, p.unexpected("',' or '}'")
		}
	}
	return fields, p.advance()
}
