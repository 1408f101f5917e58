package req

import (
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/munge/pkg"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax = pkg.NewError("invalid requirement file")
	ErrRead   = pkg.NewError("failed to read requirement file")
)

// Parse reads a requirement file.
//
// Entries are kept as written. A section whose first entry after the name
// starts with [PlatformPrefix] takes that entry as its platform instead.
func Parse(r io.Reader) (*Database, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrRead.Wrap(err)
	}

	return ParseString(string(b))
}

// ParseString reads a requirement file from s.
func ParseString(s string) (*Database, error) {
	p := &parser{input: s, line: 1}

	return p.parseFile()
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenWord
	tokenString
	tokenOpen
	tokenClose
)

type token struct {
	kind tokenKind
	text string
	line int
}

type parser struct {
	input string
	pos   int
	line  int
}

// parseFile parses: 'ucft' '{' Section* '}' EOF.
func (p *parser) parseFile() (*Database, error) {
	if err := p.expectWord("ucft"); err != nil {
		return nil, err
	}

	if err := p.expect(tokenOpen, "{"); err != nil {
		return nil, err
	}

	db := new(Database)

	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.kind == tokenClose:
			if tok, err := p.next(); err != nil {
				return nil, err
			} else if tok.kind != tokenEOF {
				return nil, p.unexpected(tok, "end of file")
			}

			return db, nil

		case tok.kind == tokenWord && tok.text == "REQN":
			if err := p.parseSection(db); err != nil {
				return nil, err
			}

		default:
			return nil, p.unexpected(tok, "REQN or }")
		}
	}
}

// parseSection parses the remainder of: 'REQN' '{' String String* '}'.
func (p *parser) parseSection(db *Database) error {
	if err := p.expect(tokenOpen, "{"); err != nil {
		return err
	}

	tok, err := p.next()
	if err != nil {
		return err
	}

	if tok.kind != tokenString {
		return p.unexpected(tok, "section name")
	}

	s := db.Section(tok.text)
	first := true

	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch tok.kind {
		case tokenClose:
			return nil
		case tokenString:
			if first && strings.HasPrefix(tok.text, PlatformPrefix) {
				s.Platform = strings.TrimPrefix(tok.text, PlatformPrefix)
			} else {
				s.Entries = append(s.Entries, tok.text)
			}

			first = false
		default:
			return p.unexpected(tok, "entry or }")
		}
	}
}

func (p *parser) expectWord(word string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}

	if tok.kind != tokenWord || tok.text != word {
		return p.unexpected(tok, word)
	}

	return nil
}

func (p *parser) expect(kind tokenKind, want string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}

	if tok.kind != kind {
		return p.unexpected(tok, want)
	}

	return nil
}

func (p *parser) unexpected(tok token, want string) error {
	found := tok.text
	if tok.kind == tokenEOF {
		found = "end of file"
	}

	return ErrSyntax.With(
		slog.Int("line", tok.line),
		slog.String("expected", want),
		slog.String("found", found),
	)
}

// next returns the next token, skipping whitespace.
func (p *parser) next() (token, error) {
	for p.pos < len(p.input) {
		switch c := p.input[p.pos]; c {
		case '\n':
			p.line++
			p.pos++
		case ' ', '\t', '\r':
			p.pos++
		case '{':
			p.pos++

			return token{tokenOpen, "{", p.line}, nil
		case '}':
			p.pos++

			return token{tokenClose, "}", p.line}, nil
		case '"':
			end := strings.IndexAny(p.input[p.pos+1:], "\"\n")
			if end < 0 || p.input[p.pos+1+end] != '"' {
				return token{}, ErrSyntax.With(
					slog.Int("line", p.line),
					slog.String("error", "unterminated string"),
				)
			}

			text := p.input[p.pos+1 : p.pos+1+end]
			p.pos += end + 2

			return token{tokenString, text, p.line}, nil
		default:
			start := p.pos
			for p.pos < len(p.input) && isWordByte(p.input[p.pos]) {
				p.pos++
			}

			if p.pos == start {
				return token{}, ErrSyntax.With(
					slog.Int("line", p.line),
					slog.String("found", string(rune(c))),
				)
			}

			return token{tokenWord, p.input[start:p.pos], p.line}, nil
		}
	}

	return token{kind: tokenEOF, line: p.line}, nil
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z')
}
