package lang

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/munge/log"
)

// ParseString parses a document from a string.
func ParseString(ctx context.Context, s string, opts ...Option) (*Document, error) {
	return parse(ctx, s, makeOptions(opts...))
}

func parse(ctx context.Context, s string, o options) (*Document, error) {
	p := &parser{
		input:  []byte(s),
		line:   1,
		col:    1,
		opts:   o,
		logger: o.logger,
	}

	entities, err := p.parseDocument()
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = s
		}

		return nil, err
	}

	doc := &Document{
		Kind:     o.kind,
		Platform: o.platform,
		Entities: entities,
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.String("kind", o.kind.String()),
		slog.Int("entity_count", len(entities)))

	return doc, nil
}

// parser holds the parser state.
type parser struct {
	input  []byte
	pos    int
	line   int
	col    int
	opts   options
	logger log.Logger
}

// fail returns a ParseError at pos wrapping cause.
func (p *parser) fail(pos Position, cause error) error {
	return &ParseError{Err: cause, Pos: pos}
}

// parseDocument parses: Statement* EOF.
func (p *parser) parseDocument() ([]Entity, error) {
	var (
		entities []Entity
		generic  []*Instance
	)

	for {
		p.skipWhitespaceAndComments()

		if p.eof() {
			break
		}

		pos := p.position()

		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		if build, ok := keywords[name]; ok {
			mark := *p

			raw, err := p.parseKeywordBody(name, pos)
			if err == nil {
				entities = append(entities, build(raw))

				continue
			}

			// Unreserved keywords fall back to the generic rule.
			if IsReserved(name) {
				return nil, err
			}

			*p = mark

			p.logger.Trace("keyword rule failed, parsing generic instance",
				slog.String("name", name),
				slog.Any("position", pos))
		}

		if IsReserved(name) {
			return nil, p.fail(pos, ErrReservedKeyword.With(slog.String("name", name)))
		}

		inst, err := p.parseInstance(name, pos)
		if err != nil {
			return nil, err
		}

		generic = append(generic, inst)
		entities = append(entities, inst)
	}

	return p.expandTopLevel(entities, generic), nil
}

// expandTopLevel applies macro expansion to the document-level statements.
// Scoped keyword statements lifted out of a platform block become keyword
// entities, as if written at document level.
func (p *parser) expandTopLevel(entities []Entity, generic []*Instance) []Entity {
	hasMacro := false

	for _, inst := range generic {
		if _, ok := isMacro(inst); ok {
			hasMacro = true

			break
		}
	}

	if !hasMacro {
		return entities
	}

	out := make([]Entity, 0, len(entities))

	for _, e := range entities {
		inst, ok := e.(*Instance)
		if !ok {
			out = append(out, e)

			continue
		}

		for _, x := range Expand([]*Instance{inst}, p.opts.platform) {
			if build, ok := keywords[x.Name]; ok && x.Scoped {
				out = append(out, build(x))

				continue
			}

			out = append(out, x)
		}
	}

	return out
}

// parseInstance parses the remainder of a generic statement after its name:
// Args (';' | '{' Statement* '}').
func (p *parser) parseInstance(name string, pos Position) (*Instance, error) {
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	inst := &Instance{Name: name, Args: args, Pos: pos}

	p.skipWhitespaceAndComments()

	switch {
	case p.expect(';'):
		return inst, nil

	case p.expect('{'):
		inst.Scoped = true

		body, err := p.parseBody(true)
		if err != nil {
			return nil, err
		}

		inst.Body = Expand(body, p.opts.platform)

		return inst, nil

	case p.eof():
		return nil, p.fail(p.position(), ErrUnexpectedEOF.With(slog.String("expected", "; or {")))

	default:
		return nil, p.fail(p.position(), ErrUnexpectedChar.With(
			slog.String("expected", "; or {"),
			slog.String("found", string(p.peek())),
		))
	}
}

// parseKeywordBody parses the remainder of a keyword statement:
// Args '{' Property* '}'.
func (p *parser) parseKeywordBody(keyword string, pos Position) (*Instance, error) {
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	p.skipWhitespaceAndComments()

	if !p.expect('{') {
		if p.eof() {
			return nil, p.fail(p.position(), ErrUnexpectedEOF.With(slog.String("expected", "{")))
		}

		return nil, p.fail(p.position(), ErrUnexpectedChar.With(
			slog.String("expected", "{"),
			slog.String("keyword", keyword),
			slog.String("found", string(p.peek())),
		))
	}

	body, err := p.parseBody(false)
	if err != nil {
		return nil, err
	}

	return &Instance{
		Name:   keyword,
		Args:   args,
		Body:   body,
		Scoped: true,
		Pos:    pos,
	}, nil
}

// parseBody parses statements up to and including the closing '}'.
// If nested is false, only leaf properties are accepted.
func (p *parser) parseBody(nested bool) ([]*Instance, error) {
	body := make([]*Instance, 0)

	for {
		p.skipWhitespaceAndComments()

		if p.eof() {
			return nil, p.fail(p.position(), ErrUnexpectedEOF.With(slog.String("expected", "}")))
		}

		if p.expect('}') {
			return body, nil
		}

		pos := p.position()

		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		if IsReserved(name) {
			return nil, p.fail(pos, ErrReservedKeyword.With(slog.String("name", name)))
		}

		if nested {
			inst, err := p.parseInstance(name, pos)
			if err != nil {
				return nil, err
			}

			body = append(body, inst)

			continue
		}

		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}

		p.skipWhitespaceAndComments()

		if !p.expect(';') {
			return nil, p.fail(p.position(), ErrUnexpectedChar.With(
				slog.String("expected", ";"),
				slog.String("name", name),
				slog.String("found", string(p.peek())),
			))
		}

		body = append(body, &Instance{Name: name, Args: args, Pos: pos})
	}
}

// parseArgs parses: '(' (Literal (',' Literal)*)? ')'.
func (p *parser) parseArgs() ([]Literal, error) {
	p.skipWhitespaceAndComments()

	if !p.expect('(') {
		return nil, p.fail(p.position(), ErrUnexpectedChar.With(
			slog.String("expected", "("),
			slog.String("found", string(p.peek())),
		))
	}

	args := make([]Literal, 0)

	p.skipWhitespaceAndComments()

	if p.expect(')') {
		return args, nil
	}

	for {
		p.skipWhitespaceAndComments()

		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}

		args = append(args, lit)

		p.skipWhitespaceAndComments()

		switch {
		case p.expect(','):
			continue
		case p.expect(')'):
			return args, nil
		case p.eof():
			return nil, p.fail(p.position(), ErrUnexpectedEOF.With(slog.String("expected", ")")))
		default:
			return nil, p.fail(p.position(), ErrUnexpectedChar.With(
				slog.String("expected", ", or )"),
				slog.String("found", string(p.peek())),
			))
		}
	}
}

// parseLiteral parses a quoted string or a number.
func (p *parser) parseLiteral() (Literal, error) {
	switch ch := p.peek(); {
	case ch == '"' || ch == '\'':
		s, err := p.parseString(ch)
		if err != nil {
			return Literal{}, err
		}

		return NewString(s), nil

	case ch == '+' || ch == '-' || ch == '.' || isDigit(ch):
		return p.parseNumber()

	case p.eof():
		return Literal{}, p.fail(p.position(), ErrUnexpectedEOF.With(slog.String("expected", "literal")))

	default:
		return Literal{}, p.fail(p.position(), ErrUnexpectedChar.With(
			slog.String("expected", "literal"),
			slog.String("found", string(ch)),
		))
	}
}

// parseString parses a string delimited by quote. There are no escapes, and
// a string may not span lines.
func (p *parser) parseString(quote rune) (string, error) {
	pos := p.position()

	p.advance() // skip opening quote

	start := p.pos

	for !p.eof() {
		ch := p.peek()

		if ch == quote {
			s := string(p.input[start:p.pos])

			p.advance() // skip closing quote

			return s, nil
		}

		if ch == '\n' || ch == '\r' {
			break
		}

		p.advance()
	}

	return "", p.fail(pos, ErrUnterminatedString)
}

// parseNumber parses: [+-]? (digits ('.' digits*)? | '.' digits) ([eE] [+-]? digits)?
// and applies the configured coercion.
func (p *parser) parseNumber() (Literal, error) {
	pos := p.position()
	start := p.pos
	isFloat := false

	if ch := p.peek(); ch == '+' || ch == '-' {
		p.advance()
	}

	intDigits := p.skipDigits()

	fracDigits := 0

	if p.peek() == '.' {
		isFloat = true

		p.advance()

		fracDigits = p.skipDigits()
	}

	if intDigits == 0 && fracDigits == 0 {
		return Literal{}, p.fail(pos, ErrInvalidNumber.With(
			slog.String("text", string(p.input[start:p.pos]))))
	}

	if ch := p.peek(); ch == 'e' || ch == 'E' {
		save, line, col := p.pos, p.line, p.col

		p.advance()

		if ch := p.peek(); ch == '+' || ch == '-' {
			p.advance()
		}

		if p.skipDigits() == 0 {
			p.pos, p.line, p.col = save, line, col

			return Literal{}, p.fail(p.position(), ErrInvalidNumber.With(
				slog.String("text", string(p.input[start:p.pos+1]))))
		}

		isFloat = true
	}

	text := string(p.input[start:p.pos])

	var lit Literal

	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Literal{}, p.fail(pos, ErrInvalidNumber.Wrap(err).With(slog.String("text", text)))
		}

		lit = NewFloat(f)
	} else {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Literal{}, p.fail(pos, ErrInvalidNumber.Wrap(err).With(slog.String("text", text)))
		}

		lit = NewInteger(n)
	}

	return p.coerce(lit), nil
}

// coerce applies the string and float coercion options to a number.
func (p *parser) coerce(lit Literal) Literal {
	switch {
	case p.opts.strings:
		return NewString(lit.Text())
	case p.opts.floats && lit.Type == TypeInteger:
		return NewFloat(float64(lit.Int))
	default:
		return lit
	}
}

// parseIdentifier parses an identifier token.
func (p *parser) parseIdentifier() (string, error) {
	start := p.pos

	if !isIdentifierStart(p.peek()) {
		if p.eof() {
			return "", p.fail(p.position(), ErrUnexpectedEOF.With(slog.String("expected", "identifier")))
		}

		return "", p.fail(p.position(), ErrUnexpectedChar.With(
			slog.String("expected", "identifier"),
			slog.String("found", string(p.peek())),
		))
	}

	p.advance()

	for !p.eof() && isIdentifierContinue(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos]), nil
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if !p.eof() && p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipDigits() int {
	n := 0

	for !p.eof() && isDigit(p.peek()) {
		p.advance()

		n++
	}

	return n
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *parser) skipWhitespaceAndComments() {
	for {
		p.skipWhitespace()

		if p.eof() {
			return
		}

		if p.peekN(2) == "//" {
			p.skipLineComment()

			continue
		}

		break
	}
}

func (p *parser) skipLineComment() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}

	if !p.eof() {
		p.advance() // skip '\n'
	}
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}
