package lang

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/craflin/mare-sub000/log"
)

// Option configures parsing.
type Option func(*config)

type config struct {
	logger  log.Logger
	onError func(error)
	readFn  func(string) ([]byte, error)
}

// WithLogger sets the logger used to trace parsing.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithErrorHandler registers fn to receive every syntax or include error
// at the point it is detected. The same error is also returned to the caller.
func WithErrorHandler(fn func(error)) Option {
	return func(c *config) { c.onError = fn }
}

// WithReadFile replaces the function used to read the top-level file and
// every included file.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(c *config) { c.readFn = fn }
}

func makeConfig(opts ...Option) *config {
	c := &config{readFn: os.ReadFile}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ParseFile parses the Marefile at path, splicing in included files.
func ParseFile(ctx context.Context, path string, opts ...Option) (*Block, error) {
	cfg := makeConfig(opts...)

	data, err := cfg.readFn(path)
	if err != nil {
		return nil, cfg.report(ErrReadFile.
			WithPosition(Position{File: path}).
			Wrap(err))
	}

	return parse(ctx, cfg, path, data, nil)
}

// ParseString parses text as a Marefile named name. Includes are resolved
// relative to the directory of name.
func ParseString(
	ctx context.Context,
	name, text string,
	opts ...Option,
) (*Block, error) {
	return parse(ctx, makeConfig(opts...), name, []byte(text), nil)
}

func parse(
	ctx context.Context,
	cfg *config,
	file string,
	data []byte,
	stack []string,
) (*Block, error) {
	p := &parser{
		ctx:   ctx,
		cfg:   cfg,
		lex:   newLexer(file, data),
		file:  file,
		stack: append(slices.Clip(stack), cleanPath(file)),
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	block, err := p.parseFile()
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.String("file", file),
		slog.Int("statements", len(block.Statements)))

	return block, nil
}

// parser is a recursive-descent parser with one token of lookahead.
type parser struct {
	ctx   context.Context
	cfg   *config
	lex   *lexer
	tok   token
	file  string
	stack []string // files being parsed, outermost first
}

func (p *parser) pos() Position {
	return Position{File: p.file, Line: p.tok.line}
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return p.cfg.report(err)
	}

	p.tok = tok

	return nil
}

// expect consumes a token of the given kind.
func (p *parser) expect(kind tokenKind) error {
	if p.tok.kind != kind {
		return p.unexpected()
	}

	return p.advance()
}

func (p *parser) unexpected() error {
	return p.cfg.report(ErrUnexpectedToken.
		WithPosition(p.pos()).
		Wrap(lexError(p.tok.describe())).
		With(slog.String("token", p.tok.text)))
}

// parseFile parses: { statement } EOF.
func (p *parser) parseFile() (*Block, error) {
	block := &Block{node: node{Pos: Position{File: p.file, Line: 1}}}

	for p.tok.kind != tokenEOF {
		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		block.Statements = append(block.Statements, stmts...)
	}

	return block, nil
}

// parseStatement parses one statement and its trailing separators. An
// include yields all statements of the included file.
func (p *parser) parseStatement() ([]Statement, error) {
	var (
		stmts []Statement
		err   error
	)

	switch {
	case p.tok.keyword("if"):
		var stmt Statement

		stmt, err = p.parseIf()
		stmts = []Statement{stmt}

	case p.tok.keyword("include"):
		stmts, err = p.parseInclude()

	default:
		var stmt Statement

		stmt, err = p.parseAssignment()
		stmts = []Statement{stmt}
	}

	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokenComma || p.tok.kind == tokenSemicolon {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	return stmts, nil
}

// parseStatements parses: '{' { statement } '}' | statement.
func (p *parser) parseStatements() (Statement, error) {
	if p.tok.kind == tokenLeftBrace {
		return p.parseBlock()
	}

	pos := p.pos()

	stmts, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if len(stmts) == 1 {
		return stmts[0], nil
	}

	return &Block{node: node{Pos: pos}, Statements: stmts}, nil
}

// parseBlock parses: '{' { statement } '}'.
func (p *parser) parseBlock() (*Block, error) {
	block := &Block{node: node{Pos: p.pos()}}

	if err := p.expect(tokenLeftBrace); err != nil {
		return nil, err
	}

	for p.tok.kind != tokenRightBrace {
		if p.tok.kind == tokenEOF {
			return nil, p.unexpected()
		}

		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		block.Statements = append(block.Statements, stmts...)
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	return block, nil
}

// parseIf parses: 'if' expr statements [ 'else' statements ].
func (p *parser) parseIf() (*Conditional, error) {
	cond := &Conditional{node: node{Pos: p.pos()}}

	if err := p.advance(); err != nil {
		return nil, err
	}

	var err error

	if cond.Cond, err = p.parseExpr(); err != nil {
		return nil, err
	}

	if cond.Then, err = p.parseStatements(); err != nil {
		return nil, err
	}

	if p.tok.keyword("else") {
		if err := p.advance(); err != nil {
			return nil, err
		}

		if cond.Else, err = p.parseStatements(); err != nil {
			return nil, err
		}
	}

	return cond, nil
}

// parseInclude parses: 'include' (string|quotedstring), and returns the
// statements of the included file.
func (p *parser) parseInclude() ([]Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.kind != tokenString && p.tok.kind != tokenQuotedString {
		return nil, p.unexpected()
	}

	pos := p.pos()
	path := p.tok.text

	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(p.file), path)
	}

	if slices.Contains(p.stack, cleanPath(path)) {
		return nil, p.cfg.report(ErrIncludeCycle.
			WithPosition(pos).
			With(slog.String("include", path)))
	}

	data, err := p.cfg.readFn(path)
	if err != nil {
		return nil, p.cfg.report(ErrReadFile.
			WithPosition(pos).
			Wrap(err).
			With(slog.String("include", path)))
	}

	p.cfg.logger.TraceContext(p.ctx, "include",
		slog.String("file", p.file),
		slog.String("include", path))

	block, err := parse(p.ctx, p.cfg, path, data, p.stack)
	if err != nil {
		return nil, err
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	return block.Statements, nil
}

// parseAssignment parses:
//
//	'-' (string|quotedstring)
//	(string|quotedstring) [ ('='|'+='|'-=') expr ]
func (p *parser) parseAssignment() (Statement, error) {
	pos := p.pos()

	if p.tok.kind == tokenMinus {
		if err := p.advance(); err != nil {
			return nil, err
		}

		name, err := p.parseName()
		if err != nil {
			return nil, err
		}

		return &Remove{node: node{Pos: pos}, Name: name}, nil
	}

	name, err := p.parseName()
	if err != nil {
		return nil, err
	}

	assign := &Assign{node: node{Pos: pos}, Name: name}

	switch p.tok.kind {
	case tokenAssign:
		assign.Op = OpSet
	case tokenPlusAssign:
		assign.Op = OpAppend
	case tokenMinusAssign:
		assign.Op = OpRemove
	default:
		return assign, nil
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	if assign.Value, err = p.parseExpr(); err != nil {
		return nil, err
	}

	return assign, nil
}

func (p *parser) parseName() (*StringLiteral, error) {
	if p.tok.kind != tokenString && p.tok.kind != tokenQuotedString {
		return nil, p.unexpected()
	}

	name := &StringLiteral{
		node:   node{Pos: p.pos()},
		Text:   p.tok.text,
		Quoted: p.tok.kind == tokenQuotedString,
	}

	return name, p.advance()
}

// parseExpr parses: orformula [ '?' expr ':' expr ].
func (p *parser) parseExpr() (Statement, error) {
	pos := p.pos()

	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	if p.tok.kind != tokenQuestion {
		return cond, nil
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if err := p.expect(tokenColon); err != nil {
		return nil, err
	}

	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &Conditional{node: node{Pos: pos}, Cond: cond, Then: then, Else: els}, nil
}

// precedence lists the binary operator levels from loosest to tightest:
// orformula, andformula, comparison, relation, concat.
var precedence = [...]map[tokenKind]BinaryOp{
	{tokenOr: OpOr},
	{tokenAnd: OpAnd},
	{tokenEqual: OpEqual, tokenNotEqual: OpNotEqual},
	{
		tokenLess:         OpLess,
		tokenGreater:      OpGreater,
		tokenLessEqual:    OpLessEqual,
		tokenGreaterEqual: OpGreaterEqual,
	},
	{tokenPlus: OpConcat, tokenMinus: OpSubtract},
}

// parseBinary parses a left-associative chain of operators at the given
// precedence level.
func (p *parser) parseBinary(level int) (Statement, error) {
	if level == len(precedence) {
		return p.parseValue()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := precedence[level][p.tok.kind]
		if !ok {
			return left, nil
		}

		pos := p.pos()

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}

		left = &Binary{node: node{Pos: pos}, Op: op, Left: left, Right: right}
	}
}

// parseValue parses:
//
//	'!' value | '(' expr ')' | '{' { statement } '}'
//	'true' | 'false' | string | quotedstring
func (p *parser) parseValue() (Statement, error) {
	pos := p.pos()

	switch p.tok.kind {
	case tokenNot:
		if err := p.advance(); err != nil {
			return nil, err
		}

		operand, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		return &Unary{node: node{Pos: pos}, Operand: operand}, nil

	case tokenLeftParen:
		if err := p.advance(); err != nil {
			return nil, err
		}

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		return expr, p.expect(tokenRightParen)

	case tokenLeftBrace:
		return p.parseBlock()

	case tokenQuotedString:
		lit := &StringLiteral{node: node{Pos: pos}, Text: p.tok.text, Quoted: true}

		return lit, p.advance()

	case tokenString:
		var stmt Statement

		switch text := p.tok.text; {
		case text == "true":
			stmt = &StringLiteral{node: node{Pos: pos}, Text: "true", Quoted: true}
		case text == "false":
			stmt = &StringLiteral{node: node{Pos: pos}}
		case strings.Contains(text, "$("):
			stmt = &StringLiteral{node: node{Pos: pos}, Text: text}
		default:
			stmt = &Reference{node: node{Pos: pos}, Name: text}
		}

		return stmt, p.advance()
	}

	return nil, p.unexpected()
}

// report forwards err to the error handler, then returns it.
func (c *config) report(err error) error {
	if c.onError != nil {
		c.onError(err)
	}

	return err
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return filepath.Clean(path)
}
