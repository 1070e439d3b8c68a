package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// tokenKind classifies a lexical token.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenLeftBrace
	tokenRightBrace
	tokenLeftParen
	tokenRightParen
	tokenComma
	tokenSemicolon
	tokenQuestion
	tokenColon
	tokenNot
	tokenAssign
	tokenPlusAssign
	tokenMinusAssign
	tokenPlus
	tokenMinus
	tokenOr
	tokenAnd
	tokenEqual
	tokenNotEqual
	tokenLess
	tokenGreater
	tokenLessEqual
	tokenGreaterEqual
	tokenString
	tokenQuotedString
)

var tokenText = [...]string{
	tokenEOF:          "end of file",
	tokenLeftBrace:    "{",
	tokenRightBrace:   "}",
	tokenLeftParen:    "(",
	tokenRightParen:   ")",
	tokenComma:        ",",
	tokenSemicolon:    ";",
	tokenQuestion:     "?",
	tokenColon:        ":",
	tokenNot:          "!",
	tokenAssign:       "=",
	tokenPlusAssign:   "+=",
	tokenMinusAssign:  "-=",
	tokenPlus:         "+",
	tokenMinus:        "-",
	tokenOr:           "||",
	tokenAnd:          "&&",
	tokenEqual:        "==",
	tokenNotEqual:     "!=",
	tokenLess:         "<",
	tokenGreater:      ">",
	tokenLessEqual:    "<=",
	tokenGreaterEqual: ">=",
	tokenString:       "string",
	tokenQuotedString: "quoted string",
}

func (k tokenKind) String() string {
	if int(k) < len(tokenText) {
		return tokenText[k]
	}

	return "token(" + strconv.Itoa(int(k)) + ")"
}

// token is a lexeme with the line it starts on.
type token struct {
	kind tokenKind
	text string
	line int
}

// describe renders the token for error messages.
func (t token) describe() string {
	switch t.kind {
	case tokenString:
		return strconv.Quote(t.text)
	case tokenQuotedString:
		return "quoted string " + strconv.Quote(t.text)
	default:
		return strconv.Quote(t.kind.String())
	}
}

// keyword reports whether t is the unquoted word w.
func (t token) keyword(w string) bool {
	return t.kind == tokenString && t.text == w
}

// lexer splits Marefile text into tokens.
type lexer struct {
	input []byte
	file  string
	pos   int
	line  int
}

func newLexer(file string, input []byte) *lexer {
	return &lexer{input: input, file: file, line: 1}
}

// next scans the next token.
func (l *lexer) next() (token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token{}, err
	}

	if l.eof() {
		return token{kind: tokenEOF, line: l.line}, nil
	}

	line := l.line
	ch := l.peek()

	single := func(kind tokenKind) (token, error) {
		l.advance()

		return token{kind: kind, text: kind.String(), line: line}, nil
	}

	double := func(second byte, one, two tokenKind) (token, error) {
		l.advance()

		if !l.eof() && l.peek() == second {
			l.advance()

			return token{kind: two, text: two.String(), line: line}, nil
		}

		return token{kind: one, text: one.String(), line: line}, nil
	}

	switch ch {
	case '{':
		return single(tokenLeftBrace)
	case '}':
		return single(tokenRightBrace)
	case '(':
		return single(tokenLeftParen)
	case ')':
		return single(tokenRightParen)
	case ',':
		return single(tokenComma)
	case ';':
		return single(tokenSemicolon)
	case '?':
		return single(tokenQuestion)
	case ':':
		return single(tokenColon)
	case '!':
		return double('=', tokenNot, tokenNotEqual)
	case '=':
		return double('=', tokenAssign, tokenEqual)
	case '+':
		return double('=', tokenPlus, tokenPlusAssign)
	case '-':
		return double('=', tokenMinus, tokenMinusAssign)
	case '<':
		return double('=', tokenLess, tokenLessEqual)
	case '>':
		return double('=', tokenGreater, tokenGreaterEqual)
	case '|', '&':
		l.advance()

		if l.eof() || l.peek() != ch {
			return token{}, l.unexpected(ch, line)
		}

		l.advance()

		if ch == '|' {
			return token{kind: tokenOr, text: "||", line: line}, nil
		}

		return token{kind: tokenAnd, text: "&&", line: line}, nil
	case '"':
		return l.quoted()
	}

	if !isWordByte(ch) {
		return token{}, l.unexpected(ch, line)
	}

	return l.word()
}

// word scans an unquoted string. A "$(" consumes through its balancing ")"
// so that substitutions may contain spaces and commas.
func (l *lexer) word() (token, error) {
	line := l.line
	start := l.pos

	for !l.eof() {
		ch := l.peek()

		if ch == '$' && l.peekAt(1) == '(' {
			l.advance()
			l.advance()

			for depth := 1; depth > 0; {
				if l.eof() {
					return token{}, ErrSyntax.
						WithPosition(Position{File: l.file, Line: line}).
						Wrap(errUnterminated("substitution"))
				}

				switch l.peek() {
				case '(':
					depth++
				case ')':
					depth--
				}

				l.advance()
			}

			continue
		}

		// "+" and "-" continue a word (as in "-Wall" or "my-app") unless they
		// open an assignment operator.
		if (ch == '+' || ch == '-') && l.pos > start && l.peekAt(1) != '=' {
			l.advance()

			continue
		}

		if !isWordByte(ch) || l.commentStart() {
			break
		}

		l.advance()
	}

	return token{
		kind: tokenString,
		text: string(l.input[start:l.pos]),
		line: line,
	}, nil
}

// quoted scans a double-quoted string, resolving \" and \\ escapes.
func (l *lexer) quoted() (token, error) {
	line := l.line

	l.advance() // skip opening quote

	var sb strings.Builder

	for !l.eof() {
		ch := l.peek()

		switch {
		case ch == '\\' && (l.peekAt(1) == '"' || l.peekAt(1) == '\\'):
			l.advance()
			sb.WriteByte(l.peek())
			l.advance()

		case ch == '"':
			l.advance()

			return token{kind: tokenQuotedString, text: sb.String(), line: line}, nil

		default:
			sb.WriteByte(ch)
			l.advance()
		}
	}

	return token{}, ErrSyntax.
		WithPosition(Position{File: l.file, Line: line}).
		Wrap(errUnterminated("string"))
}

func (l *lexer) unexpected(ch byte, line int) error {
	return ErrUnexpectedChar.
		WithPosition(Position{File: l.file, Line: line}).
		Wrap(quotedError(string(ch))).
		With(slog.String("char", string(ch)))
}

func (l *lexer) eof() bool { return l.pos >= len(l.input) }

func (l *lexer) peek() byte { return l.input[l.pos] }

func (l *lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}

	return l.input[l.pos+n]
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	if l.input[l.pos] == '\n' {
		l.line++
	}

	l.pos++
}

func (l *lexer) commentStart() bool {
	return l.peek() == '/' && (l.peekAt(1) == '/' || l.peekAt(1) == '*')
}

// skipWhitespaceAndComments fails on a block comment without its "*/".
func (l *lexer) skipWhitespaceAndComments() error {
	for !l.eof() {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()

		case ch == '/' && l.peekAt(1) == '/':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		case ch == '/' && l.peekAt(1) == '*':
			line := l.line

			l.advance()
			l.advance()

			for !l.eof() && (l.peek() != '*' || l.peekAt(1) != '/') {
				l.advance()
			}

			if l.eof() {
				return ErrSyntax.
					WithPosition(Position{File: l.file, Line: line}).
					Wrap(errUnterminated("comment"))
			}

			l.advance()
			l.advance()

		default:
			return nil
		}
	}

	return nil
}

// isWordByte reports whether ch may appear in an unquoted string.
func isWordByte(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n',
		'{', '}', '(', ')', ',', ';', '?', ':', '!',
		'=', '+', '-', '<', '>', '|', '&', '"':
		return false
	}

	return ch >= 0x20
}

type lexError string

func (e lexError) Error() string { return string(e) }

func errUnterminated(what string) error { return lexError("unterminated " + what) }

func quotedError(s string) error { return lexError(strconv.Quote(s)) }
