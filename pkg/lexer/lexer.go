// Package lexer tokenizes LKQL source text.
package lexer

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // the actual text of the token (lexeme)
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends
}

const (
	// Special
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers + literals
	IDENT   TokenType = "IDENT"
	INT     TokenType = "INT"
	STRING  TokenType = "STRING"  // "hello"
	PATTERN TokenType = "PATTERN" // p"[a-z]+"

	// Delimiters
	LPAREN TokenType = "("
	RPAREN TokenType = ")"
	COMMA  TokenType = ","
	ASSIGN TokenType = "="
	ARROW  TokenType = "=>"

	// Keywords
	VAL   TokenType = "VAL"
	FUN   TokenType = "FUN"
	TRUE  TokenType = "TRUE"
	FALSE TokenType = "FALSE"
)

var keywords = map[string]TokenType{
	"val":   VAL,
	"fun":   FUN,
	"true":  TRUE,
	"false": FALSE,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer scans LKQL source byte by byte. Identifiers and string contents may
// contain any non-ASCII bytes; the lexer never decodes runes, it only needs
// the ASCII structure of the language.
type Lexer struct {
	input string

	pos     int // current byte offset
	readPos int // next byte offset
	ch      byte

	line   int
	column int // column of ch, 1-based
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '#':
			// Line comment runs to the end of the line.
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// NextToken scans and returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{
		Line:     l.line,
		Column:   l.column,
		StartPos: l.pos,
	}

	switch {
	case l.ch == 0:
		tok.Type = EOF
		tok.EndPos = l.pos
		return tok
	case l.ch == '(':
		tok.Type, tok.Literal = LPAREN, "("
	case l.ch == ')':
		tok.Type, tok.Literal = RPAREN, ")"
	case l.ch == ',':
		tok.Type, tok.Literal = COMMA, ","
	case l.ch == '=':
		if l.peekChar() == '>' {
			l.readChar()
			tok.Type, tok.Literal = ARROW, "=>"
		} else {
			tok.Type, tok.Literal = ASSIGN, "="
		}
	case l.ch == '"':
		return l.readString(tok)
	case l.ch == 'p' && l.peekChar() == '"':
		l.readChar() // consume the p prefix, the quote loop takes over
		tok2 := l.readString(Token{Line: tok.Line, Column: tok.Column, StartPos: tok.StartPos})
		if tok2.Type == STRING {
			tok2.Type = PATTERN
			tok2.Literal = "p" + tok2.Literal
		}
		return tok2
	case isLetter(l.ch):
		literal := l.readIdentifier()
		tok.Type = LookupIdent(literal)
		tok.Literal = literal
		tok.EndPos = l.pos
		return tok
	case isDigit(l.ch):
		tok.Type = INT
		tok.Literal = l.readNumber()
		tok.EndPos = l.pos
		return tok
	default:
		tok.Type = ILLEGAL
		tok.Literal = string(l.ch)
	}

	l.readChar()
	tok.EndPos = l.pos
	return tok
}

// readString scans a quoted literal starting at the opening quote. The
// returned literal keeps its quotes; escape expansion happens later, in the
// compiler. An unterminated string yields ILLEGAL.
func (l *Lexer) readString(tok Token) Token {
	start := l.pos
	l.readChar() // opening quote
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' && l.peekChar() != 0 {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch == 0 {
		tok.Type = ILLEGAL
		tok.Literal = l.input[start:l.pos]
		tok.EndPos = l.pos
		return tok
	}
	l.readChar() // closing quote
	tok.Type = STRING
	tok.Literal = l.input[start:l.pos]
	tok.EndPos = l.pos
	return tok
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
