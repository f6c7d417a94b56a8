package jsparse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind is the lexical class of a token.
type TokenKind int

const (
	EOF TokenKind = iota
	IdentToken
	Keyword
	Number
	String
	Template
	Regex
	Punct
	PrivateName
	Illegal
)

var tokenKindNames = [...]string{
	EOF:         "EOF",
	IdentToken:  "identifier",
	Keyword:     "keyword",
	Number:      "number",
	String:      "string",
	Template:    "template",
	Regex:       "regex",
	Punct:       "punctuator",
	PrivateName: "private name",
	Illegal:     "illegal",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// Token is one lexical token with its byte span in the source.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int

	// NewlineBefore is set when a line terminator precedes the token.
	NewlineBefore bool

	// Unterminated marks strings, templates and regexes cut off by the end
	// of input (or by a newline for strings).
	Unterminated bool
}

// Is reports whether the token is the punctuator or keyword text.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Keyword) && t.Text == text
}

// keywords are reserved words that can never be identifiers.
var keywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "export": true, "extends": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "new": true, "return": true, "super": true,
	"switch": true, "this": true, "throw": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true, "null": true,
	"true": true, "false": true, "enum": true,
}

// regexAfterKeyword lists keywords after which a slash starts a regex.
var regexAfterKeyword = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// punctuators ordered longest first.
var punctuators = []string{
	">>>=",
	"...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*", "/",
	"%", "&", "|", "^", "!", "~", "?", ":", "=", ".", "@",
}

// Lexer splits source text into tokens. It never fails: malformed input
// produces Illegal or Unterminated tokens and the lexer keeps going.
type Lexer struct {
	src  string
	cur  int
	prev *Token
	nl   bool

	// openComment is set when a block comment runs to the end of input.
	openComment bool
}

// NewLexer creates a lexer for src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize lexes the whole input. The final token is always EOF, positioned
// at len(src).
func Tokenize(src string) []Token {
	toks, _ := NewLexer(src).scanAll()
	return toks
}

func (l *Lexer) scanAll() ([]Token, bool) {
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, l.openComment
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	l.skipSpaceAndComments()
	if l.cur >= len(l.src) {
		return Token{Kind: EOF, Start: len(l.src), End: len(l.src), NewlineBefore: l.nl}
	}

	start := l.cur
	c := l.src[l.cur]
	var tok Token
	switch {
	case c == '"' || c == '\'':
		tok = l.scanString(c)
	case c == '`':
		tok = l.scanTemplate()
	case isDigit(c) || (c == '.' && l.cur+1 < len(l.src) && isDigit(l.src[l.cur+1])):
		tok = l.scanNumber()
	case c == '#' && l.cur+1 < len(l.src) && isIdentStartAt(l.src, l.cur+1):
		l.cur++
		l.scanIdentRest()
		tok = Token{Kind: PrivateName}
	case isIdentStartAt(l.src, l.cur):
		l.scanIdentRest()
		word := l.src[start:l.cur]
		if keywords[word] {
			tok = Token{Kind: Keyword}
		} else {
			tok = Token{Kind: IdentToken}
		}
	case c == '/' && l.regexAllowed():
		tok = l.scanRegex()
	default:
		tok = l.scanPunct()
	}

	tok.Start = start
	tok.End = l.cur
	tok.Text = l.src[start:l.cur]
	tok.NewlineBefore = l.nl
	l.nl = false
	l.prev = &tok
	return tok
}

func (l *Lexer) skipSpaceAndComments() {
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		switch {
		case c == '\n' || c == '\r':
			l.nl = true
			l.cur++
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			l.cur++
		case c == '/' && l.cur+1 < len(l.src) && l.src[l.cur+1] == '/':
			for l.cur < len(l.src) && l.src[l.cur] != '\n' {
				l.cur++
			}
		case c == '/' && l.cur+1 < len(l.src) && l.src[l.cur+1] == '*':
			end := strings.Index(l.src[l.cur+2:], "*/")
			if end < 0 {
				if strings.ContainsAny(l.src[l.cur:], "\n\r") {
					l.nl = true
				}
				l.cur = len(l.src)
				l.openComment = true
				return
			}
			if strings.ContainsAny(l.src[l.cur:l.cur+2+end], "\n\r") {
				l.nl = true
			}
			l.cur += end + 4
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(l.src[l.cur:])
			if r == '\u2028' || r == '\u2029' {
				l.nl = true
				l.cur += size
				continue
			}
			if unicode.IsSpace(r) || r == '\ufeff' {
				l.cur += size
				continue
			}
			return
		default:
			return
		}
	}
}

func (l *Lexer) regexAllowed() bool {
	if l.prev == nil {
		return true
	}
	switch l.prev.Kind {
	case Number, String, Template, Regex, PrivateName:
		return false
	case IdentToken:
		return regexAfterKeyword[l.prev.Text]
	case Keyword:
		if l.prev.Text == "this" || l.prev.Text == "super" || l.prev.Text == "null" ||
			l.prev.Text == "true" || l.prev.Text == "false" {
			return false
		}
		return true
	case Punct:
		switch l.prev.Text {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	}
	return true
}

func (l *Lexer) scanString(quote byte) Token {
	l.cur++
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		switch c {
		case '\\':
			l.cur += 2
			if l.cur > len(l.src) {
				l.cur = len(l.src)
			}
		case quote:
			l.cur++
			return Token{Kind: String}
		case '\n', '\r':
			return Token{Kind: String, Unterminated: true}
		default:
			l.cur++
		}
	}
	return Token{Kind: String, Unterminated: true}
}

// scanTemplate scans a template literal including nested substitutions.
func (l *Lexer) scanTemplate() Token {
	l.cur++
	if !l.templateBody() {
		return Token{Kind: Template, Unterminated: true}
	}
	return Token{Kind: Template}
}

// templateBody consumes up to and including the closing backtick.
func (l *Lexer) templateBody() bool {
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		switch {
		case c == '\\':
			l.cur += 2
		case c == '`':
			l.cur++
			return true
		case c == '$' && l.cur+1 < len(l.src) && l.src[l.cur+1] == '{':
			l.cur += 2
			if !l.substitution() {
				return false
			}
		default:
			l.cur++
		}
	}
	if l.cur > len(l.src) {
		l.cur = len(l.src)
	}
	return false
}

// substitution consumes a ${ ... } body up to and including the closing brace.
func (l *Lexer) substitution() bool {
	depth := 1
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		switch c {
		case '{':
			depth++
			l.cur++
		case '}':
			depth--
			l.cur++
			if depth == 0 {
				return true
			}
		case '"', '\'':
			if t := l.scanString(c); t.Unterminated {
				if l.cur >= len(l.src) {
					return false
				}
			}
		case '`':
			l.cur++
			if !l.templateBody() {
				return false
			}
		default:
			l.cur++
		}
	}
	return false
}

func (l *Lexer) scanRegex() Token {
	l.cur++
	inClass := false
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		switch {
		case c == '\\':
			l.cur += 2
			continue
		case c == '\n' || c == '\r':
			return Token{Kind: Regex, Unterminated: true}
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			l.cur++
			for l.cur < len(l.src) && isIdentPart(l.src[l.cur]) {
				l.cur++
			}
			return Token{Kind: Regex}
		}
		l.cur++
	}
	if l.cur > len(l.src) {
		l.cur = len(l.src)
	}
	return Token{Kind: Regex, Unterminated: true}
}

func (l *Lexer) scanNumber() Token {
	src := l.src
	if src[l.cur] == '0' && l.cur+1 < len(src) && strings.IndexByte("xXoObB", src[l.cur+1]) >= 0 {
		l.cur += 2
		for l.cur < len(src) && (isHex(src[l.cur]) || src[l.cur] == '_') {
			l.cur++
		}
	} else {
		for l.cur < len(src) && (isDigit(src[l.cur]) || src[l.cur] == '_') {
			l.cur++
		}
		if l.cur < len(src) && src[l.cur] == '.' {
			l.cur++
			for l.cur < len(src) && (isDigit(src[l.cur]) || src[l.cur] == '_') {
				l.cur++
			}
		}
		if l.cur < len(src) && (src[l.cur] == 'e' || src[l.cur] == 'E') {
			l.cur++
			if l.cur < len(src) && (src[l.cur] == '+' || src[l.cur] == '-') {
				l.cur++
			}
			for l.cur < len(src) && isDigit(src[l.cur]) {
				l.cur++
			}
		}
	}
	if l.cur < len(src) && src[l.cur] == 'n' {
		l.cur++
	}
	return Token{Kind: Number}
}

func (l *Lexer) scanPunct() Token {
	rest := l.src[l.cur:]
	for _, p := range punctuators {
		if !strings.HasPrefix(rest, p) {
			continue
		}
		// "?." followed by a digit is a conditional operator and a number.
		if p == "?." && len(rest) > 2 && isDigit(rest[2]) {
			continue
		}
		l.cur += len(p)
		return Token{Kind: Punct}
	}
	_, size := utf8.DecodeRuneInString(rest)
	l.cur += size
	return Token{Kind: Illegal}
}

func (l *Lexer) scanIdentRest() {
	for l.cur < len(l.src) {
		c := l.src[l.cur]
		if c < utf8.RuneSelf {
			if c == '\\' && l.cur+1 < len(l.src) && l.src[l.cur+1] == 'u' {
				l.cur += 2
				continue
			}
			if !isIdentPart(c) {
				return
			}
			l.cur++
			continue
		}
		r, size := utf8.DecodeRuneInString(l.src[l.cur:])
		if !isIdentPartRune(r) {
			return
		}
		l.cur += size
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' || b == '$'
}

func isIdentPart(b byte) bool { return isIdentStart(b) || isDigit(b) }

func isIdentStartAt(s string, i int) bool {
	c := s[i]
	if c < utf8.RuneSelf {
		return isIdentStart(c) || (c == '\\' && i+1 < len(s) && s[i+1] == 'u')
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isIdentPartRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) ||
		unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Nl, r) || unicode.Is(unicode.Pc, r) ||
		r == '\u200c' || r == '\u200d'
}

// IsIdentifierName reports whether s is shaped like a bare identifier:
// non-empty, starting with a letter, '$' or '_', continuing with identifier
// characters. Reserved words are identifier names too.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r < utf8.RuneSelf {
				if !isIdentStart(byte(r)) {
					return false
				}
				continue
			}
			if !unicode.IsLetter(r) && !unicode.Is(unicode.Nl, r) {
				return false
			}
			continue
		}
		if r < utf8.RuneSelf {
			if !isIdentPart(byte(r)) {
				return false
			}
			continue
		}
		if !isIdentPartRune(r) {
			return false
		}
	}
	return true
}

// IsKeyword reports whether word is a reserved word.
func IsKeyword(word string) bool {
	return keywords[word]
}
