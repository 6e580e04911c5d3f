package ti

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nukata/goarith"
)

// TokenKind is the kind of a token.
type TokenKind int

const (
	LParen TokenKind = iota
	RParen
	Number
	String
	Quote
	Symbol
)

var tokenKindNames = [...]string{"LPAREN", "RPAREN", "NUMBER", "STRING", "QUOTE", "SYMBOL"}

func (k TokenKind) String() string {
	return tokenKindNames[k]
}

// Token represents a lexical token.
// Raw is the matched text; for a STRING it is the text between the quotes.
type Token struct {
	Kind TokenKind
	Raw  string
	Line int
}

// tok.String() returns "<KIND, "raw", line>".
func (tok Token) String() string {
	return fmt.Sprintf("<%v, %q, %d>", tok.Kind, tok.Raw, tok.Line)
}

// numberPat, stringPat and symbolPat are tried in this order
// after comments, blanks, parentheses have been ruled out.
var numberPat = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?`)
var stringPat = regexp.MustCompile(`^"[^"]*"`)
var symbolPat = regexp.MustCompile(`^[a-zA-Z=<>*+\-/%!?][a-zA-Z0-9=<>*+\-/%!?]*`)

// Tokenize splits text into tokens.
// An illegal character is skipped and tokenizing goes on; the first such
// character is reported as a LexError along with all the tokens read.
func Tokenize(text string) ([]Token, error) {
	tokens := make([]Token, 0, len(text)/3)
	var lexErr *EvalError
	line := 1
	i := 0
	for i < len(text) {
		c := text[i]
		switch c {
		case ';':
			j := strings.IndexByte(text[i:], '\n')
			if j < 0 {
				return tokens, errOrNil(lexErr)
			}
			i += j
			continue
		case ' ', '\t', '\r':
			i++
			continue
		case '\n':
			line++
			i++
			continue
		case '(':
			tokens = append(tokens, Token{LParen, "(", line})
			i++
			continue
		case ')':
			tokens = append(tokens, Token{RParen, ")", line})
			i++
			continue
		}
		rest := text[i:]
		if m := numberPat.FindString(rest); m != "" {
			tokens = append(tokens, Token{Number, m, line})
			i += len(m)
		} else if m := stringPat.FindString(rest); m != "" {
			tokens = append(tokens, Token{String, m[1 : len(m)-1], line})
			line += strings.Count(m, "\n")
			i += len(m)
		} else if c == '\'' {
			tokens = append(tokens, Token{Quote, "'", line})
			i++
		} else if m := symbolPat.FindString(rest); m != "" {
			tokens = append(tokens, Token{Symbol, m, line})
			i += len(m)
		} else {
			r, size := utf8.DecodeRuneInString(rest)
			if lexErr == nil {
				lexErr = NewEvalError(LexError, "illegal character %q", r).at(line)
			}
			i += size
		}
	}
	return tokens, errOrNil(lexErr)
}

// errOrNil keeps a nil *EvalError from becoming a non-nil error.
func errOrNil(err *EvalError) error {
	if err == nil {
		return nil
	}
	return err
}

// ParseNumber converts the text of a NUMBER token to a number.
// Text without a decimal point is read as an exact integer.
func ParseNumber(s string) (goarith.Number, error) {
	if !strings.Contains(s, ".") {
		z := new(big.Int)
		if _, ok := z.SetString(strings.TrimPrefix(s, "+"), 10); ok {
			return goarith.AsNumber(z), nil
		}
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		return goarith.AsNumber(f), nil
	}
	return nil, NewEvalError(SyntaxError, "bad number: %s", s)
}
