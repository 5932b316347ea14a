// Package glob implements the restricted glob language used to filter
// group names by pattern: '*', '?', character classes, and escapes,
// over a whole string with no path semantics.
package glob

import "fmt"

// ErrorKind classifies why a pattern failed to compile.
type ErrorKind string

const (
	ErrRecursiveGlob     ErrorKind = "recursive_glob"
	ErrUnclosedBracket   ErrorKind = "unclosed_bracket"
	ErrEmptyBracket      ErrorKind = "empty_bracket"
	ErrExtglobNotAllowed ErrorKind = "extglob_not_allowed"
	ErrBraceExpansion    ErrorKind = "brace_expansion_not_allowed"
	ErrTrailingBackslash ErrorKind = "trailing_backslash"
)

// CompileError is returned when a pattern fails to parse.
type CompileError struct {
	Kind ErrorKind
}

func (e *CompileError) Error() string {
	switch e.Kind {
	case ErrRecursiveGlob:
		return "recursive glob '**' is not allowed"
	case ErrUnclosedBracket:
		return "unclosed '[' bracket"
	case ErrEmptyBracket:
		return "empty bracket expression '[]' is not allowed"
	case ErrExtglobNotAllowed:
		return "extglob patterns are not allowed"
	case ErrBraceExpansion:
		return "brace expansion is not allowed"
	case ErrTrailingBackslash:
		return "pattern ends with unescaped backslash"
	default:
		return fmt.Sprintf("invalid glob pattern (%s)", e.Kind)
	}
}

type tokenKind int

const (
	tokStar tokenKind = iota
	tokQuestion
	tokCharClass
	tokLiteral
)

type token struct {
	kind    tokenKind
	literal rune
	class   []rune
	negated bool
}

// Glob is a compiled pattern.
type Glob struct {
	tokens []token
}

// Compile parses and validates a pattern.
func Compile(pattern string) (*Glob, error) {
	tokens, err := parse(pattern)
	if err != nil {
		return nil, err
	}
	return &Glob{tokens: tokens}, nil
}

// Validate checks a pattern compiles without keeping the result.
func Validate(pattern string) error {
	_, err := parse(pattern)
	return err
}

func parse(pattern string) ([]token, error) {
	chars := []rune(pattern)
	var tokens []token

	for i := 0; i < len(chars); i++ {
		c := chars[i]
		switch c {
		case '\\':
			if i+1 >= len(chars) {
				return nil, &CompileError{Kind: ErrTrailingBackslash}
			}
			i++
			tokens = append(tokens, token{kind: tokLiteral, literal: chars[i]})
		case '*':
			if i+1 < len(chars) && chars[i+1] == '*' {
				return nil, &CompileError{Kind: ErrRecursiveGlob}
			}
			tokens = append(tokens, token{kind: tokStar})
		case '?':
			tokens = append(tokens, token{kind: tokQuestion})
		case '[':
			tok, consumed, err := parseCharClass(chars[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i += consumed - 1
		case '{':
			return nil, &CompileError{Kind: ErrBraceExpansion}
		case '@', '+':
			if i+1 < len(chars) && chars[i+1] == '(' {
				return nil, &CompileError{Kind: ErrExtglobNotAllowed}
			}
			tokens = append(tokens, token{kind: tokLiteral, literal: c})
		default:
			tokens = append(tokens, token{kind: tokLiteral, literal: c})
		}
	}

	return tokens, nil
}

func parseCharClass(chars []rune) (token, int, error) {
	i := 1
	var class []rune
	negated := false

	if i < len(chars) && (chars[i] == '!' || chars[i] == '^') {
		negated = true
		i++
	}

	if i < len(chars) && chars[i] == ']' {
		return token{}, 0, &CompileError{Kind: ErrEmptyBracket}
	}

	for i < len(chars) {
		c := chars[i]
		if c == ']' {
			if len(class) == 0 {
				return token{}, 0, &CompileError{Kind: ErrEmptyBracket}
			}
			return token{kind: tokCharClass, class: class, negated: negated}, i + 1, nil
		}
		if i+2 < len(chars) && chars[i+1] == '-' && chars[i+2] != ']' {
			start, end := c, chars[i+2]
			if start <= end {
				for ch := start; ch <= end; ch++ {
					class = append(class, ch)
				}
			} else {
				class = append(class, start, '-', end)
			}
			i += 3
		} else {
			class = append(class, c)
			i++
		}
	}

	return token{}, 0, &CompileError{Kind: ErrUnclosedBracket}
}

// Match reports whether text matches the compiled pattern, full-string
// and case-sensitive.
func (g *Glob) Match(text string) bool {
	return matchTokens(g.tokens, []rune(text))
}

func matchTokens(tokens []token, chars []rune) bool {
	if len(tokens) == 0 {
		return len(chars) == 0
	}

	tok := tokens[0]
	rest := tokens[1:]

	switch tok.kind {
	case tokLiteral:
		if len(chars) == 0 || chars[0] != tok.literal {
			return false
		}
		return matchTokens(rest, chars[1:])
	case tokQuestion:
		if len(chars) == 0 {
			return false
		}
		return matchTokens(rest, chars[1:])
	case tokCharClass:
		if len(chars) == 0 {
			return false
		}
		matches := containsRune(tok.class, chars[0])
		if tok.negated {
			matches = !matches
		}
		if !matches {
			return false
		}
		return matchTokens(rest, chars[1:])
	case tokStar:
		for i := 0; i <= len(chars); i++ {
			if matchTokens(rest, chars[i:]) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func containsRune(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}

// Match is a one-shot helper: compile pattern and match text.
func Match(pattern, text string) (bool, error) {
	g, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return g.Match(text), nil
}
