// Package wire implements the line-oriented chat protocol: the quoted and
// escaped tokenizer, the request and response frame codecs, and buffered
// frame readers and writers. One frame is one LF-terminated line.
package wire

import "strings"

// Tokenize splits one logical line into tokens. A token is a non-empty run of
// characters; double quotes group characters (including spaces) into a single
// token and backslash escapes the next character. The returned tokens are
// already unescaped.
//
// An unterminated quote or a trailing escape fails with a ParseError citing
// the offending input.
func Tokenize(input string) ([]string, error) {
	input = strings.TrimSpace(input)

	var inQuote, inEscape bool
	var tokens []string
	var curr strings.Builder

	for _, ch := range input {
		switch {
		case ch == '\\' && !inEscape:
			inEscape = true
		case ch == '"' && !inEscape:
			inQuote = !inQuote
		case ch == ' ' && !inQuote && !inEscape:
			if curr.Len() > 0 {
				tokens = append(tokens, curr.String())
				curr.Reset()
			}
		default:
			curr.WriteRune(ch)
			inEscape = false
		}
	}

	if inQuote || inEscape {
		return nil, &ParseError{Input: input}
	}

	if curr.Len() > 0 {
		tokens = append(tokens, curr.String())
	}

	return tokens, nil
}

// Detokenize renders tokens back into a wire line, quoting tokens that
// contain spaces and escaping embedded quotes and backslashes. It is the
// inverse of Tokenize: Tokenize(Detokenize(v)) yields v again for any vector
// of non-empty tokens.
func Detokenize(tokens []string) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.Contains(tok, " ") {
			parts = append(parts, `"`+escapeToken(tok)+`"`)
		} else {
			parts = append(parts, escapeToken(tok))
		}
	}
	return strings.Join(parts, " ")
}

func escapeToken(tok string) string {
	var b strings.Builder
	for _, ch := range tok {
		switch ch {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
