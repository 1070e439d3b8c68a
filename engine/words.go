package engine

import (
	"strings"
	"unicode"
)

// SplitWords splits text at whitespace. Double quotes group a word that
// contains whitespace and are removed from the result.
func SplitWords(text string) []string {
	var (
		words  []string
		word   strings.Builder
		inWord bool
		quoted bool
	)

	for _, r := range text {
		switch {
		case r == '"':
			quoted = !quoted
			inWord = true

		case unicode.IsSpace(r) && !quoted:
			if inWord {
				words = append(words, word.String())
				word.Reset()

				inWord = false
			}

		default:
			word.WriteRune(r)

			inWord = true
		}
	}

	if inWord {
		words = append(words, word.String())
	}

	return words
}

// JoinWords joins words with single spaces, quoting any word that contains
// whitespace so that [SplitWords] recovers it.
func JoinWords(words []string) string {
	var sb strings.Builder

	for i, w := range words {
		if i > 0 {
			sb.WriteByte(' ')
		}

		if strings.ContainsFunc(w, unicode.IsSpace) {
			sb.WriteByte('"')
			sb.WriteString(w)
			sb.WriteByte('"')
		} else {
			sb.WriteString(w)
		}
	}

	return sb.String()
}

// matchPattern matches word against a pattern in which the first '%' is a
// wildcard. It returns the text matched by '%'.
func matchPattern(pattern, word string) (stem string, ok bool) {
	prefix, suffix, wild := strings.Cut(pattern, "%")
	if !wild {
		return "", pattern == word
	}

	if len(word) < len(prefix)+len(suffix) ||
		!strings.HasPrefix(word, prefix) ||
		!strings.HasSuffix(word, suffix) {
		return "", false
	}

	return word[len(prefix) : len(word)-len(suffix)], true
}

// replacePattern substitutes stem for the first '%' in repl.
func replacePattern(repl, stem string) string {
	return strings.Replace(repl, "%", stem, 1)
}

// truthy reports whether text denotes a true condition: any value other than
// the empty string and "false".
func truthy(text string) bool {
	return text != "" && text != "false"
}
