// Package tokenizer splits raw text into the words that get inserted into a term index.
package tokenizer

import (
	"regexp"
	"strings"
)

// nonAlphanumericRegex matches sequences of characters that are neither letters nor digits, in any script.
var nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// acronymRegex handles cases like "HTTPRequest" -> "HTTP Request"
var acronymRegex = regexp.MustCompile(`(\p{Lu}+)(\p{Lu}\p{Ll})`)

// camelCaseRegex handles cases like "theOffice" -> "the Office" or "myAPI" -> "my API"
var camelCaseRegex = regexp.MustCompile(`([\p{Ll}\p{N}])(\p{Lu})`)

// Split breaks text into words, splitting camel/PascalCase and on anything
// that is not a letter or digit. Letter case is kept.
func Split(text string) []string {
	// 1. Split camelCase/PascalCase
	processedText := acronymRegex.ReplaceAllString(text, "$1 $2")
	processedText = camelCaseRegex.ReplaceAllString(processedText, "$1 $2")

	// 2. Split by non-alphanumeric characters
	split := nonAlphanumericRegex.Split(processedText, -1)

	tokens := make([]string, 0) // Initialize as empty slice, not nil
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// Tokenize is Split followed by lowercasing.
func Tokenize(text string) []string {
	tokens := Split(text)
	for i, token := range tokens {
		tokens[i] = strings.ToLower(token)
	}
	return tokens
}

// Unique drops repeated tokens, keeping the first occurrence of each.
func Unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}
