package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

const (
	contextSeparator = "\n\n"
	truncationSuffix = "..."

	// minTruncatedSnippet is the smallest remaining budget worth filling
	// with a truncated snippet.
	minTruncatedSnippet = 100
)

// AssembleContext joins match texts, tagged "[INDEX] text", into a context
// of at most maxLength characters (runes, separators included). The snippet
// that would overflow is cut at a word boundary and marked with "..." when
// more than 100 characters of budget remain, so the result never exceeds
// maxLength by more than len("...").
func AssembleContext(matches []domain.Match, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}

	sepLen := utf8.RuneCountInString(contextSeparator)
	parts := make([]string, 0, len(matches))
	total := 0

	for _, m := range matches {
		text := m.Text()
		if domain.IsBlank(text) {
			continue
		}
		snippet := fmt.Sprintf("[%s] %s", strings.ToUpper(m.Source()), text)

		sep := 0
		if len(parts) > 0 {
			sep = sepLen
		}
		n := utf8.RuneCountInString(snippet)

		if total+sep+n > maxLength {
			remaining := maxLength - total - sep
			if remaining > minTruncatedSnippet {
				parts = append(parts, cutAtWordBoundary(snippet, remaining)+truncationSuffix)
			}
			break
		}

		parts = append(parts, snippet)
		total += sep + n
		if total >= maxLength {
			break
		}
	}

	return strings.Join(parts, contextSeparator)
}

// cutAtWordBoundary keeps the first n runes of s, backing up to the last
// whitespace when there is one.
func cutAtWordBoundary(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	head := string(runes[:n])
	if i := strings.LastIndexFunc(head, unicode.IsSpace); i > 0 {
		head = head[:i]
	}
	return strings.TrimRightFunc(head, unicode.IsSpace)
}
