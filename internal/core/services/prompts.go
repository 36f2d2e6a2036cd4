package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
	"github.com/custodia-labs/vidhi/internal/logger"
)

// loadPrompt returns the named template from store, falling back to the
// built-in default when the store is nil or fails.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		prompt, err := store.Load(name)
		if err == nil && prompt != "" {
			return prompt
		}
		if err != nil {
			logger.Warn("Prompt %q unavailable, using default: %v", name, err)
		}
	}
	prompt, _ := domain.DefaultPrompt(name)
	return prompt
}

// renderPrompt fills the named template with args. A stored template that
// does not consume every argument exactly through valid verbs is replaced
// by the built-in default.
func renderPrompt(store driven.PromptStore, name string, args ...any) string {
	tmpl := loadPrompt(store, name)
	if out, ok := render(tmpl, args); ok {
		return out
	}
	logger.Warn("Prompt %q does not match its arguments, using default", name)
	def, _ := domain.DefaultPrompt(name)
	return fmt.Sprintf(def, args...)
}

func render(tmpl string, args []any) (string, bool) {
	used, ok := verbArgs(tmpl)
	if !ok || len(used) != len(args) {
		return "", false
	}
	for i := 1; i <= len(args); i++ {
		if !used[i] {
			return "", false
		}
	}
	out := fmt.Sprintf(tmpl, args...)
	if strings.Contains(out, "%!") {
		return "", false
	}
	return out, true
}

// verbArgs returns the 1-based argument numbers referenced by the verbs in
// tmpl. It reports false for a malformed verb and for a template mixing
// indexed and plain verbs.
func verbArgs(tmpl string) (map[int]bool, bool) {
	used := make(map[int]bool)
	next := 1
	indexed, plain := 0, 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		i++
		if i < len(tmpl) && tmpl[i] == '%' {
			continue
		}
		for i < len(tmpl) && strings.IndexByte("+-# 0", tmpl[i]) >= 0 {
			i++
		}
		if i < len(tmpl) && tmpl[i] == '[' {
			end := strings.IndexByte(tmpl[i:], ']')
			if end < 0 {
				return nil, false
			}
			n, err := strconv.Atoi(tmpl[i+1 : i+end])
			if err != nil || n < 1 {
				return nil, false
			}
			next = n
			i += end + 1
			indexed++
		} else {
			plain++
		}
		for i < len(tmpl) && (tmpl[i] >= '0' && tmpl[i] <= '9' || tmpl[i] == '.') {
			i++
		}
		if i >= len(tmpl) || !isVerb(tmpl[i]) {
			return nil, false
		}
		used[next] = true
		next++
	}
	if indexed > 0 && plain > 0 {
		return nil, false
	}
	return used, true
}

func isVerb(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
