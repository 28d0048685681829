package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// multilineHTML turns free text lines into escaped markup joined by line
// breaks. Any markup typed into the record is stripped.
func multilineHTML(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	policy := textSanitizer()
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, policy.Sanitize(line))
	}
	return strings.Join(out, "<br>\n")
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
