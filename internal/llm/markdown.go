package llm

import "strings"

// CleanMarkdownWrapper strips a Markdown code-fence wrapper from model output.
// Models routinely fence JSON responses despite being told not to; decoding
// happens on the unwrapped text.
func CleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	parts := strings.Split(content, "```")
	if len(parts) < 2 {
		return content
	}

	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
