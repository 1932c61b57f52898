package prompt

import (
	"regexp"
	"strings"
)

var bulletPattern = regexp.MustCompile(`^(\s*)(?:[*•●+–‣⁃]|-)\s+(.+)$`)

// FormatResponse tidies generated text: trims it, collapses runs of blank lines
// and rewrites bullet markers to "-" with two spaces per nesting level.
// Fenced code blocks are left untouched.
func FormatResponse(text string) string {
	lines := strings.Split(strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	inFence := false
	blank := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			out = append(out, strings.TrimRight(line, " \t"))
			blank = false
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}

		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false

		if m := bulletPattern.FindStringSubmatch(trimmed); m != nil {
			indent := strings.Repeat("  ", indentWidth(m[1])/2)
			out = append(out, indent+"- "+m[2])
			continue
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func indentWidth(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}
