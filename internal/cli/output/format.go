package output

import (
	"fmt"
	"strings"
)

// FormatHeader returns a markdown header of the given level (1-6).
func FormatHeader(level int, s string) string {
	level = min(max(level, 1), 6)
	return strings.Repeat("#", level) + " " + s
}

// FormatKeyValue returns a markdown list item "- **key**: value".
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// FormatList returns items as a markdown bullet list.
func FormatList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCode wraps s in inline code backticks.
func FormatCode(s string) string {
	return "`" + s + "`"
}
