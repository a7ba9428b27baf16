package eval

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// responseDiff renders the difference between the expected output and an
// agent response as removed/added/context lines.
func responseDiff(expected, response string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, response, false)
	dmp.DiffCleanupSemantic(diffs)

	if len(diffs) == 1 && diffs[0].Type == diffmatchpatch.DiffEqual {
		return "response matches expected output\n"
	}

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
