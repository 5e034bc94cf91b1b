// Package diff parses the unified-diff patch fragments returned by the
// GitHub files API and locates the new-file line numbers needed to
// anchor inline review comments.
package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind classifies a line within a hunk.
type LineKind int

const (
	// Context is an unchanged line, present on both sides.
	Context LineKind = iota
	// Added is a line present only in the new version.
	Added
	// Removed is a line present only in the old version.
	Removed
)

// Line is a single content line of a hunk. NewLine is the 1-based line
// number on the new side of the diff; it is zero for removed lines,
// which do not exist in the new file.
type Line struct {
	Kind    LineKind
	Content string
	NewLine int
}

// Hunk is one @@-delimited region of a patch.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Patch is the parsed form of one file's diff fragment.
type Patch struct {
	Hunks []Hunk
}

// hunkHeaderRE matches "@@ -old[,count] +new[,count] @@"; the count
// defaults to 1 when omitted.
var hunkHeaderRE = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse splits a patch into hunks with typed, line-numbered content.
// Lines before the first hunk header (file headers and the like) are
// ignored, as are malformed headers. Parse never fails; an
// unrecognizable patch simply yields no hunks.
func Parse(patch string) Patch {
	var parsed Patch
	var hunk *Hunk
	cursor := 0

	for _, raw := range strings.Split(patch, "\n") {
		if m := hunkHeaderRE.FindStringSubmatch(raw); m != nil {
			if hunk != nil {
				parsed.Hunks = append(parsed.Hunks, *hunk)
			}
			hunk = &Hunk{
				OldStart: atoi(m[1]),
				OldCount: atoiOr(m[2], 1),
				NewStart: atoi(m[3]),
				NewCount: atoiOr(m[4], 1),
			}
			cursor = hunk.NewStart
			continue
		}
		if hunk == nil || raw == "" {
			continue
		}
		// A header-looking line that fails the grammar is skipped
		// without moving the cursor.
		if strings.HasPrefix(raw, "@@") {
			continue
		}
		// "\ No newline at end of file" annotates the preceding line
		// and occupies no line of its own on either side.
		if strings.HasPrefix(raw, `\`) {
			continue
		}

		line := Line{Content: raw}
		switch {
		case strings.HasPrefix(raw, "+") && !strings.HasPrefix(raw, "+++"):
			line.Kind = Added
			line.Content = raw[1:]
			line.NewLine = cursor
			cursor++
		case strings.HasPrefix(raw, "-"):
			line.Kind = Removed
			line.Content = raw[1:]
		default:
			// Context lines, and any stray marker such as a "+++"
			// file header, occupy a line on the new side.
			line.Kind = Context
			line.Content = strings.TrimPrefix(raw, " ")
			line.NewLine = cursor
			cursor++
		}
		hunk.Lines = append(hunk.Lines, line)
	}

	if hunk != nil {
		parsed.Hunks = append(parsed.Hunks, *hunk)
	}
	return parsed
}

// FirstAddedLine returns the new-file line number of the first added
// line in the patch, scanning hunks in document order. The second
// return value is false when the patch contains no added line at all,
// which is a normal outcome for pure deletions and for patches with no
// recognizable hunk header.
func FirstAddedLine(patch string) (int, bool) {
	for _, hunk := range Parse(patch).Hunks {
		for _, line := range hunk.Lines {
			if line.Kind == Added {
				return line.NewLine, true
			}
		}
	}
	return 0, false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}
