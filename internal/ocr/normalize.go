package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reColumnGap  = regexp.MustCompile(` {3,}`)
	reBoxNoise   = regexp.MustCompile(`^\s*[_\-=|]{3,}\s*$`)
)

// normalizeText unifies line endings and tabs and drops ruled-line noise,
// keeping column gaps so layout text can be split into blocks.
func normalizeText(s string) []string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, "    ")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, ln := range lines {
		ln = strings.TrimRight(ln, " ")
		if reBoxNoise.MatchString(ln) {
			ln = ""
		}
		out = append(out, ln)
	}
	return out
}

// column is a run of text on a layout line with its starting rune offset.
type column struct {
	text  string
	start int
}

// splitColumns breaks a layout line on gaps of three or more spaces.
func splitColumns(line string) []column {
	var cols []column
	rest := line
	offset := 0
	for rest != "" {
		loc := reColumnGap.FindStringIndex(rest)
		seg := rest
		if loc != nil {
			seg = rest[:loc[0]]
		}
		if trimmed := strings.TrimSpace(seg); trimmed != "" {
			lead := len(seg) - len(strings.TrimLeft(seg, " "))
			cols = append(cols, column{
				text:  reMultiSpace.ReplaceAllString(trimmed, " "),
				start: runeCount(line[:offset+lead]),
			})
		}
		if loc == nil {
			break
		}
		offset += loc[1]
		rest = rest[loc[1]:]
	}
	return cols
}

func runeCount(s string) int { return len([]rune(s)) }
