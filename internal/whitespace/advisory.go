package whitespace

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

var modelinePattern = regexp.MustCompile(`(?:^|\s)(?:vi|vim|ex):\s*(?:set?\s+)?(.+)`)

// Modeline holds the per-file settings a vim-style modeline can override.
type Modeline struct {
	TabSize   int
	ExpandTab bool
}

// ParseModeline applies the settings in a modeline body ("ts=8 et") on top of base.
// Unknown settings are ignored.
func ParseModeline(body string, base Modeline) Modeline {
	ml := base
	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == ' ' || r == ':' || r == '\t'
	})
	for _, field := range fields {
		switch {
		case field == "et" || field == "expandtab":
			ml.ExpandTab = true
		case field == "noet" || field == "noexpandtab":
			ml.ExpandTab = false
		case strings.HasPrefix(field, "ts="), strings.HasPrefix(field, "tabstop="):
			value := field[strings.IndexByte(field, '=')+1:]
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				ml.TabSize = n
			}
		}
	}
	return ml
}

// findModeline returns the body of the last modeline in the file.
func findModeline(lines []line) (string, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if m := modelinePattern.FindSubmatch(lines[i].content); m != nil {
			return string(m[1]), true
		}
	}
	return "", false
}

// displayWidth returns the column width of content with tabs expanded to tabSize stops.
func displayWidth(content []byte, tabSize int) int {
	col := 0
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		content = content[size:]
		if r == '\t' {
			col += tabSize - col%tabSize
			continue
		}
		if r == utf8.RuneError && size == 1 {
			col++
			continue
		}
		col += runewidth.RuneWidth(r)
	}
	return col
}

// advise reports findings that never trigger a rewrite: overlong lines and
// tabs in places the effective settings disallow.
func advise(lines []line, opts Options) []Diagnostic {
	settings := Modeline{TabSize: opts.TabSize}
	if settings.TabSize <= 0 {
		settings.TabSize = 4
	}
	if opts.Modelines {
		if body, ok := findModeline(lines); ok {
			settings = ParseModeline(body, settings)
		}
	}

	var long, tabAfter, tabAny ruleHits
	widest := 0
	for i, ln := range lines {
		content := bytes.TrimRight(ln.content, trailingSpace)
		if settings.ExpandTab {
			if bytes.IndexByte(content, '\t') >= 0 {
				tabAny.hit(i + 1)
			}
		} else if indent := len(content) - len(bytes.TrimLeft(content, "\t")); bytes.IndexByte(content[indent:], '\t') >= 0 {
			tabAfter.hit(i + 1)
		}
		if opts.LineLength > 0 {
			if w := displayWidth(content, settings.TabSize); w > opts.LineLength {
				long.hit(i + 1)
				if w > widest {
					widest = w
				}
			}
		}
	}

	var out []Diagnostic
	if long.count > 0 {
		out = append(out, Diagnostic{
			Rule:    RuleLineTooLong,
			Line:    long.first,
			Count:   long.count,
			Message: fmt.Sprintf("%s longer than %d columns (widest %d)", plural(long.count, "line", "lines"), opts.LineLength, widest),
		})
	}
	if tabAfter.count > 0 {
		out = append(out, Diagnostic{
			Rule:    RuleTabAfterContent,
			Line:    tabAfter.first,
			Count:   tabAfter.count,
			Message: plural(tabAfter.count, "line has a tab after other characters", "lines have a tab after other characters"),
		})
	}
	if tabAny.count > 0 {
		out = append(out, Diagnostic{
			Rule:    RuleTabIndent,
			Line:    tabAny.first,
			Count:   tabAny.count,
			Message: plural(tabAny.count, "line contains a tab but tabs should be expanded", "lines contain a tab but tabs should be expanded"),
		})
	}
	return out
}
