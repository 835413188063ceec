package whitespace

import (
	"bytes"
	"fmt"
)

// terminator records how a line ended in the input.
type terminator int

const (
	termNone terminator = iota
	termLF
	termCRLF
)

func (t terminator) label() string {
	switch t {
	case termLF:
		return "LF"
	case termCRLF:
		return "CRLF"
	default:
		return "none"
	}
}

func terminatorFor(le LineEnding) terminator {
	if le == CRLF {
		return termCRLF
	}
	return termLF
}

// line is a view into the input; content excludes the terminator.
type line struct {
	content []byte
	term    terminator
}

// trailingSpace is the set stripped from line ends. A stray CR left at the end of
// a line can only be a broken terminator, so it goes with the spaces and tabs.
const trailingSpace = " \t\r"

// IsBinary reports whether content contains a NUL byte.
func IsBinary(content []byte) bool {
	return bytes.IndexByte(content, 0) >= 0
}

// splitLines splits content on LF, treating a CR directly before the LF as part
// of a CRLF terminator. Only the final line can have termNone.
func splitLines(content []byte) []line {
	lines := make([]line, 0, bytes.Count(content, []byte{'\n'})+1)
	rest := content
	for len(rest) > 0 {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			lines = append(lines, line{content: rest, term: termNone})
			break
		}
		seg := rest[:i]
		term := termLF
		if len(seg) > 0 && seg[len(seg)-1] == '\r' {
			seg = seg[:len(seg)-1]
			term = termCRLF
		}
		lines = append(lines, line{content: seg, term: term})
		rest = rest[i+1:]
	}
	return lines
}

// ruleHits tracks the first line and number of lines a rule fired on.
type ruleHits struct {
	first int
	count int
}

func (h *ruleHits) hit(lineNo int) {
	if h.count == 0 {
		h.first = lineNo
	}
	h.count++
}

// Analyze classifies content and computes its corrected form.
//
// Binary content (any NUL byte) is returned as Binary without further inspection.
// For text, trailing spaces, tabs and stray CRs are stripped from every line, every
// terminator is rewritten to opts.LineEnding, trailing blank lines are dropped and
// the last line is terminated. Empty input, and input that is already in that
// form, is Unchanged. Analyze never modifies content.
func Analyze(content []byte, opts Options) Outcome {
	if len(content) == 0 {
		return Outcome{Kind: Unchanged}
	}
	if IsBinary(content) {
		return Outcome{Kind: Binary}
	}

	lines := splitLines(content)
	advisories := advise(lines, opts)

	last := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if len(bytes.TrimRight(lines[i].content, trailingSpace)) > 0 {
			last = i
			break
		}
	}

	want := terminatorFor(opts.LineEnding)
	eol := opts.LineEnding.Bytes()

	var (
		trailing     ruleHits
		endings      ruleHits
		endingFound  terminator
		finalMissing int
		out          bytes.Buffer
	)
	out.Grow(len(content) + len(eol))

	for i := 0; i <= last; i++ {
		ln := lines[i]
		trimmed := bytes.TrimRight(ln.content, trailingSpace)
		if len(trimmed) != len(ln.content) {
			trailing.hit(i + 1)
		}
		switch {
		case ln.term == termNone:
			finalMissing = i + 1
		case ln.term != want:
			if endings.count == 0 {
				endingFound = ln.term
			}
			endings.hit(i + 1)
		}
		out.Write(trimmed)
		out.Write(eol)
	}

	blank := len(lines) - (last + 1)

	if bytes.Equal(out.Bytes(), content) {
		return Outcome{Kind: Unchanged, Advisories: advisories}
	}

	summary := Summary{
		TrailingWhitespace: trailing.count,
		LineEndings:        endings.count,
		BlankLinesRemoved:  blank,
		FinalNewlineAdded:  finalMissing > 0,
	}

	var diags []Diagnostic
	if trailing.count > 0 {
		diags = append(diags, Diagnostic{
			Rule:    RuleTrailingWhitespace,
			Line:    trailing.first,
			Count:   trailing.count,
			Message: plural(trailing.count, "line has trailing whitespace", "lines have trailing whitespace"),
		})
	}
	if endings.count > 0 {
		diags = append(diags, Diagnostic{
			Rule:    RuleLineEnding,
			Line:    endings.first,
			Count:   endings.count,
			Message: fmt.Sprintf("file has %s but %s expected", endingFound.label(), opts.LineEnding.Label()),
		})
	}
	if blank > 0 {
		diags = append(diags, Diagnostic{
			Rule:    RuleTrailingBlankLines,
			Line:    last + 2,
			Count:   blank,
			Message: plural(blank, "trailing blank line", "trailing blank lines"),
		})
	}
	if finalMissing > 0 {
		diags = append(diags, Diagnostic{
			Rule:    RuleFinalNewline,
			Line:    finalMissing,
			Count:   1,
			Message: "missing final newline",
		})
	}

	return Outcome{
		Kind:        Changed,
		Content:     out.Bytes(),
		Summary:     summary,
		Diagnostics: diags,
		Advisories:  advisories,
	}
}

// plural prefixes n to the singular or plural phrase.
func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
