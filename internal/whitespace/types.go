package whitespace

import (
	"fmt"
	"strings"
)

// LineEnding is the terminator style enforced on every line of a text file.
type LineEnding int

const (
	// LF terminates lines with a single linefeed.
	LF LineEnding = iota
	// CRLF terminates lines with a carriage return followed by a linefeed.
	CRLF
)

// String returns the lowercase config name of the style ("lf" or "crlf").
func (le LineEnding) String() string {
	switch le {
	case LF:
		return "lf"
	case CRLF:
		return "crlf"
	default:
		return "unknown"
	}
}

// Label returns the style as it appears in diagnostics ("LF" or "CRLF").
func (le LineEnding) Label() string {
	return strings.ToUpper(le.String())
}

// Bytes returns the terminator sequence for the style.
func (le LineEnding) Bytes() []byte {
	if le == CRLF {
		return []byte("\r\n")
	}
	return []byte("\n")
}

// ParseLineEnding converts a config value ("lf", "crlf", case-insensitive) to a LineEnding.
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lf", "unix":
		return LF, nil
	case "crlf", "windows", "dos":
		return CRLF, nil
	default:
		return LF, fmt.Errorf("invalid line ending %q, must be one of: lf, crlf", s)
	}
}

// Options are the resolved settings for analyzing a file.
// They are built once per run and passed by value.
type Options struct {
	// LineEnding is the terminator style every output line must use
	LineEnding LineEnding

	// CheckOnly reports pending changes without writing them
	CheckOnly bool

	// TabSize is the display width of a tab for the line-length advisory
	TabSize int

	// LineLength is the maximum display width before a line-too-long advisory (0 = off)
	LineLength int

	// Modelines lets a vim-style modeline override TabSize and tab expansion per file
	Modelines bool
}

// DefaultOptions returns LF endings, a tab size of 4, no length limit and modelines enabled.
func DefaultOptions() Options {
	return Options{
		LineEnding: LF,
		TabSize:    4,
		Modelines:  true,
	}
}

// Kind classifies the outcome of analyzing one file.
type Kind int

const (
	// Unchanged means the file already has the correct form.
	Unchanged Kind = iota
	// Binary means the file contains a NUL byte and was left alone.
	Binary
	// Changed means corrected content differs from the input.
	Changed
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Binary:
		return "binary"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// Rule names used in diagnostics and advisories.
const (
	RuleTrailingWhitespace = "trailing-whitespace"
	RuleLineEnding         = "line-ending"
	RuleTrailingBlankLines = "trailing-blank-lines"
	RuleFinalNewline       = "final-newline"
	RuleLineTooLong        = "line-too-long"
	RuleTabAfterContent    = "tab-after-content"
	RuleTabIndent          = "tab-indent"
)

// Summary counts which rules fired while correcting a file.
type Summary struct {
	TrailingWhitespace int  `yaml:"trailing_whitespace"`
	LineEndings        int  `yaml:"line_endings"`
	BlankLinesRemoved  int  `yaml:"blank_lines_removed"`
	FinalNewlineAdded  bool `yaml:"final_newline_added"`
}

// Lines returns the number of line-level fixes in the summary.
func (s Summary) Lines() int {
	n := s.TrailingWhitespace + s.LineEndings + s.BlankLinesRemoved
	if s.FinalNewlineAdded {
		n++
	}
	return n
}

// IsZero reports whether no rule fired.
func (s Summary) IsZero() bool {
	return s == Summary{}
}

// Add returns the field-wise sum of two summaries.
// FinalNewlineAdded is true if it is true in either.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		TrailingWhitespace: s.TrailingWhitespace + other.TrailingWhitespace,
		LineEndings:        s.LineEndings + other.LineEndings,
		BlankLinesRemoved:  s.BlankLinesRemoved + other.BlankLinesRemoved,
		FinalNewlineAdded:  s.FinalNewlineAdded || other.FinalNewlineAdded,
	}
}

// Diagnostic describes one rule that fired, anchored at its first offending line.
type Diagnostic struct {
	Rule    string `yaml:"rule"`
	Line    int    `yaml:"line"`  // 1-based
	Count   int    `yaml:"count"` // number of lines affected
	Message string `yaml:"message"`
}

// String formats the diagnostic as "line N: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Outcome is the result of analyzing one file.
// Content is only set when Kind is Changed.
type Outcome struct {
	Kind        Kind
	Content     []byte
	Summary     Summary
	Diagnostics []Diagnostic
	Advisories  []Diagnostic
}
