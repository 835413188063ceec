// Package whitespace analyzes file content for whitespace irregularities and
// computes its corrected form.
//
// Analyze is a pure function: it takes the raw bytes of one file and the resolved
// Options, and returns an Outcome without touching the filesystem. The batch runner
// owns all I/O.
//
// # Rules
//
// For text content Analyze enforces:
//   - no trailing spaces, tabs or stray carriage returns at the end of a line
//   - every line terminated with Options.LineEnding (LF or CRLF), never a mix
//   - no blank lines at the end of the file
//   - exactly one terminator after the last non-blank line
//
// Empty content is always Unchanged. Content that contains a NUL byte is Binary
// and never rewritten. Tabs inside a line are left alone.
//
// # Advisories
//
// Advisories are findings that never change the content: lines wider than
// Options.LineLength, tabs after other characters, and tabs in files whose vim
// modeline asks for expanded tabs ("vim: et ts=2").
package whitespace
