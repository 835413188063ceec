// Package report writes a run's BatchResult to a file as Markdown, HTML or YAML.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/harrison/wsfix/internal/filelock"
	"github.com/harrison/wsfix/internal/models"
	"github.com/harrison/wsfix/internal/whitespace"
)

// Format is a report output format
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatYAML     Format = "yaml"
)

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report extension %q (want .md, .html or .yaml)", filepath.Ext(path))
	}
}

// Write renders batch in the format implied by path and atomically writes it.
func Write(path string, batch *models.BatchResult) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	data, err := Render(format, batch)
	if err != nil {
		return err
	}

	if err := filelock.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Render returns the report bytes for batch in the given format.
func Render(format Format, batch *models.BatchResult) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(Markdown(batch)), nil
	case FormatHTML:
		return HTML(batch)
	case FormatYAML:
		return YAML(batch)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// Markdown renders batch as a Markdown document.
func Markdown(batch *models.BatchResult) string {
	var b strings.Builder

	mode := "fix"
	changedLabel := "Fixed"
	if batch.CheckOnly {
		mode = "check"
		changedLabel = "Need fixing"
	}

	b.WriteString("# wsfix report\n\n")
	fmt.Fprintf(&b, "- **Status:** %s\n", strings.ToUpper(batch.Status()))
	fmt.Fprintf(&b, "- **Mode:** %s\n", mode)
	fmt.Fprintf(&b, "- **Duration:** %s\n\n", batch.Duration.Round(time.Millisecond))

	b.WriteString("| Files | Count |\n")
	b.WriteString("|-------|------:|\n")
	fmt.Fprintf(&b, "| Scanned | %d |\n", batch.FilesScanned)
	fmt.Fprintf(&b, "| %s | %d |\n", changedLabel, batch.FilesChanged)
	fmt.Fprintf(&b, "| Unchanged | %d |\n", batch.FilesUnchanged)
	fmt.Fprintf(&b, "| Binary | %d |\n", batch.FilesBinary)
	fmt.Fprintf(&b, "| Errors | %d |\n", batch.FilesErrored)

	if !batch.Totals.IsZero() {
		t := batch.Totals
		b.WriteString("\n| Lines | Count |\n")
		b.WriteString("|-------|------:|\n")
		fmt.Fprintf(&b, "| Trailing whitespace | %d |\n", t.TrailingWhitespace)
		fmt.Fprintf(&b, "| Line endings | %d |\n", t.LineEndings)
		fmt.Fprintf(&b, "| Trailing blank lines | %d |\n", t.BlankLinesRemoved)
		fmt.Fprintf(&b, "| Final newline added | %s |\n", yesNo(t.FinalNewlineAdded))
	}

	var listed []models.FileResult
	for _, fr := range batch.Files {
		if fr.Status == models.FileChanged || fr.Status == models.FileError {
			listed = append(listed, fr)
		}
	}
	if len(listed) > 0 {
		b.WriteString("\n## Files\n\n")
		b.WriteString("| Path | Status | Lines | Detail |\n")
		b.WriteString("|------|--------|------:|--------|\n")
		for _, fr := range listed {
			detail := ruleNames(fr.Diagnostics)
			if fr.Err != nil {
				detail = fr.Err.Error()
			}
			fmt.Fprintf(&b, "| `%s` | %s | %d | %s |\n",
				escapeCell(fr.Path), fr.Status, fr.Summary.Lines(), escapeCell(detail))
		}
	}

	var advisories []string
	for _, fr := range batch.Files {
		for _, a := range fr.Advisories {
			advisories = append(advisories, fmt.Sprintf("- `%s:%d` %s (%s)\n", fr.Path, a.Line, a.Message, a.Rule))
		}
	}
	if len(advisories) > 0 {
		b.WriteString("\n## Advisories\n\n")
		for _, line := range advisories {
			b.WriteString(line)
		}
	}

	return b.String()
}

// HTML renders the Markdown report to a standalone HTML page.
func HTML(batch *models.BatchResult) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(batch)), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>wsfix report</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// Document is the YAML form of a report
type Document struct {
	Status     string             `yaml:"status"`
	Mode       string             `yaml:"mode"`
	DurationMs int64              `yaml:"duration_ms"`
	Counts     Counts             `yaml:"counts"`
	Totals     whitespace.Summary `yaml:"totals"`
	Files      []FileEntry        `yaml:"files,omitempty"`
}

// Counts holds the per-status file counts
type Counts struct {
	Scanned   int `yaml:"scanned"`
	Changed   int `yaml:"changed"`
	Unchanged int `yaml:"unchanged"`
	Binary    int `yaml:"binary"`
	Errored   int `yaml:"errored"`
}

// FileEntry is one non-clean file, or a clean file with advisories
type FileEntry struct {
	Path        string                  `yaml:"path"`
	Status      string                  `yaml:"status"`
	Written     bool                    `yaml:"written,omitempty"`
	Error       string                  `yaml:"error,omitempty"`
	Diagnostics []whitespace.Diagnostic `yaml:"diagnostics,omitempty"`
	Advisories  []whitespace.Diagnostic `yaml:"advisories,omitempty"`
}

// NewDocument builds the YAML document for batch.
func NewDocument(batch *models.BatchResult) Document {
	mode := "fix"
	if batch.CheckOnly {
		mode = "check"
	}

	doc := Document{
		Status:     batch.Status(),
		Mode:       mode,
		DurationMs: batch.Duration.Milliseconds(),
		Counts: Counts{
			Scanned:   batch.FilesScanned,
			Changed:   batch.FilesChanged,
			Unchanged: batch.FilesUnchanged,
			Binary:    batch.FilesBinary,
			Errored:   batch.FilesErrored,
		},
		Totals: batch.Totals,
	}

	for _, fr := range batch.Files {
		clean := fr.Status == models.FileUnchanged || fr.Status == models.FileBinary
		if clean && len(fr.Advisories) == 0 {
			continue
		}
		entry := FileEntry{
			Path:        fr.Path,
			Status:      fr.Status,
			Written:     fr.Written,
			Diagnostics: fr.Diagnostics,
			Advisories:  fr.Advisories,
		}
		if fr.Err != nil {
			entry.Error = fr.Err.Error()
		}
		doc.Files = append(doc.Files, entry)
	}

	return doc
}

// YAML renders batch as a YAML document.
func YAML(batch *models.BatchResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(batch)); err != nil {
		return nil, fmt.Errorf("encode yaml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml report: %w", err)
	}
	return buf.Bytes(), nil
}

func ruleNames(diags []whitespace.Diagnostic) string {
	names := make([]string, len(diags))
	for i, d := range diags {
		names[i] = d.Rule
	}
	return strings.Join(names, ", ")
}

// escapeCell keeps pipes and newlines from breaking a table row
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
