package whitespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModeline(t *testing.T) {
	base := Modeline{TabSize: 4}

	tests := []struct {
		name string
		body string
		want Modeline
	}{
		{name: "expand tabs", body: "et", want: Modeline{TabSize: 4, ExpandTab: true}},
		{name: "long names", body: "expandtab tabstop=2", want: Modeline{TabSize: 2, ExpandTab: true}},
		{name: "noet wins when last", body: "et noet ts=8", want: Modeline{TabSize: 8}},
		{name: "colon separated", body: "ts=3:et:", want: Modeline{TabSize: 3, ExpandTab: true}},
		{name: "invalid tab size ignored", body: "ts=abc", want: base},
		{name: "zero tab size ignored", body: "ts=0", want: base},
		{name: "unknown settings ignored", body: "filetype=rust sw=2", want: base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseModeline(tt.body, base))
		})
	}
}

func TestFindModeline(t *testing.T) {
	lines := splitLines([]byte("// vim: ts=2\ncode\n# vim:set et:\n"))
	body, ok := findModeline(lines)
	require.True(t, ok)
	assert.Equal(t, "et:", body)

	_, ok = findModeline(splitLines([]byte("no modeline here\nvia: not one\n")))
	assert.False(t, ok)
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 3, displayWidth([]byte("abc"), 4))
	assert.Equal(t, 4, displayWidth([]byte("\t"), 4))
	assert.Equal(t, 8, displayWidth([]byte("ab\tcd\t"), 4))
	assert.Equal(t, 4, displayWidth([]byte("世界"), 4))
	assert.Equal(t, 2, displayWidth([]byte{0xff, 'a'}, 4))
}

func findAdvisory(advisories []Diagnostic, rule string) (Diagnostic, bool) {
	for _, a := range advisories {
		if a.Rule == rule {
			return a, true
		}
	}
	return Diagnostic{}, false
}

func TestAdvisories_LineTooLong(t *testing.T) {
	opts := lfOptions()
	opts.LineLength = 10

	outcome := Analyze([]byte("short\nthis line is too long\n\tabcdefg\n"), opts)
	assert.Equal(t, Unchanged, outcome.Kind, "advisories never change content")

	long, ok := findAdvisory(outcome.Advisories, RuleLineTooLong)
	require.True(t, ok)
	assert.Equal(t, 2, long.Line)
	assert.Equal(t, 2, long.Count, "tab expands to four columns on line 3")
	assert.Contains(t, long.Message, "widest 21")

	opts.LineLength = 0
	outcome = Analyze([]byte("this line is too long\n"), opts)
	_, ok = findAdvisory(outcome.Advisories, RuleLineTooLong)
	assert.False(t, ok)
}

func TestAdvisories_TrailingWhitespaceDoesNotCountTowardsWidth(t *testing.T) {
	opts := lfOptions()
	opts.LineLength = 3

	outcome := Analyze([]byte("abc      \n"), opts)
	assert.Equal(t, Changed, outcome.Kind)
	_, ok := findAdvisory(outcome.Advisories, RuleLineTooLong)
	assert.False(t, ok)
}

func TestAdvisories_ModelineTabSize(t *testing.T) {
	opts := lfOptions()
	opts.LineLength = 12

	input := "\t\t\tabc\n// vim: ts=2\n"
	outcome := Analyze([]byte(input), opts)
	_, ok := findAdvisory(outcome.Advisories, RuleLineTooLong)
	assert.False(t, ok, "two-column tabs keep the line within 12 columns")

	opts.Modelines = false
	outcome = Analyze([]byte(input), opts)
	_, ok = findAdvisory(outcome.Advisories, RuleLineTooLong)
	assert.True(t, ok, "without modelines tabs are four columns wide")
}

func TestAdvisories_Tabs(t *testing.T) {
	outcome := Analyze([]byte("\tindent ok\nx\ty\n"), lfOptions())
	after, ok := findAdvisory(outcome.Advisories, RuleTabAfterContent)
	require.True(t, ok)
	assert.Equal(t, 2, after.Line)
	_, ok = findAdvisory(outcome.Advisories, RuleTabIndent)
	assert.False(t, ok)

	outcome = Analyze([]byte("\tindent\nplain\n# vim: et\n"), lfOptions())
	indent, ok := findAdvisory(outcome.Advisories, RuleTabIndent)
	require.True(t, ok)
	assert.Equal(t, 1, indent.Line)
	assert.Equal(t, 1, indent.Count)
}

func TestAdvisories_BinaryHasNone(t *testing.T) {
	opts := lfOptions()
	opts.LineLength = 1
	outcome := Analyze([]byte("long line\x00\n"), opts)
	assert.Equal(t, Binary, outcome.Kind)
	assert.Empty(t, outcome.Advisories)
}
