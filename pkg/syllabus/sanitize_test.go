package syllabus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeLabel(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Calc 1", "Calc 1"},
		{"C S", "C S"},
		{"Art/Design: 2D", "Art_Design_ 2D"},
		{`Back\slash | pipe?`, "Back_slash _ pipe_"},
		{"  spaced\tout\n label ", "spaced out label"},
		{"trailing dots...", "trailing dots"},
		{"..", "_"},
		{"", "_"},
		{"tab\x00null", "tab_null"},
		{"Cafe\u0301 Studies", "Caf\u00e9 Studies"},
		{"teaching_areas.json", "teaching_areas.json_"},
		{" Syllabi.JSON ", "Syllabi.JSON_"},
		{"links.txt", "links.txt_"},
		{"links.txt notes", "links.txt notes"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, SanitizeLabel(tc.label), "label %q", tc.label)
	}
}

func TestSanitizeLabelTruncatesOnRuneBoundary(t *testing.T) {
	label := strings.Repeat("\u00e9", 100)

	sanitized := SanitizeLabel(label)
	require.LessOrEqual(t, len(sanitized), maxDirectoryNameBytes)
	require.Equal(t, strings.Repeat("\u00e9", maxDirectoryNameBytes/2), sanitized)
}
