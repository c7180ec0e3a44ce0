package syllabus

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	maxDirectoryNameBytes = 120
	emptyLabelReplacement = "_"
)

var reservedPathCharacters = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\x7f]`)

// outputFileNames share a directory with area and course directories.
var outputFileNames = []string{TeachingAreasFileName, ResultFileName, LinksFileName}

// SanitizeLabel turns scraped page text into a single safe path element.
// Labels that would collide with a file the walker writes get a trailing "_".
func SanitizeLabel(label string) string {
	normalized := norm.NFC.String(label)
	replaced := reservedPathCharacters.ReplaceAllString(normalized, "_")
	collapsed := strings.Join(strings.Fields(replaced), " ")
	trimmed := strings.Trim(collapsed, " .")

	for len(trimmed) > maxDirectoryNameBytes {
		_, lastRuneSize := utf8.DecodeLastRuneInString(trimmed)
		trimmed = strings.TrimRight(trimmed[:len(trimmed)-lastRuneSize], " .")
	}
	if trimmed == "" {
		return emptyLabelReplacement
	}
	for _, fileName := range outputFileNames {
		if strings.EqualFold(trimmed, fileName) {
			return trimmed + emptyLabelReplacement
		}
	}
	return trimmed
}
