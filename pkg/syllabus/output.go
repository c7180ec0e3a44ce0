package syllabus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"SyllabusScrape/pkg/log"
	"go.uber.org/zap"
)

const (
	TeachingAreasFileName = "teaching_areas.json"
	LinksFileName         = "links.txt"
	ResultFileName        = "syllabi.json"
	directoryPermissions  = 0o755
	filePermissions       = 0o644
)

// ensureDirectory creates path if missing and leaves an existing one alone.
func ensureDirectory(path string) error {
	info, statError := os.Stat(path)
	switch {
	case statError == nil && info.IsDir():
		log.L().Debug("directory_exists", zap.String("path", path))
		return nil
	case statError == nil:
		return fmt.Errorf("%s exists and is not a directory", path)
	case !os.IsNotExist(statError):
		return statError
	}
	if err := os.MkdirAll(path, directoryPermissions); err != nil {
		return err
	}
	log.L().Debug("directory_created", zap.String("path", path))
	return nil
}

func writeJSONFile(path string, value any) error {
	outputFile, createError := os.Create(path)
	if createError != nil {
		return createError
	}
	encoder := json.NewEncoder(outputFile)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		_ = outputFile.Close()
		return err
	}
	return outputFile.Close()
}

func writeTeachingAreas(outputDirectory string, areaLabels []string) error {
	if err := ensureDirectory(outputDirectory); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(outputDirectory, TeachingAreasFileName), areaLabels)
}

func writeCourseLinks(courseDirectory string, links []string) error {
	var contents strings.Builder
	for _, link := range links {
		contents.WriteString(link)
		contents.WriteString("\n")
	}
	return os.WriteFile(filepath.Join(courseDirectory, LinksFileName), []byte(contents.String()), filePermissions)
}

// WriteResult saves the whole discovery result as indented JSON.
func WriteResult(path string, result *Result) error {
	if err := ensureDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	return writeJSONFile(path, result)
}
