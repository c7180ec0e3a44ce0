package syllabus

import (
	"bufio"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadTree rebuilds a Result from a previous walk's output directory.
// Area names come from teaching_areas.json when present; course names are
// the sanitized directory names, since unsanitized course labels are not stored.
func ReadTree(outputDirectory string) (*Result, error) {
	areaLabels, labelsError := readTeachingAreas(outputDirectory)
	if labelsError != nil {
		return nil, labelsError
	}

	areasByDirectory := map[string]*Area{}
	walkError := filepath.WalkDir(outputDirectory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || entry.Name() != LinksFileName {
			return nil
		}
		relativePath, relError := filepath.Rel(outputDirectory, path)
		if relError != nil {
			return relError
		}
		pathParts := strings.Split(filepath.ToSlash(relativePath), "/")
		if len(pathParts) != 3 {
			return nil
		}

		links, readError := readLinks(path)
		if readError != nil {
			return readError
		}
		areaDirectory, courseDirectory := pathParts[0], pathParts[1]
		area, exists := areasByDirectory[areaDirectory]
		if !exists {
			area = &Area{Name: areaDirectory, Directory: areaDirectory, Courses: []Course{}}
			areasByDirectory[areaDirectory] = area
		}
		area.Courses = append(area.Courses, Course{Name: courseDirectory, Directory: courseDirectory, Links: links})
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	result := &Result{Status: StatusCompleted, Areas: []Area{}}
	for _, label := range areaLabels {
		directory := SanitizeLabel(label)
		area, exists := areasByDirectory[directory]
		if !exists {
			result.Areas = append(result.Areas, Area{Name: label, Directory: directory, Courses: []Course{}})
			continue
		}
		area.Name = label
		result.Areas = append(result.Areas, *area)
		delete(areasByDirectory, directory)
	}

	var unlistedDirectories []string
	for directory := range areasByDirectory {
		unlistedDirectories = append(unlistedDirectories, directory)
	}
	sort.Strings(unlistedDirectories)
	for _, directory := range unlistedDirectories {
		result.Areas = append(result.Areas, *areasByDirectory[directory])
	}
	return result, nil
}

func readTeachingAreas(outputDirectory string) ([]string, error) {
	rawBytes, readError := os.ReadFile(filepath.Join(outputDirectory, TeachingAreasFileName))
	if os.IsNotExist(readError) {
		return nil, nil
	}
	if readError != nil {
		return nil, readError
	}
	var areaLabels []string
	if err := json.Unmarshal(rawBytes, &areaLabels); err != nil {
		return nil, err
	}
	return areaLabels, nil
}

func readLinks(path string) ([]string, error) {
	linksFile, openError := os.Open(path)
	if openError != nil {
		return nil, openError
	}
	defer linksFile.Close()

	links := []string{}
	scanner := bufio.NewScanner(linksFile)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			links = append(links, line)
		}
	}
	return links, scanner.Err()
}
