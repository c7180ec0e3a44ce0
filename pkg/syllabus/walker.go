// Package syllabus walks a syllabus lookup UI from teaching areas to courses
// to syllabus links, mirroring what it finds into a directory tree.
package syllabus

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"SyllabusScrape/pkg/locator"
	"SyllabusScrape/pkg/log"
	"go.uber.org/zap"
)

const DefaultLinkMarker = "View Syllabus"

// Selectors locate the controls of the lookup UI. Area options and course
// items are narrowed with WithText to pick one entry by its label.
type Selectors struct {
	AreaControl    locator.Selector `mapstructure:"area_control"`
	AreaOption     locator.Selector `mapstructure:"area_option"`
	CourseItem     locator.Selector `mapstructure:"course_item"`
	SyllabusRegion locator.Selector `mapstructure:"syllabus_region"`
	Anchor         locator.Selector `mapstructure:"anchor"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		AreaControl:    locator.TextContains("button", "Teaching Area"),
		AreaOption:     locator.AttributeEquals("", "role", "option"),
		CourseItem:     locator.AttributeContains("div", "class", "course-title"),
		SyllabusRegion: locator.TextContains("a", DefaultLinkMarker),
		Anchor:         locator.Tag("a"),
	}
}

type Options struct {
	OutputDir string
	// WaitBound caps every wait for an asynchronous reveal.
	WaitBound    time.Duration
	CourseSettle time.Duration
	AreaSettle   time.Duration
	// LinkMarker is matched case-insensitively against anchor text.
	LinkMarker string
	// PageWideLinks scans every visible anchor on the page for each course.
	// By default the scan stops at the next course item, so an earlier panel
	// left open is not credited to the course just expanded.
	PageWideLinks bool
	Selectors     Selectors
}

type Walker struct {
	elementLocator locator.Locator
	options        Options
}

func NewWalker(elementLocator locator.Locator, options Options) *Walker {
	if options.LinkMarker == "" {
		options.LinkMarker = DefaultLinkMarker
	}
	if options.Selectors == (Selectors{}) {
		options.Selectors = DefaultSelectors()
	}
	return &Walker{elementLocator: elementLocator, options: options}
}

// Walk runs the whole discovery. It returns a *FatalDiscoveryError when the
// teaching area list cannot be opened; per-area and per-course timeouts and
// directory errors are recorded in Result.Failures instead.
func (w *Walker) Walk(ctx context.Context) (*Result, error) {
	log.L().Info("walk_start",
		zap.String("output_dir", w.options.OutputDir),
		zap.Duration("wait_bound", w.options.WaitBound),
	)

	areaLabels, discoverError := w.discoverAreas(ctx)
	if discoverError != nil {
		log.L().Error("walk_failed", zap.String("status", string(StatusFailed)), zap.Error(discoverError))
		return nil, discoverError
	}
	log.L().Info("areas_discovered", zap.Int("areas", len(areaLabels)), zap.Strings("labels", areaLabels))
	if err := writeTeachingAreas(w.options.OutputDir, areaLabels); err != nil {
		return nil, fmt.Errorf("writing %s: %w", TeachingAreasFileName, err)
	}

	result := &Result{Status: StatusCompleted, Areas: make([]Area, 0, len(areaLabels))}
	for areaIndex, areaLabel := range areaLabels {
		if areaIndex > 0 {
			if err := settle(ctx, w.options.AreaSettle); err != nil {
				return nil, err
			}
		}
		area, areaError := w.walkArea(ctx, areaLabel, result)
		if areaError != nil {
			return nil, areaError
		}
		result.Areas = append(result.Areas, area)
	}

	log.L().Info("walk_done",
		zap.String("status", string(result.Status)),
		zap.Int("areas", len(result.Areas)),
		zap.Int("courses", result.CourseCount()),
		zap.Int("links", result.LinkCount()),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

func (w *Walker) discoverAreas(ctx context.Context) ([]string, error) {
	selectors := w.options.Selectors
	if err := w.elementLocator.Click(ctx, selectors.AreaControl); err != nil {
		return nil, &FatalDiscoveryError{Stage: "area_control", Err: err}
	}
	if err := w.elementLocator.WaitRendered(ctx, locator.WholePage, selectors.AreaOption, w.options.WaitBound); err != nil {
		return nil, &FatalDiscoveryError{Stage: "area_list", Err: err}
	}
	optionElements, listError := w.elementLocator.List(ctx, locator.WholePage, selectors.AreaOption)
	if listError != nil {
		return nil, &FatalDiscoveryError{Stage: "area_list", Err: listError}
	}
	areaLabels := uniqueLabels(optionElements)
	if len(areaLabels) == 0 {
		return nil, &FatalDiscoveryError{Stage: "area_list", Err: locator.ErrNotRendered}
	}
	return areaLabels, nil
}

func (w *Walker) walkArea(ctx context.Context, areaLabel string, result *Result) (Area, error) {
	area := Area{Name: areaLabel, Directory: SanitizeLabel(areaLabel), Courses: []Course{}}
	areaPath := filepath.Join(w.options.OutputDir, area.Directory)
	if err := ensureDirectory(areaPath); err != nil {
		log.L().Warn("area_directory_failed", zap.String("area", areaLabel), zap.Error(err))
		result.recordFailure(Failure{Kind: PartialAreaFailure, Area: areaLabel, Reason: err.Error()})
		return area, nil
	}
	log.L().Info("area_enter", zap.String("area", areaLabel), zap.String("directory", areaPath))

	courseLabels, coursesError := w.discoverCourses(ctx, areaLabel)
	if coursesError != nil {
		if ctx.Err() != nil {
			return area, ctx.Err()
		}
		log.L().Warn("area_timeout", zap.String("area", areaLabel), zap.Error(coursesError))
		result.recordFailure(Failure{Kind: PartialAreaFailure, Area: areaLabel, Reason: coursesError.Error()})
		return area, nil
	}
	log.L().Info("area_courses", zap.String("area", areaLabel), zap.Int("courses", len(courseLabels)))

	for courseIndex, courseLabel := range courseLabels {
		if courseIndex > 0 {
			if err := settle(ctx, w.options.CourseSettle); err != nil {
				return area, err
			}
		}
		course, courseError := w.walkCourse(ctx, areaLabel, areaPath, courseLabel, result)
		if courseError != nil {
			return area, courseError
		}
		area.Courses = append(area.Courses, course)
	}
	return area, nil
}

func (w *Walker) discoverCourses(ctx context.Context, areaLabel string) ([]string, error) {
	selectors := w.options.Selectors
	if err := w.openAreaOption(ctx, areaLabel); err != nil {
		return nil, err
	}
	if err := w.elementLocator.Click(ctx, selectors.AreaOption.WithText(areaLabel)); err != nil {
		return nil, err
	}
	if err := w.elementLocator.WaitRendered(ctx, locator.WholePage, selectors.CourseItem, w.options.WaitBound); err != nil {
		return nil, err
	}
	courseElements, listError := w.elementLocator.List(ctx, locator.WholePage, selectors.CourseItem)
	if listError != nil {
		return nil, listError
	}
	return uniqueLabels(courseElements), nil
}

// openAreaOption re-opens the area list when the option for areaLabel is not
// showing, since selecting an option usually closes the list.
func (w *Walker) openAreaOption(ctx context.Context, areaLabel string) error {
	selectors := w.options.Selectors
	option := selectors.AreaOption.WithText(areaLabel)
	visibleOptions, listError := w.elementLocator.List(ctx, locator.WholePage, option)
	if listError != nil {
		return listError
	}
	if len(visibleOptions) > 0 {
		return nil
	}
	log.L().Debug("area_list_reopen", zap.String("area", areaLabel))
	if err := w.elementLocator.Click(ctx, selectors.AreaControl); err != nil {
		return err
	}
	return w.elementLocator.WaitRendered(ctx, locator.WholePage, option, w.options.WaitBound)
}

func (w *Walker) walkCourse(ctx context.Context, areaLabel string, areaPath string, courseLabel string, result *Result) (Course, error) {
	course := Course{Name: courseLabel, Directory: SanitizeLabel(courseLabel), Links: []string{}}
	coursePath := filepath.Join(areaPath, course.Directory)
	directoryError := ensureDirectory(coursePath)

	if linksError := w.collectLinks(ctx, &course); linksError != nil {
		if ctx.Err() != nil {
			return course, ctx.Err()
		}
		log.L().Warn("course_timeout",
			zap.String("area", areaLabel),
			zap.String("course", courseLabel),
			zap.Error(linksError),
		)
		result.recordFailure(Failure{
			Kind:   PartialCourseFailure,
			Area:   areaLabel,
			Course: courseLabel,
			Reason: linksError.Error(),
		})
	} else {
		log.L().Info("course_links",
			zap.String("area", areaLabel),
			zap.String("course", courseLabel),
			zap.Int("links", len(course.Links)),
		)
	}

	if directoryError == nil {
		directoryError = writeCourseLinks(coursePath, course.Links)
	}
	if directoryError != nil {
		log.L().Warn("course_write_failed",
			zap.String("area", areaLabel),
			zap.String("course", courseLabel),
			zap.Error(directoryError),
		)
		result.recordFailure(Failure{
			Kind:   PartialCourseFailure,
			Area:   areaLabel,
			Course: courseLabel,
			Reason: directoryError.Error(),
		})
	}
	return course, nil
}

func (w *Walker) collectLinks(ctx context.Context, course *Course) error {
	selectors := w.options.Selectors
	if err := w.elementLocator.Click(ctx, selectors.CourseItem.WithText(course.Name)); err != nil {
		return err
	}
	panel := locator.Between(selectors.CourseItem.WithText(course.Name), selectors.CourseItem)
	if w.options.PageWideLinks {
		panel = locator.WholePage
	}
	if err := w.elementLocator.WaitRendered(ctx, panel, selectors.SyllabusRegion, w.options.WaitBound); err != nil {
		return err
	}
	anchorElements, listError := w.elementLocator.List(ctx, panel, selectors.Anchor)
	if listError != nil {
		return listError
	}

	marker := strings.ToLower(w.options.LinkMarker)
	for _, anchor := range anchorElements {
		if !strings.Contains(strings.ToLower(anchor.Text()), marker) {
			continue
		}
		if href, found := anchor.Attribute("href"); found && href != "" {
			course.addLink(href)
		}
	}
	return nil
}

// uniqueLabels keeps render order and drops blanks and repeats.
func uniqueLabels(elements []locator.Element) []string {
	seenLabels := map[string]struct{}{}
	var labels []string
	for _, element := range elements {
		label := element.Text()
		if label == "" {
			continue
		}
		if _, seen := seenLabels[label]; seen {
			continue
		}
		seenLabels[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

func settle(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
