package main

import (
	"fmt"
	"path/filepath"

	"SyllabusScrape/pkg/log"
	"SyllabusScrape/pkg/syllabus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Rebuild syllabi.json from an existing output directory without opening a browser",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		result, readError := syllabus.ReadTree(loadedConfig.OutputDir)
		if readError != nil {
			return fmt.Errorf("reading %s: %w", loadedConfig.OutputDir, readError)
		}
		resultPath := filepath.Join(loadedConfig.OutputDir, syllabus.ResultFileName)
		if err := syllabus.WriteResult(resultPath, result); err != nil {
			return fmt.Errorf("writing %s: %w", resultPath, err)
		}
		log.L().Info("tree_rebuilt",
			zap.String("path", resultPath),
			zap.Int("areas", len(result.Areas)),
			zap.Int("courses", result.CourseCount()),
			zap.Int("links", result.LinkCount()),
		)
		return nil
	},
}
