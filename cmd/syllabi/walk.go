package main

import (
	"context"
	"fmt"
	"path/filepath"

	"SyllabusScrape/pkg/config"
	"SyllabusScrape/pkg/locator"
	"SyllabusScrape/pkg/log"
	"SyllabusScrape/pkg/session"
	"SyllabusScrape/pkg/syllabus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Log in if needed, then record syllabus links for every teaching area and course",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runWalk(cmd.Context(), loadedConfig)
	},
}

func runWalk(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	browser, openError := session.Open(parent, session.Options{
		StartURL:   cfg.StartURL,
		ProfileDir: cfg.ProfileDir,
		Headless:   cfg.Headless,
		ChromePath: cfg.ChromePath,
	})
	if openError != nil {
		return fmt.Errorf("starting browser: %w", openError)
	}
	defer browser.Close()

	browserContext := browser.Context()
	chrome := locator.NewChrome(cfg.WaitBound)

	if _, authError := session.Ensure(browserContext, browser, chrome, session.AuthOptions{
		StartURL:    cfg.StartURL,
		DetectBound: cfg.DetectBound,
		LoginBound:  cfg.LoginBound,
	}); authError != nil {
		log.L().Error("walk_failed", zap.String("status", string(syllabus.StatusFailed)), zap.Error(authError))
		return authError
	}

	result, walkError := syllabus.NewWalker(chrome, cfg.WalkOptions()).Walk(browserContext)
	if walkError != nil {
		return walkError
	}

	resultPath := filepath.Join(cfg.OutputDir, syllabus.ResultFileName)
	if err := syllabus.WriteResult(resultPath, result); err != nil {
		return fmt.Errorf("writing %s: %w", resultPath, err)
	}
	log.L().Info("result_saved",
		zap.String("path", resultPath),
		zap.String("status", string(result.Status)),
	)
	for _, failure := range result.Failures {
		fmt.Printf("%s\t%s\t%s\t%s\n", failure.Kind, failure.Area, failure.Course, failure.Reason)
	}
	return nil
}
