// Package config resolves settings from defaults, an optional config file,
// SYLLABUS_* environment variables and command-line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"SyllabusScrape/pkg/catalog"
	"SyllabusScrape/pkg/syllabus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	KeyConfigFile   = "config"
	KeyStartURL     = "start_url"
	KeyProfileDir   = "profile_dir"
	KeyHeadless     = "headless"
	KeyChromePath   = "chrome_path"
	KeyOutputDir    = "output_dir"
	KeyWaitBound    = "wait_bound"
	KeyCourseSettle = "course_settle"
	KeyAreaSettle   = "area_settle"
	KeyDetectBound  = "detect_bound"
	KeyLoginBound   = "login_bound"
	KeyLinkMarker   = "link_marker"
	KeyPageWide     = "page_wide_links"
	KeySelectors    = "selectors"
	KeyLogFile      = "log_file"
	KeyProduction   = "production"
	KeyCatalogURL   = "catalog.url"
	KeyCatalogLimit = "catalog.limit"
	KeyCatalogFile  = "catalog.output"
	KeyCatalogRate  = "catalog.requests_per_second"

	envPrefix = "SYLLABUS"
)

type Config struct {
	StartURL     string
	ProfileDir   string
	Headless     bool
	ChromePath   string
	OutputDir    string
	WaitBound    time.Duration
	CourseSettle time.Duration
	AreaSettle   time.Duration
	DetectBound  time.Duration
	LoginBound   time.Duration
	LinkMarker   string
	PageWide     bool
	Selectors    syllabus.Selectors
	LogFile      string
	Production   bool
	CatalogURL   string
	CatalogLimit int
	CatalogFile  string
	CatalogRate  float64
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyStartURL, "https://syllabus.byu.edu")
	v.SetDefault(KeyProfileDir, "./private_browser_profile")
	v.SetDefault(KeyHeadless, false)
	v.SetDefault(KeyOutputDir, "syllabi")
	v.SetDefault(KeyWaitBound, 10*time.Second)
	v.SetDefault(KeyCourseSettle, time.Second)
	v.SetDefault(KeyAreaSettle, 3*time.Second)
	v.SetDefault(KeyDetectBound, 10*time.Second)
	v.SetDefault(KeyLoginBound, 300*time.Second)
	v.SetDefault(KeyLinkMarker, syllabus.DefaultLinkMarker)
	v.SetDefault(KeyPageWide, false)
	v.SetDefault(KeyProduction, false)
	v.SetDefault(KeyCatalogURL, catalog.DefaultSearchURL)
	v.SetDefault(KeyCatalogLimit, catalog.DefaultLimit)
	v.SetDefault(KeyCatalogFile, catalog.DefaultOutputFile)
	v.SetDefault(KeyCatalogRate, catalog.DefaultRequestsPerSecond)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags registers the shared persistent flags on command and binds them
// into v. Flag names are the keys with dashes instead of underscores.
func BindFlags(command *cobra.Command, v *viper.Viper) error {
	flags := command.PersistentFlags()
	flags.String(flagName(KeyConfigFile), "", "Config file (yaml, json or toml)")
	flags.String(flagName(KeyOutputDir), "syllabi", "Directory for teaching areas, courses and results")
	flags.Bool(flagName(KeyHeadless), false, "Run Chrome without a window (login must already be cached in the profile)")
	flags.String(flagName(KeyProfileDir), "./private_browser_profile", "Chrome profile directory kept between runs")
	flags.Duration(flagName(KeyWaitBound), 10*time.Second, "Maximum wait for each asynchronous reveal")
	flags.String(flagName(KeyLogFile), "", "Also write JSON logs to this rotating file")
	flags.Bool(flagName(KeyProduction), false, "Use production (JSON) console logging")
	flags.Bool(flagName(KeyPageWide), false, "Credit every visible syllabus link on the page to the expanded course")

	for _, key := range []string{KeyConfigFile, KeyOutputDir, KeyHeadless, KeyProfileDir, KeyWaitBound, KeyLogFile, KeyProduction, KeyPageWide} {
		if err := v.BindPFlag(key, flags.Lookup(flagName(key))); err != nil {
			return err
		}
	}
	return nil
}

// BindCatalogFlags registers the catalog client flags on command.
func BindCatalogFlags(command *cobra.Command, v *viper.Viper) error {
	flags := command.PersistentFlags()
	flags.String(flagName(KeyConfigFile), "", "Config file (yaml, json or toml)")
	flags.String("url", catalog.DefaultSearchURL, "Programs search endpoint")
	flags.Int("limit", catalog.DefaultLimit, "Maximum number of programs requested")
	flags.String("output", catalog.DefaultOutputFile, "Where the programs JSON is saved and read from")
	flags.Float64("rps", catalog.DefaultRequestsPerSecond, "Maximum catalog requests per second")
	flags.Bool(flagName(KeyProduction), false, "Use production (JSON) console logging")

	bindings := map[string]string{
		KeyConfigFile:   flagName(KeyConfigFile),
		KeyCatalogURL:   "url",
		KeyCatalogLimit: "limit",
		KeyCatalogFile:  "output",
		KeyCatalogRate:  "rps",
		KeyProduction:   flagName(KeyProduction),
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Load reads the config file named by the config key, if any, and validates the result.
func Load(v *viper.Viper) (Config, error) {
	if configFile := v.GetString(KeyConfigFile); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %q: %w", configFile, err)
		}
	}

	selectors := syllabus.DefaultSelectors()
	if v.IsSet(KeySelectors) {
		if err := v.UnmarshalKey(KeySelectors, &selectors); err != nil {
			return Config{}, fmt.Errorf("decoding %s: %w", KeySelectors, err)
		}
	}

	loaded := Config{
		StartURL:     v.GetString(KeyStartURL),
		ProfileDir:   v.GetString(KeyProfileDir),
		Headless:     v.GetBool(KeyHeadless),
		ChromePath:   v.GetString(KeyChromePath),
		OutputDir:    v.GetString(KeyOutputDir),
		WaitBound:    v.GetDuration(KeyWaitBound),
		CourseSettle: v.GetDuration(KeyCourseSettle),
		AreaSettle:   v.GetDuration(KeyAreaSettle),
		DetectBound:  v.GetDuration(KeyDetectBound),
		LoginBound:   v.GetDuration(KeyLoginBound),
		LinkMarker:   v.GetString(KeyLinkMarker),
		PageWide:     v.GetBool(KeyPageWide),
		Selectors:    selectors,
		LogFile:      v.GetString(KeyLogFile),
		Production:   v.GetBool(KeyProduction),
		CatalogURL:   v.GetString(KeyCatalogURL),
		CatalogLimit: v.GetInt(KeyCatalogLimit),
		CatalogFile:  v.GetString(KeyCatalogFile),
		CatalogRate:  v.GetFloat64(KeyCatalogRate),
	}
	return loaded, loaded.validate()
}

func (c Config) validate() error {
	var problems []error
	if c.StartURL == "" {
		problems = append(problems, errors.New("start_url is empty"))
	}
	if c.OutputDir == "" {
		problems = append(problems, errors.New("output_dir is empty"))
	}
	if c.WaitBound <= 0 {
		problems = append(problems, fmt.Errorf("wait_bound must be positive, got %s", c.WaitBound))
	}
	if c.CourseSettle < 0 || c.AreaSettle < 0 {
		problems = append(problems, errors.New("settle delays must not be negative"))
	}
	if c.CatalogRate <= 0 {
		problems = append(problems, fmt.Errorf("catalog.requests_per_second must be positive, got %g", c.CatalogRate))
	}
	if c.LoginBound <= 0 {
		problems = append(problems, fmt.Errorf("login_bound must be positive, got %s", c.LoginBound))
	}
	if c.Selectors.AreaControl.IsZero() || c.Selectors.AreaOption.IsZero() || c.Selectors.CourseItem.IsZero() {
		problems = append(problems, errors.New("area_control, area_option and course_item selectors are required"))
	}
	return errors.Join(problems...)
}

func (c Config) WalkOptions() syllabus.Options {
	return syllabus.Options{
		OutputDir:     c.OutputDir,
		WaitBound:     c.WaitBound,
		CourseSettle:  c.CourseSettle,
		AreaSettle:    c.AreaSettle,
		LinkMarker:    c.LinkMarker,
		PageWideLinks: c.PageWide,
		Selectors:     c.Selectors,
	}
}

func (c Config) CatalogOptions() catalog.ClientOptions {
	return catalog.ClientOptions{SearchURL: c.CatalogURL, Limit: c.CatalogLimit, RequestsPerSecond: c.CatalogRate}
}
