// cmd/syllabi/main.go
package main

import (
	"fmt"
	"os"

	"SyllabusScrape/pkg/config"
	"SyllabusScrape/pkg/log"
	"github.com/spf13/cobra"
)

var (
	settings     = config.New()
	loadedConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:          "syllabi",
	Short:        "syllabi walks the syllabus lookup site and records syllabus links per teaching area and course.",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var loadError error
		loadedConfig, loadError = config.Load(settings)
		if loadError != nil {
			return loadError
		}
		return log.InitFile(loadedConfig.Production, loadedConfig.LogFile)
	},
}

func init() {
	if err := config.BindFlags(rootCmd, settings); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(walkCmd, treeCmd)
}

func main() {
	executeError := rootCmd.Execute()
	log.Sync()
	if executeError != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", executeError)
		os.Exit(1)
	}
}
