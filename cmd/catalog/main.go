// cmd/catalog/main.go
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"SyllabusScrape/pkg/catalog"
	"SyllabusScrape/pkg/config"
	"SyllabusScrape/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	settings     = config.New()
	loadedConfig config.Config
	lookupID     string
	lookupName   string
)

var rootCmd = &cobra.Command{
	Use:          "catalog",
	Short:        "catalog downloads the undergraduate program list and looks programs up in it.",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var loadError error
		loadedConfig, loadError = config.Load(settings)
		if loadError != nil {
			return loadError
		}
		return log.Init(loadedConfig.Production)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "POST the program filter and save the response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := catalog.NewClient(loadedConfig.CatalogOptions())
		count, err := client.FetchPrograms(cmd.Context(), loadedConfig.CatalogFile)
		if err != nil {
			return err
		}
		fmt.Printf("saved %d programs to %s\n", count, loadedConfig.CatalogFile)
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Print one program from the saved list by --id or --name",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if (lookupID == "") == (lookupName == "") {
			return errors.New("exactly one of --id or --name is required")
		}
		programs, loadError := catalog.LoadPrograms(loadedConfig.CatalogFile)
		if loadError != nil {
			return fmt.Errorf("loading %s (run fetch first): %w", loadedConfig.CatalogFile, loadError)
		}

		if lookupID != "" {
			program, err := programs.ByID(lookupID)
			if err != nil {
				return err
			}
			return printProgram(program)
		}

		program, closeMatches, err := programs.ByName(lookupName)
		if errors.Is(err, catalog.ErrProgramNotFound) && len(closeMatches) > 0 {
			log.L().Info("lookup_close_matches", zap.String("name", lookupName), zap.Int("matches", len(closeMatches)))
			fmt.Println("close matches:")
			for _, match := range closeMatches {
				fmt.Printf("  %s\t%s\t%.3f\n", match.ID, match.Title, match.Score)
			}
		}
		if err != nil {
			return err
		}
		return printProgram(program)
	},
}

func printProgram(program catalog.Program) error {
	var indented bytes.Buffer
	if err := json.Indent(&indented, program.Raw, "", "  "); err != nil {
		return err
	}
	indented.WriteByte('\n')
	_, err := indented.WriteTo(os.Stdout)
	return err
}

func init() {
	if err := config.BindCatalogFlags(rootCmd, settings); err != nil {
		panic(err)
	}
	lookupCmd.Flags().StringVar(&lookupID, "id", "", "Program id or program group id")
	lookupCmd.Flags().StringVar(&lookupName, "name", "", "Case-insensitive part of the program title")
	rootCmd.AddCommand(fetchCmd, lookupCmd)
}

func main() {
	executeError := rootCmd.Execute()
	log.Sync()
	if executeError != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", executeError)
		os.Exit(1)
	}
}
