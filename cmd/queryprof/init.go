// Package main provides the init command for queryprof
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/queryprof/queryprof/internal/config"
	"github.com/queryprof/queryprof/internal/dbconn"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Init walks through the timing settings and writes them to
` + config.ConfigFileName + ` so that future runs only need "queryprof run".

Examples:
  # Create .queryprof.json in the current directory
  queryprof init

  # Overwrite an existing configuration
  queryprof init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}

func runInit(force bool) error {
	path := configPath
	if path == "" {
		path = config.ConfigFileName
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			overwrite := false
			prompt := &survey.Confirm{
				Message: fmt.Sprintf("%s already exists. Overwrite?", path),
				Default: false,
			}
			if err := survey.AskOne(prompt, &overwrite); err != nil {
				return err
			}
			if !overwrite {
				fmt.Println("Configuration unchanged.")
				return nil
			}
		}
	}

	cfg, err := askSettings()
	if err != nil {
		return err
	}

	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

// askSettings collects the timing settings interactively.
func askSettings() (*config.Config, error) {
	cfg := &config.Config{}

	if err := survey.AskOne(&survey.Select{
		Message: "Database driver:",
		Options: dbconn.Drivers(),
		Default: "sqlite",
	}, &cfg.Driver); err != nil {
		return nil, err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Connection string (DSN):",
	}, &cfg.DSN, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Query directory:",
		Default: "queries",
	}, &cfg.Directory); err != nil {
		return nil, err
	}

	repeat := "10"
	if err := survey.AskOne(&survey.Input{
		Message: "Repetitions per query:",
		Default: repeat,
	}, &repeat, survey.WithValidator(validatePositiveInt)); err != nil {
		return nil, err
	}
	cfg.Repeat, _ = strconv.Atoi(repeat)

	if err := survey.AskOne(&survey.Confirm{
		Message: "Run one untimed warm-up pass before timing?",
		Default: false,
	}, &cfg.WarmUp); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validatePositiveInt is a survey validator for the repeat answer.
func validatePositiveInt(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return fmt.Errorf("expected a string answer")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	if n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}
