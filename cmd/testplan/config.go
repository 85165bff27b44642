// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"testplan-cli/internal/config"
	"testplan-cli/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `testplan config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage testplan configuration",
		Long: `Manage testplan configuration.

Configuration is stored in:
  - Linux: ~/.config/testplan/config.cue
  - macOS: ~/Library/Application Support/testplan/config.cue
  - Windows: %APPDATA%\testplan\config.cue

TESTPLAN_* environment variables (TESTPLAN_UI_VERBOSE, TESTPLAN_WATCH_DEBOUNCE_MS)
override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			showConfig(cmd.OutOrStdout(), app.settings, app.settingsPath)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return app.fail(cmd, issue.WrapWithOperation(err, "create configuration file"))
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration already exists at %s\n", SubtitleStyle.Render(infoIcon), path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created default configuration at %s\n", SuccessStyle.Render(successIcon), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(w, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			if path, err := app.Config.Path(config.LoadOptions{ConfigFilePath: app.flags.configFile}); err == nil && path != "" {
				fmt.Fprintf(w, "Active file: %s\n", path)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Long:      "Set a configuration value and save the file.\n\nValid keys: " + strings.Join(config.Keys(), ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.settingsErr != nil {
				// Saving now would replace the broken file with defaults.
				return app.fail(cmd, app.settingsErr)
			}
			// Start from the file alone so env overrides of this process
			// are not persisted.
			base, err := app.Config.Load(cmd.Context(), config.LoadOptions{
				ConfigFilePath: app.flags.configFile,
				IgnoreEnv:      true,
			})
			if err != nil {
				return app.fail(cmd, err)
			}
			cfg, err := config.SetValue(base, args[0], args[1])
			if err != nil {
				return app.fail(cmd, issue.NewErrorContext().
					WithOperation("set "+args[0]).
					WithSuggestion("Valid keys: "+strings.Join(config.Keys(), ", ")).
					WithIssue(issue.ConfigLoadFailedId).
					Wrap(err).
					BuildError())
			}

			path := app.settingsPath
			if path != "" {
				err = config.SaveFile(cfg, path)
			} else {
				path, err = config.Save(cfg, "")
			}
			if err != nil {
				return app.fail(cmd, issue.WrapWithContext(err, "save configuration", path))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s = %s in %s\n", SuccessStyle.Render(successIcon), args[0], args[1], path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(app.settings))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("definition"), valueOrUnset(cfg.Definition))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("root_dir"), valueOrUnset(cfg.RootDir))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(w, "  debounce_ms: %s\n", valueStyle.Render(strconv.Itoa(cfg.Watch.DebounceMs)))
	fmt.Fprintf(w, "  clear_screen: %s\n", valueStyle.Render(strconv.FormatBool(cfg.Watch.ClearScreen)))
	if len(cfg.Watch.Ignore) == 0 {
		fmt.Fprintf(w, "  ignore: %s\n", SubtitleStyle.Render("(none configured)"))
		return
	}
	fmt.Fprintln(w, "  ignore:")
	for _, p := range cfg.Watch.Ignore {
		fmt.Fprintf(w, "    - %s\n", valueStyle.Render(p))
	}
}

func valueOrUnset(v string) string {
	if v == "" {
		return SubtitleStyle.Render("(not set)")
	}
	return SuccessStyle.Render(v)
}
