// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const version = "0.1.0"

// newApp builds the root command.
func newApp(r *Runner) *cli.Command {
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}

	return &cli.Command{
		Name:    "iptvx",
		Usage:   "Search IPTV playlist categories and filter playlists by them",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("IPTVX_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:       r.loadConfig,
		OnUsageError: usageError,
		Commands:     r.register(),
		// keywords may contain commas ("UK, News")
		DisableSliceFlagSeparator: true,
	}
}

// sourceFlags are shared by every command that reads a playlist.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input_m3u_file",
			Aliases: []string{"i", "input"},
			Usage:   "Input M3U file path",
		},
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "URL of the M3U file to download",
		},
	}
}

func settingsFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "settings",
		Aliases: []string{"s"},
		Usage:   usage,
	}
}

func keywordsFlag(usage string) cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "keywords",
		Aliases: []string{"k"},
		Usage:   usage,
	}
}

// searchCommand extracts categories matching keywords into the settings file
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search-categories",
		Aliases:   []string{"search"},
		Usage:     "Find categories matching keywords and save them to the settings file",
		ArgsUsage: "[keyword...]",
		Flags: append(sourceFlags(),
			keywordsFlag("Keyword to search for in category names (repeatable)"),
			settingsFlag("Settings file to overwrite (default from config, config.ini)"),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		),
		Action: r.SearchCategories,
	}
}

// parseCommand filters a playlist by the categories in the settings file
func parseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "parse",
		Usage: "Write the entries in saved categories to a new playlist",
		Flags: append(sourceFlags(),
			&cli.StringFlag{
				Name:    "output_m3u_file",
				Aliases: []string{"o", "output"},
				Usage:   "Output M3U file path (required)",
			},
			settingsFlag("Settings file with categories (required)"),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		),
		Action: r.Parse,
	}
}

// pickCommand chooses categories interactively
func pickCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "pick",
		Usage:     "Choose categories interactively and save them to the settings file",
		ArgsUsage: "[keyword...]",
		Flags: append(sourceFlags(),
			keywordsFlag("Only offer categories matching these keywords"),
			settingsFlag("Settings file to overwrite (default from config, config.ini)"),
		),
		Action: r.Pick,
	}
}

// historyCommand inspects recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect previous runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "command",
						Usage: "Only show runs of this command (search-categories, parse, pick)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "delete",
				Usage: "Delete a run from the history",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Run ID to delete",
					},
				},
				Action: r.HistoryDelete,
			},
			{
				Name:  "export",
				Usage: "Export recorded runs to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, md, txt)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: history.<format>)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to export (0 for all)",
					},
					&cli.StringFlag{
						Name:  "command",
						Usage: "Only export runs of this command",
					},
				},
				Action: r.HistoryExport,
			},
		},
	}
}

// setupCommand writes the config template and prepares the history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the history database",
		Action: r.Setup,
	}
}
