// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// providersCommand handles provider registry inspection and messaging.
func providersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "providers",
		Aliases: []string{"prov"},
		Usage:   "Inspect the provider registry",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List admitted providers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Filter by capability type (playlist, input, effect, output, transport)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ProvidersList,
			},
			{
				Name:  "match",
				Usage: "Show which providers claim a URI",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "uri",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Capability type to match against",
						Value:   "input",
					},
				},
				Action: r.ProvidersMatch,
			},
			{
				Name:  "message",
				Usage: "Send a bus message to a provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Provider name to address",
					},
					&cli.BoolFlag{
						Name:  "broadcast",
						Usage: "Send to every provider of the type instead of one by name",
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Capability type of the provider",
						Value:   "effect",
					},
					&cli.StringFlag{
						Name:     "code",
						Usage:    "Message code",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Message payload",
					},
				},
				Action: r.ProvidersMessage,
			},
		},
	}
}

// playlistCommand handles playlist loading, conversion and library operations.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Load a playlist and print its entries",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "uri",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, csv, markdown, json)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the listing to a file instead of stdout",
					},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "convert",
				Usage: "Convert a playlist to another format",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Source playlist URI",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "dest",
						Aliases:  []string{"d"},
						Usage:    "Destination playlist URI (extension selects the format)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "store",
						Usage: "Record the converted playlist in the library",
					},
				},
				Action: r.PlaylistConvert,
			},
			{
				Name:  "bulk",
				Usage: "Convert multiple playlists concurrently",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "uris",
						Min:  1,
						Max:  -1,
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "ext",
						Usage: "Target playlist extension",
						Value: "m3u",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers (max 10)",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "rate",
						Usage: "Conversions started per second",
						Value: 5,
					},
				},
				Action: r.PlaylistBulkConvert,
			},
			{
				Name:  "diff",
				Usage: "Compare entries between two playlists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Source playlist URI",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "dest",
						Aliases:  []string{"d"},
						Usage:    "Destination playlist URI",
						Required: true,
					},
				},
				Action: r.PlaylistDiff,
			},
			{
				Name:  "list",
				Usage: "List playlists saved in the library",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PlaylistList,
			},
		},
	}
}

// playCommand runs a decode session for a single URI.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play an audio file",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "uri",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Output backend (device, file, null)",
			},
			&cli.StringFlag{
				Name:  "eq-preset",
				Usage: "Path to an equalizer preset file",
			},
			&cli.BoolFlag{
				Name:  "no-record",
				Usage: "Skip writing a play history record",
			},
		},
		Action: r.Play,
	}
}

// historyCommand inspects the play history.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Play history operations",
		Commands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "Show recent plays",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of records",
						Value:   20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryRecent,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playback.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing and playing the library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Output backend (device, file, null)",
			},
		},
		Action: r.TUI,
	}
}
