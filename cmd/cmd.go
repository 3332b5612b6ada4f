// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the HTTP API and the scheduler
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the job API and run scheduled jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port)",
			},
		},
		Action: r.Serve,
	}
}

// runCommand runs one job in the foreground
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a job on a table and wait for it to finish",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "target"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the final status as JSON",
			},
		},
		Action: r.RunJob,
	}
}

// startCommand asks a running server to start a job
func startCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "Start a job on a running server",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "target"},
		},
		Action: r.Start,
	}
}

// statusCommand prints the status of a running server
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the current or last job of a running server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.IntFlag{
				Name:  "tail",
				Usage: "Number of log lines to show (0 for all)",
				Value: 10,
			},
		},
		Action: r.Status,
	}
}

// watchCommand returns the top-level TUI command for following jobs.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch interactive TUI to start and follow jobs",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Status polling interval",
				Value: 0,
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File receiving logs while the TUI is open",
				Value: "./tmp/sheetstats-watch.log",
			},
		},
		Action: r.Watch,
	}
}

// resolveCommand looks up a single link
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Look up the statistics of one video link",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Resolve,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example configuration file at --config",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rollback", Usage: "Roll back the latest applied migration instead"},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tableCommand manages tables of the local database
func tableCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "table",
		Usage: "Manage tables of the local SQLite store",
		Commands: []*cli.Command{
			{
				Name:  "load",
				Usage: "Replace a table with a LINK header and one link per line of --file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "target"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "File with one link per line",
						Required: true,
					},
				},
				Action: r.TableLoad,
			},
			{
				Name:  "dump",
				Usage: "Print a table with its statistics",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "target"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write CSV to this path instead of printing",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TableDump,
			},
			{
				Name:   "list",
				Usage:  "List stored tables",
				Action: r.TableList,
			},
		},
	}
}
