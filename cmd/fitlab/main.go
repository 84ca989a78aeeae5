package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fitlab/internal/bootstrap"
	analyticsdto "fitlab/internal/modules/analytics/dto"
	capturedto "fitlab/internal/modules/capture/dto"
	resultsdto "fitlab/internal/modules/results/dto"
	"fitlab/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var workspace string

	root := &cobra.Command{
		Use:           "fitlab",
		Short:         "Fitness test capture and scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&workspace, "workspace", ".", "workspace directory")

	root.AddCommand(newTUICmd(&workspace))
	root.AddCommand(newTestCmd(&workspace))
	root.AddCommand(newSessionCmd(&workspace))
	root.AddCommand(newResultsCmd(&workspace))
	root.AddCommand(newPluginCmd(&workspace))
	root.AddCommand(newServeCmd(&workspace))
	return root
}

// withApp builds the application for one command run and closes it
// afterwards so pending writes reach the backend.
func withApp(workspace string, mode bootstrap.Mode, run func(app *bootstrap.App) error) (err error) {
	cfg, err := config.New(workspace)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return run(app)
}

func newTUICmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the fitlab terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*workspace, bootstrap.ModeTUI, bootstrap.RunTUI)
		},
	}
}

func newServeCmd(workspace *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(*workspace, bootstrap.ModeServe, func(app *bootstrap.App) error {
				return bootstrap.Serve(ctx, app, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newTestCmd(workspace *string) *cobra.Command {
	test := &cobra.Command{Use: "test", Short: "Test catalog commands"}

	var category string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog tests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				tests, err := app.CatalogCLI.ListTests(context.Background(), category)
				if err != nil {
					return err
				}
				if len(tests) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no tests")
					return nil
				}
				for _, t := range tests {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Category, t.Difficulty, t.Duration)
				}
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&category, "category", "", "filter by category")
	test.AddCommand(listCmd)

	test.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a test and its instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				t, err := app.CatalogCLI.GetTest(context.Background(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "%s (%s)\ncategory=%s difficulty=%s duration=%s\n", t.Name, t.ID, t.Category, t.Difficulty, t.Duration)
				if t.Description != "" {
					_, _ = fmt.Fprintf(out, "\n%s\n", t.Description)
				}
				for i, step := range t.Instructions {
					_, _ = fmt.Fprintf(out, "%d. %s\n", i+1, step)
				}
				return nil
			})
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in catalog to tests.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				out, err := app.CatalogCLI.Init(context.Background(), force)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tests to %s\n", out.Count, out.Path)
				return nil
			})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing tests.yaml")
	test.AddCommand(initCmd)
	return test
}

func newSessionCmd(workspace *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Drive a test attempt"}

	attemptCmd := func(use, short string, args cobra.PositionalArgs, call func(ctx context.Context, app *bootstrap.App, args []string) (capturedto.AttemptOutput, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
					out, err := call(context.Background(), app, args)
					if err != nil {
						return err
					}
					printAttempt(cmd.OutOrStdout(), out)
					return nil
				})
			},
		}
	}

	session.AddCommand(attemptCmd("open <testID>", "Open an attempt for a catalog test", cobra.ExactArgs(1),
		func(ctx context.Context, app *bootstrap.App, args []string) (capturedto.AttemptOutput, error) {
			return app.CaptureCLI.Open(ctx, args[0])
		}))
	session.AddCommand(attemptCmd("start", "Start the timer", cobra.NoArgs,
		func(ctx context.Context, app *bootstrap.App, _ []string) (capturedto.AttemptOutput, error) {
			return app.CaptureCLI.Start(ctx)
		}))
	session.AddCommand(attemptCmd("reset", "Reset the attempt to ready", cobra.NoArgs,
		func(ctx context.Context, app *bootstrap.App, _ []string) (capturedto.AttemptOutput, error) {
			return app.CaptureCLI.Reset(ctx)
		}))
	session.AddCommand(attemptCmd("status", "Show the attempt", cobra.NoArgs,
		func(ctx context.Context, app *bootstrap.App, _ []string) (capturedto.AttemptOutput, error) {
			return app.CaptureCLI.Status(ctx)
		}))

	var count int
	repCmd := attemptCmd("rep", "Count repetitions", cobra.NoArgs,
		func(ctx context.Context, app *bootstrap.App, _ []string) (capturedto.AttemptOutput, error) {
			return app.CaptureCLI.Rep(ctx, count)
		})
	repCmd.Flags().IntVar(&count, "count", 1, "repetitions to add")
	session.AddCommand(repCmd)

	var athlete, notes string
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and score the attempt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				out, err := app.CaptureCLI.Stop(context.Background(), athlete, notes)
				if out.Result.ID != "" {
					r := out.Result
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "scored %s: %g %s percentile=%d personal_best=%t id=%s\n",
						r.TestName, r.Score, r.Unit, r.Percentile, r.PersonalBest, r.ID)
					if out.NotePath != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "note=%s\n", out.NotePath)
					}
				}
				return err
			})
		},
	}
	stopCmd.Flags().StringVar(&athlete, "athlete", "", "athlete id")
	stopCmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	session.AddCommand(stopCmd)
	return session
}

func printAttempt(w io.Writer, a capturedto.AttemptOutput) {
	if a.TestID == "" {
		_, _ = fmt.Fprintf(w, "phase=%s (no test open)\n", a.Phase)
		return
	}
	_, _ = fmt.Fprintf(w, "%s phase=%s elapsed=%s", a.TestName, a.Phase, a.Elapsed.Round(10*time.Millisecond))
	if a.RepetitionBased {
		_, _ = fmt.Fprintf(w, " reps=%d", a.Reps)
	}
	if a.LastResultID != "" {
		_, _ = fmt.Fprintf(w, " last_result=%s", a.LastResultID)
	}
	_, _ = fmt.Fprintln(w)
}

func newResultsCmd(workspace *string) *cobra.Command {
	results := &cobra.Command{Use: "results", Short: "Query stored results"}

	var recentLimit int
	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				items, loaded, err := app.ResultsCLI.Recent(context.Background(), recentLimit)
				if err != nil {
					return err
				}
				if loaded.Fallback {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "results could not be loaded, showing sample data")
				}
				printResults(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
	recentCmd.Flags().IntVar(&recentLimit, "limit", 10, "maximum results")
	results.AddCommand(recentCmd)

	var athlete string
	bestsCmd := &cobra.Command{
		Use:   "bests",
		Short: "List personal bests per test",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				items, err := app.ResultsCLI.Bests(context.Background(), athlete)
				if err != nil {
					return err
				}
				printResults(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
	bestsCmd.Flags().StringVar(&athlete, "athlete", "", "athlete id")
	results.AddCommand(bestsCmd)

	var categoryLimit int
	categoryCmd := &cobra.Command{
		Use:   "category <name>",
		Short: "List results in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				items, err := app.ResultsCLI.ByCategory(context.Background(), args[0], categoryLimit)
				if err != nil {
					return err
				}
				printResults(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
	categoryCmd.Flags().IntVar(&categoryLimit, "limit", 0, "maximum results (0 for all)")
	results.AddCommand(categoryCmd)

	var topLimit int
	topCmd := &cobra.Command{
		Use:   "top [test name]",
		Short: "Rank results by score",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			testName := strings.Join(args, " ")
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				items, err := app.ResultsCLI.Top(context.Background(), testName, topLimit)
				if err != nil {
					return err
				}
				printResults(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
	topCmd.Flags().IntVar(&topLimit, "limit", 10, "maximum results")
	results.AddCommand(topCmd)

	results.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				if err := app.ResultsCLI.Delete(context.Background(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	})
	return results
}

func printResults(w io.Writer, items []resultsdto.TestResult) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "no results")
		return
	}
	for _, r := range items {
		pb := ""
		if r.PersonalBest {
			pb = "\tPB"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%g %s\tp%d\t%s%s\n", r.Date, r.ID, r.TestName, r.Score, r.Unit, r.Percentile, r.Category, pb)
	}
}

func newPluginCmd(workspace *string) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Analytics plugin operations"}
	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List plugin manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				plugins, err := app.AnalyticsCLI.List(context.Background())
				if err != nil {
					return err
				}
				if len(plugins) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
					return nil
				}
				for _, p := range plugins {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s capabilities=%s\n", p.Name, p.Version, p.Enabled, p.Binary, strings.Join(p.Capabilities, ","))
				}
				return nil
			})
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				results, err := app.AnalyticsCLI.Doctor(context.Background())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
					if r.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "commands <plugin>",
		Short: "List commands exposed by a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				commands, err := app.AnalyticsCLI.ListCommands(context.Background(), args[0])
				if err != nil {
					return err
				}
				if len(commands) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no commands")
					return nil
				}
				for _, item := range commands {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s kind=%s timeout_ms=%d title=%q\n", item.ID, item.Kind, item.TimeoutMS, item.Title)
				}
				return nil
			})
		},
	})

	var athleteID string
	runCmd := func(use, short string, analyze bool) *cobra.Command {
		c := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.RangeArgs(2, 3),
			RunE: func(cmd *cobra.Command, args []string) error {
				input := analyticsdto.RunInput{Plugin: args[0], CommandID: args[1], AthleteID: athleteID}
				if len(args) == 3 {
					if !json.Valid([]byte(args[2])) {
						return fmt.Errorf("input must be valid JSON")
					}
					input.InputJSON = args[2]
				}
				return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
					run := app.AnalyticsCLI.Execute
					if analyze {
						run = app.AnalyticsCLI.Analyze
					}
					out, err := run(context.Background(), input)
					if err != nil {
						return err
					}
					printRun(cmd, out)
					return nil
				})
			},
		}
		c.Flags().StringVar(&athleteID, "athlete", "", "athlete id passed to the plugin")
		return c
	}
	plugin.AddCommand(runCmd("exec <plugin> <command> [json]", "Run a plugin command", false))
	plugin.AddCommand(runCmd("analyze <plugin> <command> [json]", "Run a plugin analyzer", true))

	var category, unit string
	var score float64
	percentileCmd := &cobra.Command{
		Use:   "percentile <plugin> <test name>",
		Short: "Rank a score with a norms plugin",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*workspace, bootstrap.ModeCLI, func(app *bootstrap.App) error {
				out, err := app.AnalyticsCLI.Percentile(context.Background(), analyticsdto.PercentileInput{
					Plugin:   args[0],
					TestName: strings.Join(args[1:], " "),
					Category: category,
					Score:    score,
					Unit:     unit,
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "percentile=%d source=%s\n", out.Percentile, out.Source)
				return nil
			})
		},
	}
	percentileCmd.Flags().StringVar(&category, "category", "", "test category")
	percentileCmd.Flags().StringVar(&unit, "unit", "", "score unit")
	percentileCmd.Flags().Float64Var(&score, "score", 0, "score to rank")
	plugin.AddCommand(percentileCmd)
	return plugin
}

func printRun(cmd *cobra.Command, out analyticsdto.RunOutput) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "plugin=%s command=%s exit=%d\n", out.Plugin, out.CommandID, out.ExitCode)
	if strings.TrimSpace(out.Stdout) != "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Stdout)
	}
	if strings.TrimSpace(out.Stderr) != "" {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), out.Stderr)
	}
	if strings.TrimSpace(out.OutputJSON) != "" && out.OutputJSON != out.Stdout {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.OutputJSON)
	}
}
