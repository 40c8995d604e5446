package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/quedamos/quedamos-engine/internal/config"
	"github.com/quedamos/quedamos-engine/pkg/core/dayscoring"
	"github.com/quedamos/quedamos-engine/pkg/core/services"
	"github.com/quedamos/quedamos-engine/pkg/groupfile"
	"github.com/quedamos/quedamos-engine/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	ctx    context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quedamos",
		Short: "Quedamos CLI - Find the best day for your group to meet",
		Long:  `A CLI tool for scoring and ranking candidate meeting dates from a group's availability declarations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "dev", "Environment name used to prefix log files")

	// Add all commands
	rootCmd.AddCommand(scoreDaysCmd())
	rootCmd.AddCommand(topDatesCmd())
	rootCmd.AddCommand(listMembersCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger and config
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Initialize logger
	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.logger.Debug("Loading configuration")
	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	return nil
}

// serviceOptions maps the loaded configuration onto scoring options
func serviceOptions(cfg *config.Config) services.Options {
	opts := services.Options{
		UseDefaultWeightsOnInvalid: cfg.UseDefaultWeightsOnInvalid,
		TopN:                       cfg.TopN,
		MaxMembers:                 cfg.MaxMembers,
		MaxDates:                   cfg.MaxDates,
	}
	if cfg.ScoreWeights != nil {
		opts.Weights = &dayscoring.ScoreWeights{
			Attendance: cfg.ScoreWeights.Attendance,
			Overlap:    cfg.ScoreWeights.Overlap,
		}
	}
	return opts
}

// Command definitions

func scoreDaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scoreDays <group_file>",
		Short: "Score and rank every date declared in a group file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := groupfile.Load(args[0])
			if err != nil {
				return err
			}

			scores, err := services.ComputeDayScores(
				app.ctx,
				app.logger,
				doc.Group.ID,
				doc.Members,
				doc.Availabilities,
				serviceOptions(app.cfg),
			)
			if err != nil {
				return err
			}

			// Display results
			fmt.Printf("\n%s %s - %d candidate dates\n\n", doc.Group.Emoji, doc.Group.Name, len(scores))
			if len(scores) == 0 {
				fmt.Println("No availability declared yet.")
				return nil
			}

			fmt.Printf("  %-12s %-7s %s\n", "Date", "Score", "Available")
			for _, s := range scores {
				fmt.Printf("  %-12s %.3f   %d/%d\n", s.Date, s.Score, s.AvailableCount, s.TotalMembers)
			}
			fmt.Println()

			return nil
		},
	}
}

func topDatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topDates <group_file> [n]",
		Short: "Suggest the best dates for the group to meet (defaults to top 3)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 0
			if len(args) > 1 {
				parsed, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("n must be a number: %w", err)
				}
				n = parsed
			}

			doc, err := groupfile.Load(args[0])
			if err != nil {
				return err
			}

			top, err := services.TopDates(
				app.ctx,
				app.logger,
				doc.Group.ID,
				doc.Members,
				doc.Availabilities,
				n,
				serviceOptions(app.cfg),
			)
			if err != nil {
				return err
			}

			if len(top) == 0 {
				fmt.Println("\nNo availability declared yet.")
				return nil
			}

			fmt.Printf("\n%s Best dates for %s:\n\n", doc.Group.Emoji, doc.Group.Name)
			for i, s := range top {
				fmt.Printf("  %d. %s  (score %.3f, %d/%d available)\n", i+1, s.Date, s.Score, s.AvailableCount, s.TotalMembers)
			}
			fmt.Println()

			return nil
		},
	}
}

func listMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listMembers <group_file>",
		Short: "List the group's members and how many dates each has declared",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := groupfile.Load(args[0])
			if err != nil {
				return err
			}

			declared := make(map[string]int)
			for _, a := range doc.Availabilities {
				declared[a.UserID]++
			}

			app.logger.Info("Members listed",
				zap.String("group_id", doc.Group.ID),
				zap.Int("count", len(doc.Members)))

			fmt.Printf("\n%s %s has %d members:\n\n", doc.Group.Emoji, doc.Group.Name, len(doc.Members))
			for _, m := range doc.Members {
				name := m.DisplayName
				if name == "" {
					name = m.UserID
				}
				fmt.Printf("- %s (%s) - %d dates declared\n", name, m.UserID, declared[m.UserID])
			}
			fmt.Println()

			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <group_file>",
		Short: "Check a group file and its declarations without scoring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := groupfile.Load(args[0])
			if err != nil {
				return err
			}

			for _, a := range doc.Availabilities {
				if _, err := dayscoring.Normalize(a); err != nil {
					return err
				}
			}

			fmt.Printf("\n✓ %s is valid: %d members, %d availability records\n\n",
				args[0], len(doc.Members), len(doc.Availabilities))

			return nil
		},
	}
}

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (run multiple commands in one process)",
		Long: `Start an interactive session where you can run multiple commands against
the same configuration. The session keeps running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nStarting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				// Parse command
				parts := strings.Fields(line)
				cmdName := parts[0]
				cmdArgs := parts[1:]

				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("Goodbye!")
					return nil
				}

				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				// Reset command flags and args
				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Execute the command's RunE directly, bypassing the full Execute() flow
				// so PersistentPreRunE doesn't re-run initApp
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("Error parsing flags: %v\n\n", err)
					continue
				}

				cmdArgs = targetCmd.Flags().Args()

				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("Error: %v\n\n", err)
					continue
				}

				if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
					fmt.Printf("Error: %v\n\n", err)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	for _, cmd := range commands {
		fmt.Printf("  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}
