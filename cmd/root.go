package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mention-picker/app"
	"mention-picker/config"
	"mention-picker/log"
	"mention-picker/workspace"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrNoTerminal is returned by the interactive command when stdin is not a
// terminal.
var ErrNoTerminal = errors.New("interactive mode needs a terminal; use the query command instead")

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree. Each call returns fresh flag state.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mention-picker",
		Short: "Write a prompt with @-mentions of workspace files and symbols",
		Long: `mention-picker opens a prompt editor in the terminal. Typing the trigger
character (@ by default) opens a dropdown of files, Go symbols and the
uncommitted changes of the workspace. Submitting prints the prompt with every
mention expanded into a placeholder such as [[file:"main.go"]].`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !isTerminal(os.Stdout) {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
		},
		RunE: runInteractive,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("dir", "d", ".", "Workspace directory to mention files from")
	flags.Bool("files", true, "Offer workspace files")
	flags.Bool("symbols", true, "Offer Go symbols")
	flags.Bool("changes", true, "Offer the uncommitted changes command in git work trees")
	flags.StringP("trigger", "t", "", "Character that opens the picker (default from config, @)")

	rootCmd.AddCommand(newQueryCommand(), newConfigCommand())
	return rootCmd
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdin) {
		return ErrNoTerminal
	}
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	log.Initialize(cfg.LogConfig())
	defer log.Close()

	w, err := openWorkspace(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := w.Watch(ctx); err != nil {
		// The index still works; it just won't notice new files.
		log.WarningLog.Printf("file watching disabled: %v", err)
	}

	log.InfoLog.Printf("starting picker in %s", w.Root())
	out, err := app.Run(ctx, cfg, w)
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}
	if out != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}

// loadSettings reads the config file and applies the flags the user set.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.LoadConfig()
	flags := cmd.Flags()

	if flags.Changed("files") {
		cfg.Sources.Files, _ = flags.GetBool("files")
	}
	if flags.Changed("symbols") {
		cfg.Sources.Symbols, _ = flags.GetBool("symbols")
	}
	if flags.Changed("changes") {
		cfg.Sources.Changes, _ = flags.GetBool("changes")
	}
	if flags.Changed("trigger") {
		cfg.Trigger, _ = flags.GetString("trigger")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func openWorkspace(cmd *cobra.Command, cfg *config.Config) (*workspace.Workspace, error) {
	dir, _ := cmd.Flags().GetString("dir")
	w, err := workspace.Open(dir, workspace.Options{
		Exclude:    cfg.Exclude,
		MaxResults: cfg.MaxResults,
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}
