package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dori/sweet/internal/app"
	"github.com/dori/sweet/internal/config"
	"github.com/dori/sweet/internal/ui"
)

var version = "0.1.0"

var errNotConnected = errors.New("no wallet connected, run `sweet connect <address>` first")

type globalFlags struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "sweet",
		Short: "My Sweet Tasks - a personal task tracker tied to your wallet",
		Long: `sweet - a personal task tracker tied to your wallet address

Quick Add Syntax:
  sweet add "Buy groceries"
  sweet add "Review PR @Work !high due:tomorrow"

  Tags:      @tag          (e.g., @Work, @Personal, @Study)
  Priority:  !low !medium !high
  Due date:  due:today due:tomorrow due:friday due:2024-01-15

Run without a subcommand to start the TUI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultPath(), "config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newAddCmd(flags),
		newListCmd(flags),
		newConnectCmd(flags),
		newDisconnectCmd(flags),
		newSyncCmd(flags),
		newServeCmd(flags),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sweet v%s\n", version)
		},
	}
}

func runTUI(flags *globalFlags) error {
	application, err := openApp(flags)
	if err != nil {
		return err
	}
	defer application.Close()

	model := ui.NewRootModel(application)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)

	_, err = p.Run()
	return err
}

func openApp(flags *globalFlags) (*app.App, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.Options{Verbose: flags.verbose})
}

// openSession opens the client and resumes the last connected identity
func openSession(ctx context.Context, flags *globalFlags) (*app.App, error) {
	application, err := openApp(flags)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ok, err := application.Session.Resume(ctx)
	if err != nil {
		application.Close()
		return nil, err
	}
	if !ok {
		application.Close()
		return nil, errNotConnected
	}
	return application, nil
}
