package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/sweet/internal/config"
	"github.com/dori/sweet/internal/identity"
)

const syncTimeout = 30 * time.Second

func newConnectCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "connect [address]",
		Short: "Connect a wallet address",
		Long:  "Connect the configured wallet address, or save and connect the given one.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := saveAddress(flags.configPath, args[0]); err != nil {
					return err
				}
			}

			application, err := openApp(flags)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			user, err := application.Session.Connect(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected as %s (%d tasks)\n", user.DisplayName, application.Session.Tasks().Len())
			return nil
		},
	}
}

// saveAddress validates address and stores it in the config file
func saveAddress(path, address string) error {
	if !identity.ValidAddress(address) {
		return fmt.Errorf("invalid wallet address %q", address)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.Address = address
	return cfg.Save(path)
}

func newDisconnectCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the connected wallet",
		Long:  "Forget the connected wallet. Its tasks stay on disk and come back on the next connect.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp(flags)
			if err != nil {
				return err
			}
			defer application.Close()

			application.Session.Disconnect(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Disconnected")
			return nil
		},
	}
}

func newSyncCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy tasks to or from the sync server",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Overwrite the server copy with the local tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
			defer cancel()
			if err := application.Session.Push(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d tasks\n", application.Session.Tasks().Len())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Replace the local tasks with the server copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
			defer cancel()
			if err := application.Session.Pull(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d tasks\n", application.Session.Tasks().Len())
			return nil
		},
	})

	return cmd
}
