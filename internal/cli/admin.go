package cli

import (
	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands",
	}

	cmd.AddCommand(newAdminPlayersCmd())
	cmd.AddCommand(newAdminChainCmd())
	cmd.AddCommand(newAdminSeedCmd())
	cmd.AddCommand(newAdminInvalidateCmd())

	return cmd
}

func newAdminPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "Dump every player record",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AdminPlayers

			if err := client.Get("/api/v1/admin/players", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAdminChainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain",
		Short: "Check the target chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ChainReport

			if err := client.Get("/api/v1/admin/chain", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAdminSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Shuffle alive players into a new target chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SeedResult

			if err := client.Post("/api/v1/admin/chain/seed", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAdminInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Drop the server's cached player snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/admin/cache/invalidate", nil, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Cache invalidated")
			return nil
		},
	}
}
