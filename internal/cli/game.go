package cli

import (
	"github.com/spf13/cobra"
)

func newKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill",
		Short: "Confirm that you eliminated your target",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result KillResult

			if err := client.Post("/api/v1/kill", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newKilledCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "killed",
		Short: "Report that you were eliminated",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatusResult

			if err := client.Post("/api/v1/killed", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGiveUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "giveup",
		Short: "Leave the game without crediting anyone",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatusResult

			if err := client.Post("/api/v1/giveup", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
