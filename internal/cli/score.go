package cli

import (
	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score ledger commands",
	}

	cmd.AddCommand(newScoreAddCmd())
	cmd.AddCommand(newScoreGameCmd())
	cmd.AddCommand(newScorePlayerCmd())
	cmd.AddCommand(newScoreTotalCmd())
	cmd.AddCommand(newScoreUpdateCmd())
	cmd.AddCommand(newScoreDeleteCmd())

	return cmd
}

func newScoreAddCmd() *cobra.Command {
	var value int

	cmd := &cobra.Command{
		Use:   "add <player-id> <game-id> --value <n>",
		Short: "Record a score for a player in a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"player_id": args[0],
				"game_id":   args[1],
				"value":     value,
			}
			var result ScoreEntry

			if err := client.Post(cmd.Context(), apiPath("scores"), req, &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&value, "value", 0, "Score value, may be negative (required)")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newScoreGameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "game <game-id>",
		Short: "List scores recorded in a game, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ScoreList

			if err := client.Get(cmd.Context(), apiPath("scores", "game", args[0]), &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newScorePlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <player-id>",
		Short: "List scores recorded for a player, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ScoreList

			if err := client.Get(cmd.Context(), apiPath("scores", "player", args[0]), &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newScoreTotalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "total <game-id> <player-id>",
		Short: "Sum a player's scores in a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ScoreTotal

			if err := client.Get(cmd.Context(), apiPath("scores", "total", args[0], args[1]), &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newScoreUpdateCmd() *cobra.Command {
	var value int

	cmd := &cobra.Command{
		Use:   "update <score-id> --value <n>",
		Short: "Change the value of a score entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ScoreEntry

			if err := client.Put(cmd.Context(), apiPath("scores", args[0]), map[string]int{"value": value}, &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&value, "value", 0, "New value, may be negative (required)")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newScoreDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <score-id>",
		Short: "Delete a score entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), apiPath("scores", args[0])); err != nil {
				return err
			}

			outputFor(cmd).PrintMessage("Score deleted")
			return nil
		},
	}
}
