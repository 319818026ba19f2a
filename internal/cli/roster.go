package cli

import (
	"net/http"

	"github.com/spf13/cobra"
)

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Game roster commands",
	}

	cmd.AddCommand(newRosterAddCmd())
	cmd.AddCommand(newRosterScoreCmd())
	cmd.AddCommand(newRosterRemoveCmd())

	return cmd
}

func newRosterAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <game-id> <name>",
		Short: "Add a named entry to a game's roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game

			if err := client.Post(cmd.Context(), apiPath("games", args[0], "roster"), map[string]string{"name": args[1]}, &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newRosterScoreCmd() *cobra.Command {
	var score int

	cmd := &cobra.Command{
		Use:   "score <game-id> <entry-id> --score <n>",
		Short: "Set the score of a roster entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game

			path := apiPath("games", args[0], "roster", args[1], "score")
			if err := client.Put(cmd.Context(), path, map[string]int{"score": score}, &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "New score, may be negative (required)")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newRosterRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <game-id> <entry-id>",
		Short: "Remove an entry from a game's roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game

			path := apiPath("games", args[0], "roster", args[1])
			if err := client.Do(cmd.Context(), http.MethodDelete, path, nil, &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}
}
