package main

import (
	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

func init() {
	rootCmd.AddCommand(voteCmd, tallyCmd, canVoteCmd, proposalsCmd)
}

var voteCmd = &cobra.Command{
	Use:   "vote <address> <proposal-id> <yes|no>",
	Short: "Cast a vote with the address's current credential",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := application.Guard.CastVote(cmd.Context(), ports.VoteInput{
			Address:    args[0],
			ProposalID: args[1],
			Vote:       domain.VoteChoice(args[2]),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]string{"contentId": id})
	},
}

var tallyCmd = &cobra.Command{
	Use:   "tally <proposal-id>",
	Short: "Count the effective votes on a proposal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tally, err := application.Votes.Tally(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, tally)
	},
}

var canVoteCmd = &cobra.Command{
	Use:   "can-vote <address> <proposal-id>",
	Short: "Explain whether an address may vote on a proposal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eligibility, err := application.Guard.CanVote(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, eligibility)
	},
}

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List catalog proposals with their tallies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := application.Proposals.ListProposals(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, summaries)
	},
}
