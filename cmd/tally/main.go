package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/personhood/internal/app"
	"github.com/vncsmyrnk/personhood/internal/config"
	"github.com/vncsmyrnk/personhood/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var timeout time.Duration
	var proposalsFile string
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Job timeout")
	flag.StringVar(&proposalsFile, "proposals", os.Getenv("PROPOSALS_FILE"), "Proposal catalog YAML file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.ProposalsFile = proposalsFile
	logger := config.NewLogger(os.Stderr, cfg.LogLevel).With("module", "tally")

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	logger.Info("Starting vote tally job...", "event", "tally_started", "store", cfg.StoreDriver)

	summaries, err := services.NewSummaryService(a.Catalog, a.Votes).SummarizeAllVotes(ctx)
	if err != nil {
		logger.Error("Error tallying votes", "event", "tally_failed", "error", err.Error())
		os.Exit(1)
	}

	for _, s := range summaries {
		logger.Info("proposal tallied",
			"event", "tally_result",
			"proposal_id", s.ID,
			"title", s.Title,
			"yes", s.VoteCount.Yes,
			"no", s.VoteCount.No,
			"yes_pct", s.VoteCount.YesPercentage(),
		)
	}

	logger.Info("Vote tally completed successfully.", "event", "tally_completed", "proposals", len(summaries))
}
