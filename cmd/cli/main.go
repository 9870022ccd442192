// Command cli runs the insight pipeline once over a local transactions file.
//
// Usage:
//
//	cli [-local] [-reload] transactions.json
//
// The file holds a JSON array of transactions: {id, description, amount,
// category, date}. Amounts are signed: positive income, negative expense.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dvloznov/insight-service/internal/config"
	"github.com/dvloznov/insight-service/internal/domain"
	"github.com/dvloznov/insight-service/internal/insight"
	"github.com/dvloznov/insight-service/internal/insight/cache"
	"github.com/dvloznov/insight-service/internal/llm"
	"github.com/dvloznov/insight-service/internal/logger"
)

func main() {
	_ = godotenv.Load()

	var (
		local  = flag.Bool("local", false, "skip the external backend and use the local rule engine")
		reload = flag.Bool("reload", false, "bypass any cached result")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: cli [-local] [-reload] <transactions.json>")
		os.Exit(1)
	}

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	txs, err := loadTransactions(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Str("file", flag.Arg(0)).Msg("Failed to load transactions")
	}

	var generator insight.Generator
	if !*local {
		generator = llm.NewOllamaClient(llm.OllamaConfig{
			Endpoint:        cfg.OllamaEndpoint,
			Model:           cfg.OllamaModel,
			ProbeTimeout:    cfg.ProbeTimeout,
			GenerateTimeout: cfg.GenerateTimeout,
			RetryDelay:      cfg.RetryDelay,
			Logger:          log,
		})
	}

	svc := insight.NewService(insight.ServiceConfig{
		Cache:      cache.NewMemoryStore(cfg.CacheTTL),
		Generator:  generator,
		ForceLocal: cfg.ForceLocal || *local,
		Logger:     log,
	})

	envelope, err := svc.Process(context.Background(), txs, insight.Options{Reload: *reload})
	if err != nil {
		log.Fatal().Err(err).Msg("Insight pipeline failed")
	}

	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode envelope")
	}
	fmt.Println(string(out))
}

func loadTransactions(path string) ([]domain.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var txs []domain.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return txs, nil
}
