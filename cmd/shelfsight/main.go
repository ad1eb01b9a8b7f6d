package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/engine"
	"github.com/shelfsight/shelfsight/internal/httpapi"
	"github.com/shelfsight/shelfsight/internal/snapshot"
	"github.com/shelfsight/shelfsight/internal/store"
)

const (
	appName = "shelfsight"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Deterministic Q&A over monthly competitive-market snapshots",
		Version: version,
	}
	rootCmd.PersistentFlags().String("thresholds", "", "path to thresholds YAML (defaults built in)")
	rootCmd.PersistentFlags().String("aliases", "", "path to alias/pins YAML (defaults built in)")
	rootCmd.PersistentFlags().String("snapshots", "./data/snapshots", "directory of per-category snapshot JSON files")
	rootCmd.PersistentFlags().String("redis", "", "redis address for snapshot blobs (overrides --snapshots)")
	rootCmd.PersistentFlags().String("postgres", "", "postgres DSN for the snapshots table (overrides --redis)")

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question against a category month",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}
	askCmd.Flags().String("category", "", "category id")
	askCmd.Flags().String("month", "", "snapshot month (YYYY-MM)")
	askCmd.Flags().String("brand", "", "caller's target brand context")
	_ = askCmd.MarkFlagRequired("category")
	_ = askCmd.MarkFlagRequired("month")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the /ask HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("listen", ":8084", "listen address")
	serveCmd.Flags().Float64("rps", 10, "requests per second allowed on /ask")
	serveCmd.Flags().Int("burst", 20, "rate limit burst")

	rootCmd.AddCommand(askCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func buildEngine(flags *pflag.FlagSet) (*engine.Engine, error) {
	thresholds := config.DefaultThresholds()
	if path, _ := flags.GetString("thresholds"); path != "" {
		var err error
		thresholds, err = config.LoadThresholds(path)
		if err != nil {
			return nil, err
		}
	}
	aliasCfg := config.DefaultAliasConfig()
	if path, _ := flags.GetString("aliases"); path != "" {
		var err error
		aliasCfg, err = config.LoadAliasConfig(path)
		if err != nil {
			return nil, err
		}
	}

	var provider snapshot.Provider
	if dsn, _ := flags.GetString("postgres"); dsn != "" {
		db, err := store.Connect(context.Background(), dsn)
		if err != nil {
			return nil, err
		}
		provider = store.NewBreakerProvider("postgres", store.NewPostgresProvider(db))
	} else if addr, _ := flags.GetString("redis"); addr != "" {
		provider = store.NewBreakerProvider("redis", store.NewRedisProvider(store.NewRedisClient(addr)))
	} else {
		dir, _ := flags.GetString("snapshots")
		provider = snapshot.NewFileProvider(dir)
	}

	return engine.New(engine.Options{
		Provider:   provider,
		Thresholds: thresholds,
		AliasCfg:   aliasCfg,
	}), nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(cmd.Flags())
	if err != nil {
		return err
	}

	category, _ := cmd.Flags().GetString("category")
	month, _ := cmd.Flags().GetString("month")
	brand, _ := cmd.Flags().GetString("brand")
	date, err := time.Parse("2006-01", month)
	if err != nil {
		return fmt.Errorf("--month must be YYYY-MM: %w", err)
	}

	resp, err := eng.Ask(context.Background(), engine.Request{
		Message:      args[0],
		CategoryID:   category,
		SnapshotDate: date,
		TargetBrand:  brand,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(cmd.Flags())
	if err != nil {
		return err
	}

	listen, _ := cmd.Flags().GetString("listen")
	rps, _ := cmd.Flags().GetFloat64("rps")
	burst, _ := cmd.Flags().GetInt("burst")

	server := httpapi.NewServer(eng, rps, burst)
	log.Info().Str("listen", listen).Msg("Serving ask API")
	return http.ListenAndServe(listen, server.Router())
}
