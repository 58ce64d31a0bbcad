package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/motosearch/internal/config"
	"github.com/aleister1102/motosearch/internal/datastore"
	"github.com/aleister1102/motosearch/internal/extractor"
	"github.com/aleister1102/motosearch/internal/fetcher"
	"github.com/aleister1102/motosearch/internal/logger"
	"github.com/aleister1102/motosearch/internal/orchestrator"

	"github.com/rs/zerolog"
)

func main() {
	flags, err := ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(2)
	}
	os.Exit(run(flags, os.Stdout))
}

func run(flags AppFlags, stdout io.Writer) int {
	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, zerolog.Nop())
	if err != nil {
		log.Printf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
		return 1
	}
	if err := config.ValidateConfig(gCfg); err != nil {
		log.Printf("[FATAL] Main: %v", err)
		return 1
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Printf("[FATAL] Main: Could not initialize logger: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credentialStore, err := datastore.NewSQLiteCredentialStore(gCfg.CredentialConfig, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to open credential store")
		return 1
	}
	defer credentialStore.Close()

	service := newSearchService(gCfg, credentialStore, zLogger)
	defer service.Close()

	switch flags.Action() {
	case ActionValidateKey:
		valid := service.ValidateAPIKey(ctx, flags.ValidateKey)
		writeJSON(stdout, map[string]bool{"valid": valid}, zLogger)
		if !valid {
			return 1
		}
		return 0

	case ActionSetKey:
		if !service.ValidateAPIKey(ctx, flags.SetKey) {
			writeJSON(stdout, map[string]any{"success": false, "error": "API key rejected by the fetch service"}, zLogger)
			return 1
		}
		if err := service.SaveAPIKey(ctx, flags.SetKey); err != nil {
			writeJSON(stdout, map[string]any{"success": false, "error": err.Error()}, zLogger)
			return 1
		}
		zLogger.Info().Msg("API key stored")
		writeJSON(stdout, map[string]bool{"success": true}, zLogger)
		return 0

	default:
		response := service.Search(ctx, flags.Filters)
		writeJSON(stdout, response, zLogger)
		if !response.Success {
			return 1
		}
		return 0
	}
}

func newSearchService(gCfg *config.GlobalConfig, credentials datastore.CredentialStore, zLogger zerolog.Logger) *orchestrator.SearchService {
	newFetcher := func(token string) (fetcher.Fetcher, error) {
		return fetcher.NewFetcher(gCfg.FetcherConfig, token, zLogger)
	}
	searchOrchestrator := orchestrator.NewOrchestrator(
		extractor.NewListingExtractor(zLogger),
		gCfg.SearchConfig.MaxResults,
		zLogger,
	)
	if gCfg.LogConfig.SessionLogs && gCfg.LogConfig.LogFile != "" {
		searchOrchestrator.WithSessionLogger(func(sessionID string) (zerolog.Logger, error) {
			return logger.NewWithSessionID(gCfg.LogConfig, sessionID)
		})
	}
	service := orchestrator.NewSearchService(credentials, newFetcher, searchOrchestrator, zLogger)

	if !gCfg.StorageConfig.ArchiveEnabled {
		return service
	}
	archive, err := datastore.NewListingArchive(gCfg.StorageConfig, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to initialize listing archive, searches will not be archived")
		return service
	}
	return service.WithArchiver(archive)
}

func writeJSON(w io.Writer, v any, zLogger zerolog.Logger) {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		zLogger.Error().Err(err).Msg("Failed to write JSON output")
	}
}
