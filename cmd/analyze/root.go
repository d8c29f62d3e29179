package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"claimrisk/internal/bootstrap"
	"claimrisk/internal/config"
	"claimrisk/internal/handler"
	"claimrisk/internal/logging"
	"claimrisk/internal/service"
)

// errRejected marks a run that printed a non-success envelope.
var errRejected = errors.New("claim analysis did not produce a verdict")

type options struct {
	provider string
	model    string
	timeout  time.Duration
	pretty   bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "analyze <claim.pdf>",
		Short: "Assess the risk of a PDF insurance claim",
		Long: `Analyze extracts the text of a local PDF claim document, asks the configured
model for a risk assessment and prints the resulting JSON envelope.

Configuration is read from CLAIMRISK_* environment variables and an optional .env file.

Example:
  analyze claim.pdf
  analyze claim.pdf --provider openai --model gpt-4o-mini --pretty`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "", "model provider (gemini, vertex, openai); overrides CLAIMRISK_MODEL_PROVIDER")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name; overrides CLAIMRISK_MODEL_DEFAULT_MODEL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "model call timeout; overrides CLAIMRISK_MODEL_TIMEOUT_SECS")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline steps to stderr")
	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, opts *options) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, opts)

	logger := logging.Discard()
	if opts.verbose {
		logger = logging.NewWithOutput(cfg.Log, cmd.ErrOrStderr())
	}

	claimSvc, err := bootstrap.NewClaimService(cfg, logger)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Model.Timeout()+time.Minute)
	defer cancel()

	result, err := claimSvc.Analyze(ctx, service.AnalyzeInput{
		RequestID: "cli",
		Filename:  filepath.Base(path),
		Body:      f,
		Size:      info.Size(),
	})
	rejected := err != nil
	if err != nil {
		_, result = handler.MapDomainError(err)
		logger.WithError(err).Error("analyze: pipeline failed")
	} else if result.ErrorKind != "" && result.ProcessedAt == nil {
		rejected = true
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	if rejected {
		return errRejected
	}
	return nil
}

func applyOverrides(cfg *config.Config, opts *options) {
	if opts.provider != "" {
		cfg.Model.Provider = opts.provider
	}
	if opts.model != "" {
		cfg.Model.DefaultModel = opts.model
	}
	if opts.timeout > 0 {
		cfg.Model.TimeoutSecs = int(opts.timeout.Round(time.Second) / time.Second)
		if cfg.Model.TimeoutSecs == 0 {
			cfg.Model.TimeoutSecs = 1
		}
	}
	// The CLI always stages documents in local temp files.
	cfg.Storage.Backend = "local"
}
