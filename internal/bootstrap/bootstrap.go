// Package bootstrap wires the claim analysis pipeline from configuration.
// Both binaries share it so the server and the CLI analyze documents the same way.
package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"claimrisk/internal/analyzer"
	"claimrisk/internal/config"
	"claimrisk/internal/domain"
	"claimrisk/internal/extractor"
	"claimrisk/internal/port"
	"claimrisk/internal/service"
	"claimrisk/internal/storage/local"
	s3storage "claimrisk/internal/storage/s3"

	// Register model providers.
	_ "claimrisk/internal/analyzer/gemini"
	_ "claimrisk/internal/analyzer/openai"
	_ "claimrisk/internal/analyzer/vertex"
)

// NewDocumentStore returns the temp document store selected by cfg.Storage.Backend.
func NewDocumentStore(cfg *config.Config) (port.DocumentStore, error) {
	switch domain.StorageBackend(cfg.Storage.Backend) {
	case domain.StorageBackendLocal, "":
		return local.NewStore(cfg.Storage.TempDir)
	case domain.StorageBackendS3:
		return s3storage.NewStore(&cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// NewClaimService builds the full analysis pipeline.
func NewClaimService(cfg *config.Config, log logrus.FieldLogger) (service.ClaimService, error) {
	store, err := NewDocumentStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	model, err := analyzer.NewClient(&cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model client: %w", err)
	}

	log.WithFields(logrus.Fields{
		"provider": cfg.Model.Provider,
		"model":    model.Model(),
		"storage":  cfg.Storage.Backend,
	}).Info("bootstrap.NewClaimService: pipeline ready")

	return service.NewClaimService(store, extractor.NewPDFExtractor(), model, service.ClaimServiceConfig{
		ModelTimeout:   cfg.Model.Timeout(),
		MaxPromptChars: cfg.Model.MaxPromptChars,
		MaxFileBytes:   cfg.Upload.MaxBytes(),
		ModelID:        cfg.Model.ModelID(),
	}, log), nil
}
