package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"claimrisk/internal/analyzer"
	"claimrisk/internal/domain"
	"claimrisk/internal/extractor"
	"claimrisk/internal/port"
)

// cleanupTimeout bounds the temp-file delete, which runs detached from the
// request context so a cancelled request still cleans up.
const cleanupTimeout = 10 * time.Second

// State is a step of the analysis pipeline.
type State string

const (
	StateReceived  State = "RECEIVED"
	StateValidated State = "VALIDATED"
	StateStored    State = "STORED"
	StateExtracted State = "EXTRACTED"
	StateAnalyzed  State = "ANALYZED"
	StateResponded State = "RESPONDED"
	StateFailed    State = "FAILED"
)

// AnalyzeInput is the DTO for a claim analysis request.
type AnalyzeInput struct {
	RequestID string
	Filename  string
	Body      io.Reader
	Size      int64
}

// ClaimServiceConfig tunes the analysis pipeline.
type ClaimServiceConfig struct {
	ModelTimeout   time.Duration
	MaxPromptChars int
	MaxFileBytes   int64
	ModelID        string
}

// ClaimService defines the claim analysis contract.
type ClaimService interface {
	// Analyze runs store, extract, analyze and delete for one document.
	// A returned error is an internal failure; content problems and model
	// outages are reported inside the result.
	Analyze(ctx context.Context, input AnalyzeInput) (*domain.AnalysisResult, error)
}

type claimService struct {
	store     port.DocumentStore
	extractor port.TextExtractor
	model     port.ModelClient
	cfg       ClaimServiceConfig
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewClaimService creates a new ClaimService implementation.
func NewClaimService(
	store port.DocumentStore,
	extractor port.TextExtractor,
	model port.ModelClient,
	cfg ClaimServiceConfig,
	log logrus.FieldLogger,
) ClaimService {
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 30 * time.Second
	}
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = analyzer.DefaultMaxPromptChars
	}
	if cfg.ModelID == "" {
		cfg.ModelID = model.Model()
	}
	return &claimService{
		store:     store,
		extractor: extractor,
		model:     model,
		cfg:       cfg,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ValidateUpload checks an upload before anything is stored. maxBytes <= 0
// disables the size check.
func ValidateUpload(filename string, size, maxBytes int64) error {
	if strings.TrimSpace(filename) == "" {
		return domain.ErrEmptyFilename
	}
	if !strings.EqualFold(filepath.Ext(filename), domain.AllowedExtension) {
		return domain.ErrUnsupportedFileType
	}
	if maxBytes > 0 && size > maxBytes {
		return domain.ErrFileTooLarge
	}
	return nil
}

func (s *claimService) Analyze(ctx context.Context, input AnalyzeInput) (result *domain.AnalysisResult, err error) {
	log := s.log.WithFields(logrus.Fields{
		"request_id": input.RequestID,
		"filename":   input.Filename,
	})
	state := StateReceived
	transition := func(next State) {
		log.WithField("from", state).WithField("to", next).Debug("claimService.Analyze: state transition")
		state = next
	}

	if err := ValidateUpload(input.Filename, input.Size, s.cfg.MaxFileBytes); err != nil {
		transition(StateFailed)
		return nil, err
	}
	transition(StateValidated)

	data, err := s.readBody(input.Body)
	if err != nil {
		transition(StateFailed)
		return nil, err
	}
	if !extractor.LooksLikePDF(data) {
		log.Warn("claimService.Analyze: upload has a .pdf name but no PDF header")
	}

	stored, err := s.store.Put(ctx, domain.ClaimDocument{Filename: input.Filename, Data: data})
	if err != nil {
		transition(StateFailed)
		log.WithError(err).Error("claimService.Analyze: staging document failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailed, err)
	}
	transition(StateStored)
	log = log.WithField("key", stored.Key)

	// Deferred in this order, the recover runs before the delete, so a
	// panic anywhere below still releases the staged file.
	defer s.release(ctx, stored, log)
	defer func() {
		if r := recover(); r != nil {
			transition(StateFailed)
			log.WithField("panic", r).Error("claimService.Analyze: recovered from panic")
			result, err = nil, fmt.Errorf("%w: panic: %v", domain.ErrInternal, r)
		}
	}()

	staged, err := s.store.Read(ctx, stored)
	if err != nil {
		transition(StateFailed)
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailed, err)
	}

	text, err := s.extractor.Extract(ctx, staged)
	if err == nil && strings.TrimSpace(text) == "" {
		err = &extractor.ExtractionError{Err: extractor.ErrNoText}
	}
	if err != nil {
		var extErr *extractor.ExtractionError
		if errors.As(err, &extErr) {
			transition(StateResponded)
			log.WithError(err).Warn("claimService.Analyze: PDF extraction failed")
			return domain.NewErrorResult(domain.ErrorKindExtractionFailed, "PDF processing failed", extErr.Detail()), nil
		}
		transition(StateFailed)
		return nil, fmt.Errorf("%w: extracting text: %v", domain.ErrInternal, err)
	}
	transition(StateExtracted)

	verdict, modelUsed, modelErr := s.assess(ctx, text, log)
	transition(StateAnalyzed)

	result = domain.NewAnalysisResult(verdict, stored.Filename, s.now(), modelUsed)
	if modelErr != nil {
		result.Error = "Model request failed"
		result.ErrorKind = domain.ErrorKindModelUnavailable
	}

	log.WithFields(logrus.Fields{
		"recommendation": result.Recommendation,
		"risk_score":     result.RiskScore,
		"model":          result.Model,
	}).Info("claimService.Analyze: analysis complete")
	transition(StateResponded)
	return result, nil
}

// assess prompts the model and normalizes its reply. Transport failures
// degrade to analyzer.UnavailableVerdict; they are returned only so the
// caller can flag the envelope.
func (s *claimService) assess(ctx context.Context, text string, log logrus.FieldLogger) (domain.Verdict, string, error) {
	prompt := analyzer.BuildClaimPrompt(text, s.cfg.MaxPromptChars)

	mctx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
	defer cancel()

	started := time.Now()
	out, err := s.model.Generate(mctx, port.GenerateInput{
		Prompt: prompt,
		Schema: analyzer.VerdictSchema(),
	})
	if err == nil && out == nil {
		err = analyzer.NewTransportError(s.cfg.ModelID, 0, errors.New("empty model response"))
	}
	if err != nil {
		entry := log.WithError(err).WithField("elapsed", time.Since(started))
		var tErr *analyzer.TransportError
		if errors.As(err, &tErr) && tErr.RateLimited() {
			entry = entry.WithField("retry_after", tErr.RetryAfter)
		}
		entry.Error("claimService.Analyze: model call failed, using fallback verdict")
		return analyzer.UnavailableVerdict(), s.cfg.ModelID, err
	}

	raw := out.Text
	log.WithField("reply", analyzer.Truncate(raw, 100)).Info("claimService.Analyze: received model reply")

	if schemaErr := analyzer.ValidateVerdictJSON(analyzer.StripCodeFences(raw)); schemaErr != nil {
		log.WithError(schemaErr).WithField("reply", analyzer.Truncate(raw, 500)).
			Warn("claimService.Analyze: model reply does not match verdict schema")
	}
	return analyzer.Normalize(raw), s.cfg.ModelID, nil
}

func (s *claimService) readBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, domain.ErrMissingFile
	}
	if s.cfg.MaxFileBytes <= 0 {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("%w: reading upload: %v", domain.ErrInternal, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", domain.ErrInternal, err)
	}
	if int64(len(data)) > s.cfg.MaxFileBytes {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

// release deletes the staged document. Failures are logged and swallowed.
func (s *claimService) release(ctx context.Context, stored *domain.StoredDocument, log logrus.FieldLogger) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := s.store.Delete(cctx, stored); err != nil {
		log.WithError(err).Warn("claimService.Analyze: could not remove temp document")
		return
	}
	log.Debug("claimService.Analyze: cleaned up temp document")
}
