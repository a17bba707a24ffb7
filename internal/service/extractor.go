package service

import (
	"context"

	"github.com/leadrelay/leadrelay/internal/domain"
	"github.com/leadrelay/leadrelay/internal/logger"
)

// Extractor turns free text into a structured lead record.
type Extractor interface {
	Extract(ctx context.Context, text string) (*domain.LeadInfo, error)
}

// LeadExtractor is the extractor used by the webhook pipeline. It tries the
// inference-backed primary strategy first and falls back to deterministic
// pattern matching on any failure. Extract never returns an error: a failed
// primary call is a local recovery, not a caller-visible condition.
type LeadExtractor struct {
	primary  Extractor
	fallback Extractor
}

// NewLeadExtractor creates the pipeline extractor.
// Parameters:
//   - cfg: inference configuration; nil or disabled means fallback-only.
//
// Returns:
//   - *LeadExtractor: initialized extractor.
func NewLeadExtractor(cfg *LLMExtractorConfig) *LeadExtractor {
	e := &LeadExtractor{fallback: NewRegexExtractor()}
	if cfg != nil && cfg.Enabled {
		e.primary = NewLLMExtractor(cfg)
	}
	return e
}

// Extract returns a lead record with all three fields populated, using
// sentinel values where nothing was found. The error result is always nil.
func (e *LeadExtractor) Extract(ctx context.Context, text string) (*domain.LeadInfo, error) {
	if e.primary != nil {
		info, err := e.primary.Extract(ctx, text)
		if err == nil {
			logger.CtxDebug(ctx, "Lead extracted: strategy=llm")
			return info, nil
		}
		logger.CtxWarn(ctx, "Primary extraction failed, falling back to pattern matching: error=%v", err)
	}

	info, _ := e.fallback.Extract(ctx, text)
	logger.CtxDebug(ctx, "Lead extracted: strategy=regex")
	return info, nil
}
