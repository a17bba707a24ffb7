package service

import (
	"context"
	"regexp"

	"github.com/leadrelay/leadrelay/internal/domain"
)

// Deterministic extraction patterns. The name pattern requires a capitalized
// two-or-more-word name after a self-introduction phrase; the company pattern
// captures capitalized word runs after common prepositions.
var (
	nameRegex    = regexp.MustCompile(`(?:I'm|I am|name is|this is)\s+([A-Z][a-z]+(?: [A-Z][a-z]+)+)`)
	emailRegex   = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	companyRegex = regexp.MustCompile(`(?:at|from|with|of|founder of|co-founder of)\s+([A-Z][a-zA-Z0-9]+(?:\s+[A-Z][a-zA-Z0-9]+)*)`)
)

// RegexExtractor is the deterministic fallback strategy. It cannot fail; any
// field it cannot recognize gets its sentinel value.
type RegexExtractor struct{}

// NewRegexExtractor creates a RegexExtractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Extract applies the patterns to the text. The error result is always nil.
func (e *RegexExtractor) Extract(_ context.Context, text string) (*domain.LeadInfo, error) {
	info := &domain.LeadInfo{
		Name:    domain.UnknownName,
		Email:   domain.UnknownEmail,
		Company: domain.UnknownCompany,
	}

	if m := nameRegex.FindStringSubmatch(text); m != nil {
		info.Name = m[1]
	}
	if m := emailRegex.FindString(text); m != "" {
		info.Email = m
	}
	if m := companyRegex.FindStringSubmatch(text); m != nil {
		info.Company = m[1]
	}

	return info, nil
}
