package service

import (
	"context"
	"testing"

	"github.com/leadrelay/leadrelay/internal/domain"
)

func TestRegexExtractor_Extract(t *testing.T) {
	extractor := NewRegexExtractor()

	tests := []struct {
		name            string
		text            string
		expectedName    string
		expectedEmail   string
		expectedCompany string
	}{
		{
			name:            "full introduction",
			text:            "Hello, my name is Jane Doe and I work at Acme Corp. Reach me at jane@acme.com",
			expectedName:    "Jane Doe",
			expectedEmail:   "jane@acme.com",
			expectedCompany: "Acme Corp",
		},
		{
			name:            "contracted introduction",
			text:            "Hi, I'm John Smith from Globex Industries, contact john.smith@globex.io",
			expectedName:    "John Smith",
			expectedEmail:   "john.smith@globex.io",
			expectedCompany: "Globex Industries",
		},
		{
			name:            "founder phrasing",
			text:            "this is Alan Turing of Bletchley Park",
			expectedName:    "Alan Turing",
			expectedEmail:   domain.UnknownEmail,
			expectedCompany: "Bletchley Park",
		},
		{
			name:            "email only",
			text:            "please send pricing to bob.smith+leads@example.co.uk thanks",
			expectedName:    domain.UnknownName,
			expectedEmail:   "bob.smith+leads@example.co.uk",
			expectedCompany: domain.UnknownCompany,
		},
		{
			name:            "lowercase name not matched",
			text:            "i'm jane doe and i have no shift key",
			expectedName:    domain.UnknownName,
			expectedEmail:   domain.UnknownEmail,
			expectedCompany: domain.UnknownCompany,
		},
		{
			name:            "empty message",
			text:            "",
			expectedName:    domain.UnknownName,
			expectedEmail:   domain.UnknownEmail,
			expectedCompany: domain.UnknownCompany,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := extractor.Extract(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if info.Name != tt.expectedName {
				t.Errorf("expected name %q, got %q", tt.expectedName, info.Name)
			}
			if info.Email != tt.expectedEmail {
				t.Errorf("expected email %q, got %q", tt.expectedEmail, info.Email)
			}
			if info.Company != tt.expectedCompany {
				t.Errorf("expected company %q, got %q", tt.expectedCompany, info.Company)
			}
		})
	}
}

func TestRegexExtractor_AlwaysPopulatesAllFields(t *testing.T) {
	extractor := NewRegexExtractor()

	inputs := []string{
		"",
		"no lead data here at all",
		"I'm Jane Doe",
		"jane@acme.com",
		"at Acme Corp",
	}

	for _, text := range inputs {
		info, err := extractor.Extract(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", text, err)
		}
		if info.Name == "" || info.Email == "" || info.Company == "" {
			t.Errorf("expected all fields populated for %q, got %+v", text, info)
		}
	}
}
