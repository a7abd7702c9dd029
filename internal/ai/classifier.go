package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/workaid/internal/domain"
	"github.com/spec-kit/workaid/internal/genai"
)

// Classifier routes a ticket's free text to a department. Any error is
// surfaced to the caller, who falls back to the submitter's home
// department.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (domain.Department, error)
}

// LLMClassifier classifies via a single constrained generation call.
type LLMClassifier struct {
	generator genai.Generator
}

// NewLLMClassifier builds the model-backed classifier.
func NewLLMClassifier(generator genai.Generator) *LLMClassifier {
	return &LLMClassifier{generator: generator}
}

// Classify asks the model for a one-word department and validates the
// reply against the fixed set. An out-of-set reply is an error.
func (c *LLMClassifier) Classify(ctx context.Context, title, description string) (domain.Department, error) {
	reply, err := c.generator.Generate(ctx, buildRoutingPrompt(title, description))
	if err != nil {
		return "", fmt.Errorf("classify ticket: %w", err)
	}

	line := reply
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	dept, err := domain.ParseDepartment(line)
	if err != nil {
		return "", fmt.Errorf("classifier returned out-of-set department: %w", err)
	}
	return dept, nil
}

// KeywordClassifier is a deterministic rule-based variant, used in
// tests and as an offline substitute for the model-backed classifier.
type KeywordClassifier struct{}

var keywordRules = []struct {
	dept     domain.Department
	keywords []string
}{
	{domain.DepartmentIT, []string{"vpn", "password", "laptop", "email", "network", "printer", "software", "login", "wifi"}},
	{domain.DepartmentHR, []string{"payroll", "salary", "leave", "vacation", "benefits", "onboarding", "contract"}},
	{domain.DepartmentAdmin, []string{"office", "desk", "parking", "travel", "supplies", "badge", "building"}},
}

// Classify matches lower-cased title and description against a fixed
// keyword table; no match is an error, mirroring the model-backed
// contract.
func (KeywordClassifier) Classify(_ context.Context, title, description string) (domain.Department, error) {
	text := strings.ToLower(title + " " + description)
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.dept, nil
			}
		}
	}
	return "", fmt.Errorf("no routing rule matched")
}
