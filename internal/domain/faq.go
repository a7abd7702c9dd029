package domain

import "time"

// FAQ is a knowledge base entry, either agent-authored or synthesized
// from a cluster of similar tickets.
type FAQ struct {
	ID          string
	Question    string
	Answer      string
	Department  Department
	CreatedByID *string
	// IsSuggested marks AI-synthesized entries pending agent acceptance.
	IsSuggested bool
	// SourceTicketIDs back-references the tickets that triggered a suggestion.
	SourceTicketIDs []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SearchText is the document text indexed into the vector store.
func (f *FAQ) SearchText() string {
	return f.Question + "\n" + f.Answer
}
