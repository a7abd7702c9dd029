package ai

import (
	"fmt"
	"strings"

	"github.com/spec-kit/workaid/internal/domain"
	"github.com/spec-kit/workaid/internal/vector"
)

const routingInstruction = `You are the ticket routing assistant of an internal helpdesk.
Classify the ticket below into exactly one department:

- it: hardware, software, accounts, passwords, network, VPN, email, printers, devices
- hr: payroll, leave, benefits, onboarding, contracts, workplace conduct
- admin: facilities, office supplies, travel, parking, building access, everything else

Reply with a single word: it, hr or admin. No punctuation, no explanation.`

func buildRoutingPrompt(title, description string) string {
	return fmt.Sprintf("%s\n\nTitle: %s\nDescription: %s", routingInstruction, title, description)
}

const answerInstruction = `You are WorkAid, the helpdesk assistant of this company.
Answer the employee's question using ONLY the context below.
If the question is a greeting or small talk, respond briefly and conversationally.
If the context does not contain the answer, say you don't have that information
and suggest the employee files a support ticket. Never invent policy details.`

func buildAnswerPrompt(question, context string) string {
	return fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s", answerInstruction, context, question)
}

func buildFAQPrompt(subject string, cluster []domain.Ticket) string {
	var sb strings.Builder
	sb.WriteString("Several employees filed similar support tickets:\n\n")
	for _, ticket := range cluster {
		fmt.Fprintf(&sb, "- %s: %s\n", ticket.Title, ticket.Description)
	}
	fmt.Fprintf(&sb, "\nWrite a concise, step-by-step resolution an employee can follow for %q. ", subject)
	sb.WriteString("Plain text only, no headings.")
	return sb.String()
}

// joinDocuments concatenates the document field of every match into a
// single context block.
func joinDocuments(groups ...[]vector.SearchResult) string {
	var docs []string
	for _, group := range groups {
		for _, result := range group {
			if doc := strings.TrimSpace(result.Document); doc != "" {
				docs = append(docs, doc)
			}
		}
	}
	return strings.Join(docs, "\n\n")
}
