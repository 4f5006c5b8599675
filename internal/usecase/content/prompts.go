package content

import (
	apperrors "github.com/lemur-ai/meeting-brain/errors"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
)

// Kind identifies what the generator produces. The set is closed: anything
// else is rejected before a provider call is made.
type Kind string

const (
	KindSummary     Kind = "summary"
	KindActionItems Kind = "action_items"
	KindFollowUp    Kind = "follow_up_email"
	KindEmail       Kind = "email"
	KindProposal    Kind = "proposal"
	KindScopeOfWork Kind = "scope_of_work"
)

// ParseKind validates a kind string
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSummary, KindActionItems, KindFollowUp, KindEmail, KindProposal, KindScopeOfWork:
		return Kind(s), nil
	default:
		return "", apperrors.ErrUnknownContentKind(s)
	}
}

// OutputType maps a kind to its persistence type
func (k Kind) OutputType() entities.OutputType {
	return entities.OutputType(k)
}

var systemInstructions = map[Kind]string{
	KindEmail: `You are an AI assistant helping to write professional emails for an IT consulting firm.
Use the provided context from the company's knowledge base to write personalized, relevant emails.
Include specific details from past projects and successful patterns when relevant.`,

	KindFollowUp: `You are an AI assistant writing follow-up emails after client meetings for an IT consulting firm.
Use the provided context to summarize key points and next steps for the attendees.
Keep the tone professional and reference relevant past work when it helps.`,

	KindSummary: `You are an AI assistant creating executive summaries for an IT consulting firm.
Use the provided context to create comprehensive, actionable summaries.
Focus on key insights, metrics, and business outcomes.`,

	KindProposal: `You are an AI assistant creating project proposals for an IT consulting firm.
Use the provided context from past successful projects to create compelling proposals.
Include technical approach, timeline estimates, and proven methodologies.`,

	KindScopeOfWork: `You are an AI assistant creating scope of work documents for IT projects.
Use the provided context to define clear deliverables, milestones, and acceptance criteria.
Reference similar successful projects and proven approaches.`,

	KindActionItems: `You are an AI assistant extracting and prioritizing action items.
Use the provided context to create specific, actionable tasks with clear ownership and deadlines.`,
}

// SystemInstruction returns the per-kind system prompt
func (k Kind) SystemInstruction() string {
	if instruction, ok := systemInstructions[k]; ok {
		return instruction
	}
	return systemInstructions[KindSummary]
}
