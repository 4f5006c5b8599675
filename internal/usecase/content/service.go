package content

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	"github.com/lemur-ai/meeting-brain/internal/usecase/knowledge"
	"github.com/lemur-ai/meeting-brain/pkg/ai"
	"github.com/lemur-ai/meeting-brain/pkg/config"
)

// Completion parameters shared by every kind
const (
	maxCompletionTokens   = 1500
	completionTemperature = 0.7

	// snippetsInPrompt bounds how many retrieved snippets make it into the
	// prompt context block
	snippetsInPrompt = 3
)

// Completer produces chat completions
type Completer interface {
	ChatCompletion(ctx context.Context, system, user string, maxTokens int, temperature float64) (*ai.Completion, error)
}

// Retriever searches the knowledge base for context snippets
type Retriever interface {
	Query(ctx context.Context, params knowledge.QueryParams) ([]knowledge.SearchResult, error)
}

// GenerateParams describes one generation request
type GenerateParams struct {
	Kind                   Kind
	Prompt                 string
	Scope                  knowledge.Scope
	AdditionalInstructions string
	RecipientName          string
	SenderName             string
}

// GenerateResult holds the generated content and provenance
type GenerateResult struct {
	Content     string `json:"content"`
	ContextUsed string `json:"context_used"`
	TokensUsed  int    `json:"tokens_used"`
}

// Service generates artifacts grounded on the client's knowledge base
type Service struct {
	retriever Retriever
	completer Completer
	cfg       *config.KnowledgeConfig
	logger    *zap.Logger
}

// NewService constructs a content service
func NewService(retriever Retriever, completer Completer, cfg *config.KnowledgeConfig, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		completer: completer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate retrieves scoped context and produces one artifact. An empty
// knowledge base is not an error: generation proceeds without context.
func (s *Service) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	if _, err := ParseKind(string(params.Kind)); err != nil {
		return nil, err
	}

	results, err := s.retriever.Query(ctx, knowledge.QueryParams{
		Scope: params.Scope,
		Query: params.Prompt,
		TopK:  s.cfg.TopK,
	})
	if err != nil {
		// Retrieval failure degrades to context-free generation
		s.logger.Warn("⚠️ Context retrieval failed, generating without context",
			zap.String("kind", string(params.Kind)),
			zap.Error(err))
		results = nil
	}

	contextBlock := buildContextBlock(results)

	system := params.Kind.SystemInstruction()
	if params.Kind == KindEmail || params.Kind == KindFollowUp {
		recipient := params.RecipientName
		if recipient == "" {
			recipient = "Client"
		}
		sender := params.SenderName
		if sender == "" {
			sender = "Consultant"
		}
		system += fmt.Sprintf("\nRecipient: %s\nSender: %s", recipient, sender)
	}
	if params.AdditionalInstructions != "" {
		system += "\n\nAdditional Instructions: " + params.AdditionalInstructions
	}

	user := fmt.Sprintf("Context from company knowledge base:\n%s\n\nRequest: %s", contextBlock, params.Prompt)

	completion, err := s.completer.ChatCompletion(ctx, system, user, maxCompletionTokens, completionTemperature)
	if err != nil {
		return nil, apperrors.ErrCompletionFailed(err)
	}

	return &GenerateResult{
		Content:     strings.TrimSpace(completion.Content),
		ContextUsed: truncateContext(contextBlock, s.cfg.SnippetBudget),
		TokensUsed:  completion.TokensUsed,
	}, nil
}

// buildContextBlock joins the leading snippets into a numbered context block
func buildContextBlock(results []knowledge.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	n := len(results)
	if n > snippetsInPrompt {
		n = snippetsInPrompt
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("Context %d: %s", i+1, results[i].Text)
	}
	return strings.Join(parts, "\n\n")
}

// truncateContext bounds the recorded context to the snippet budget
func truncateContext(context string, budget int) string {
	if budget <= 0 || len(context) <= budget {
		return context
	}
	return context[:budget] + "..."
}
