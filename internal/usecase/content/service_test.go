package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	"github.com/lemur-ai/meeting-brain/internal/usecase/knowledge"
	"github.com/lemur-ai/meeting-brain/pkg/ai"
	"github.com/lemur-ai/meeting-brain/pkg/config"
)

type fakeRetriever struct {
	results []knowledge.SearchResult
	err     error
}

func (f *fakeRetriever) Query(_ context.Context, _ knowledge.QueryParams) ([]knowledge.SearchResult, error) {
	return f.results, f.err
}

type fakeCompleter struct {
	lastSystem string
	lastUser   string
	err        error
}

func (f *fakeCompleter) ChatCompletion(_ context.Context, system, user string, _ int, _ float64) (*ai.Completion, error) {
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Content: "  generated text  ", TokensUsed: 77}, nil
}

func newTestService(r Retriever, c Completer) *Service {
	cfg := &config.KnowledgeConfig{TopK: 5, SnippetBudget: 500}
	return NewService(r, c, cfg, zap.NewNop())
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"summary", "action_items", "follow_up_email", "email", "proposal", "scope_of_work"} {
		if _, err := ParseKind(valid); err != nil {
			t.Fatalf("expected %q to parse, got %v", valid, err)
		}
	}

	_, err := ParseKind("poem")
	require.Error(t, err)
	var appErr apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_UNKNOWN_CONTENT_KIND, appErr.Code)
}

func TestGenerate_RejectsUnknownKind(t *testing.T) {
	svc := newTestService(&fakeRetriever{}, &fakeCompleter{})

	_, err := svc.Generate(context.Background(), GenerateParams{
		Kind:   Kind("haiku"),
		Prompt: "write something",
	})
	require.Error(t, err)
}

func TestGenerate_WithContext(t *testing.T) {
	retriever := &fakeRetriever{results: []knowledge.SearchResult{
		{Text: "First snippet."},
		{Text: "Second snippet."},
		{Text: "Third snippet."},
		{Text: "Fourth snippet."},
		{Text: "Fifth snippet."},
	}}
	completer := &fakeCompleter{}
	svc := newTestService(retriever, completer)

	res, err := svc.Generate(context.Background(), GenerateParams{
		Kind:   KindSummary,
		Prompt: "summarize the project status",
		Scope:  knowledge.Scope{ClientID: uuid.New()},
	})
	require.NoError(t, err)

	assert.Equal(t, "generated text", res.Content, "content must be trimmed")
	assert.Equal(t, 77, res.TokensUsed)

	// Only the leading three snippets reach the prompt
	assert.Contains(t, completer.lastUser, "Context 1: First snippet.")
	assert.Contains(t, completer.lastUser, "Context 3: Third snippet.")
	assert.NotContains(t, completer.lastUser, "Fourth snippet.")
	assert.Contains(t, completer.lastSystem, "executive summaries")
}

func TestGenerate_EmptyKnowledgeBase(t *testing.T) {
	completer := &fakeCompleter{}
	svc := newTestService(&fakeRetriever{}, completer)

	res, err := svc.Generate(context.Background(), GenerateParams{
		Kind:   KindActionItems,
		Prompt: "extract action items",
		Scope:  knowledge.Scope{ClientID: uuid.New()},
	})
	require.NoError(t, err)
	assert.Empty(t, res.ContextUsed)
}

func TestGenerate_RetrievalFailureDegrades(t *testing.T) {
	completer := &fakeCompleter{}
	svc := newTestService(&fakeRetriever{err: errors.New("store offline")}, completer)

	res, err := svc.Generate(context.Background(), GenerateParams{
		Kind:   KindSummary,
		Prompt: "summarize",
		Scope:  knowledge.Scope{ClientID: uuid.New()},
	})
	require.NoError(t, err, "retrieval failure must not block generation")
	assert.Equal(t, "generated text", res.Content)
}

func TestGenerate_ContextUsedTruncated(t *testing.T) {
	long := strings.Repeat("z", 600)
	svc := newTestService(&fakeRetriever{results: []knowledge.SearchResult{{Text: long}}}, &fakeCompleter{})

	res, err := svc.Generate(context.Background(), GenerateParams{
		Kind:   KindSummary,
		Prompt: "summarize",
		Scope:  knowledge.Scope{ClientID: uuid.New()},
	})
	require.NoError(t, err)
	assert.Len(t, res.ContextUsed, 503, "500 chars plus ellipsis")
	assert.True(t, strings.HasSuffix(res.ContextUsed, "..."))
}

func TestGenerate_EmailGetsRecipientAndSender(t *testing.T) {
	completer := &fakeCompleter{}
	svc := newTestService(&fakeRetriever{}, completer)

	_, err := svc.Generate(context.Background(), GenerateParams{
		Kind:          KindEmail,
		Prompt:        "write an intro email",
		Scope:         knowledge.Scope{ClientID: uuid.New()},
		RecipientName: "Alex",
	})
	require.NoError(t, err)
	assert.Contains(t, completer.lastSystem, "Recipient: Alex")
	assert.Contains(t, completer.lastSystem, "Sender: Consultant")
}

func TestGenerate_CompletionFailure(t *testing.T) {
	svc := newTestService(&fakeRetriever{}, &fakeCompleter{err: errors.New("rate limited")})

	_, err := svc.Generate(context.Background(), GenerateParams{
		Kind:   KindSummary,
		Prompt: "summarize",
		Scope:  knowledge.Scope{ClientID: uuid.New()},
	})
	require.Error(t, err)
	var appErr apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_COMPLETION_FAILED, appErr.Code)
}
