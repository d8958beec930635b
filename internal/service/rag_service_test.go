package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerag/internal/assembler"
	"careerag/internal/classifier"
	"careerag/internal/domain"
	"careerag/internal/generator"
	"careerag/internal/session"
	"careerag/internal/vectorstore"
)

type fakeIndex struct {
	chunks       []domain.Chunk
	retrieveK    int
	retrievedAll bool
}

func (f *fakeIndex) Retrieve(_ context.Context, _ string, k int, _ *vectorstore.Filter) ([]domain.SearchResult, error) {
	f.retrieveK = k
	out := make([]domain.SearchResult, len(f.chunks))
	for i, c := range f.chunks {
		out[i] = domain.SearchResult{Chunk: c, Score: 1}
	}
	return out, nil
}

func (f *fakeIndex) RetrieveAll(_ context.Context) ([]domain.Chunk, error) {
	f.retrievedAll = true
	return f.chunks, nil
}

type fakeGenerator struct {
	answer     string
	deltas     []string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, _ string, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) GenerateStream(_ context.Context, _ string, prompt string, sink generator.Sink) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	var full string
	for _, d := range f.deltas {
		if err := sink(d); err != nil {
			return "", err
		}
		full += d
	}
	return full, nil
}

func testChunk(id string, docType domain.DocType, document string) domain.Chunk {
	return domain.Chunk{
		ID:      id,
		Content: "content of " + id,
		Meta:    domain.ChunkMetadata{Type: docType, Document: document},
	}
}

func newService(ix *fakeIndex, gen *fakeGenerator) *RAGService {
	return NewRAGService(ix, classifier.New(), session.New(5), assembler.New(5), gen, 10, nil)
}

func TestAsk_SpecificQuestion(t *testing.T) {
	ix := &fakeIndex{chunks: []domain.Chunk{
		testChunk("r1", domain.DocTypeResume, "resume.txt"),
		testChunk("j1", domain.DocTypeJobPosting, "acme.txt"),
	}}
	gen := &fakeGenerator{answer: "You are missing Kubernetes."}
	svc := newService(ix, gen)

	answer, err := svc.Ask(context.Background(), "What skills am I missing for Job #1?")
	require.NoError(t, err)
	assert.Equal(t, "You are missing Kubernetes.", answer.Text)
	assert.Equal(t, 10, ix.retrieveK)
	assert.False(t, ix.retrievedAll)
	assert.Contains(t, gen.lastPrompt, "content of r1")
	assert.Contains(t, gen.lastPrompt, "What skills am I missing for Job #1?")
}

func TestAsk_ComparisonRetrievesEverything(t *testing.T) {
	ix := &fakeIndex{chunks: []domain.Chunk{
		testChunk("r1", domain.DocTypeResume, "resume.txt"),
		testChunk("j1", domain.DocTypeJobPosting, "acme.txt"),
		testChunk("j2", domain.DocTypeJobPosting, "globex.txt"),
	}}
	gen := &fakeGenerator{answer: "Acme is the best fit."}
	svc := newService(ix, gen)

	answer, err := svc.Ask(context.Background(), "Which job is the best fit for me?")
	require.NoError(t, err)
	assert.True(t, ix.retrievedAll)
	require.Len(t, answer.Sources, 3)
}

func TestAsk_SourcesDeduplicatedByDocument(t *testing.T) {
	ix := &fakeIndex{chunks: []domain.Chunk{
		testChunk("r1", domain.DocTypeResume, "resume.txt"),
		testChunk("r2", domain.DocTypeResume, "resume.txt"),
		testChunk("j1", domain.DocTypeJobPosting, "acme.txt"),
	}}
	gen := &fakeGenerator{answer: "ok"}
	svc := newService(ix, gen)

	answer, err := svc.Ask(context.Background(), "What does my resume say?")
	require.NoError(t, err)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "resume.txt", answer.Sources[0].Document)
	assert.Equal(t, "acme.txt", answer.Sources[1].Document)
}

func TestAsk_RecordsTurnOnSuccess(t *testing.T) {
	ix := &fakeIndex{chunks: []domain.Chunk{testChunk("r1", domain.DocTypeResume, "resume.txt")}}
	gen := &fakeGenerator{answer: "an answer"}
	svc := newService(ix, gen)

	_, err := svc.Ask(context.Background(), "a question")
	require.NoError(t, err)

	turns := svc.Session().History()
	require.Len(t, turns, 1)
	assert.Equal(t, "a question", turns[0].Question)
	assert.Equal(t, "an answer", turns[0].Answer)
}

func TestAsk_FailureLeavesSessionUntouched(t *testing.T) {
	ix := &fakeIndex{chunks: []domain.Chunk{testChunk("r1", domain.DocTypeResume, "resume.txt")}}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	svc := newService(ix, gen)

	_, err := svc.Ask(context.Background(), "a question")
	require.Error(t, err)
	assert.Equal(t, 0, svc.Session().Len())
}

func TestAsk_HistoryFlowsIntoPrompt(t *testing.T) {
	ix := &fakeIndex{chunks: []domain.Chunk{testChunk("r1", domain.DocTypeResume, "resume.txt")}}
	gen := &fakeGenerator{answer: "first answer"}
	svc := newService(ix, gen)

	_, err := svc.Ask(context.Background(), "first question")
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), "second question")
	require.NoError(t, err)
	assert.Contains(t, gen.lastPrompt, "User: first question")
	assert.Contains(t, gen.lastPrompt, "Assistant: first answer")
}

func TestAskStream(t *testing.T) {
	ix := &fakeIndex{chunks: []domain.Chunk{testChunk("r1", domain.DocTypeResume, "resume.txt")}}
	gen := &fakeGenerator{deltas: []string{"You are ", "a strong ", "match."}}
	svc := newService(ix, gen)

	var got string
	answer, err := svc.AskStream(context.Background(), "Am I a match?", func(delta string) error {
		got += delta
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "You are a strong match.", got)
	assert.Equal(t, got, answer.Text)
	require.Len(t, answer.Sources, 1)

	turns := svc.Session().History()
	require.Len(t, turns, 1)
	assert.Equal(t, "You are a strong match.", turns[0].Answer)
}

func TestAskStream_SinkAbortDiscardsTurn(t *testing.T) {
	ix := &fakeIndex{chunks: []domain.Chunk{testChunk("r1", domain.DocTypeResume, "resume.txt")}}
	gen := &fakeGenerator{deltas: []string{"You are ", "a strong ", "match."}}
	svc := newService(ix, gen)

	count := 0
	_, err := svc.AskStream(context.Background(), "Am I a match?", func(string) error {
		count++
		if count == 2 {
			return errors.New("consumer gone")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 0, svc.Session().Len(), "an aborted stream records nothing")
}

func TestNewRAGService_DefaultTopK(t *testing.T) {
	ix := &fakeIndex{}
	svc := NewRAGService(ix, classifier.New(), session.New(5), assembler.New(5), &fakeGenerator{answer: "x"}, 0, nil)

	_, err := svc.Ask(context.Background(), "anything specific")
	require.NoError(t, err)
	assert.Equal(t, 10, ix.retrieveK)
}
