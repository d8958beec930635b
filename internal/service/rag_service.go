// Package service orchestrates the RAG pipeline: classify the question,
// retrieve chunks, assemble context, invoke the generator and record the
// completed turn.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"careerag/internal/assembler"
	"careerag/internal/classifier"
	"careerag/internal/domain"
	"careerag/internal/generator"
	"careerag/internal/logger"
	"careerag/internal/prompt"
	"careerag/internal/session"
	"careerag/internal/vectorstore"
)

// Index is the retrieval surface the orchestrator needs.
type Index interface {
	Retrieve(ctx context.Context, query string, k int, filter *vectorstore.Filter) ([]domain.SearchResult, error)
	RetrieveAll(ctx context.Context) ([]domain.Chunk, error)
}

// Answer is a completed response with its attributed sources.
type Answer struct {
	Text    string
	Sources []domain.Source
}

// RAGService answers questions about resume/job fit, grounded in retrieved
// document fragments. One question is processed at a time per session.
type RAGService struct {
	index        Index
	classifier   *classifier.Classifier
	session      *session.Session
	assembler    *assembler.Assembler
	generator    generator.Generator
	questionTopK int
	log          *zap.Logger
}

// NewRAGService wires the pipeline. questionTopK is the retrieval size for
// specific questions; it is set higher than the default retrieval size to
// favour recall for multi-fact questions.
func NewRAGService(
	index Index,
	cls *classifier.Classifier,
	sess *session.Session,
	asm *assembler.Assembler,
	gen generator.Generator,
	questionTopK int,
	log *zap.Logger,
) *RAGService {
	if questionTopK <= 0 {
		questionTopK = 10
	}
	return &RAGService{
		index:        index,
		classifier:   cls,
		session:      sess,
		assembler:    asm,
		generator:    gen,
		questionTopK: questionTopK,
		log:          logger.OrNop(log),
	}
}

// Session exposes the conversation memory so the caller controls its
// lifecycle (clearing on reset, rendering history).
func (s *RAGService) Session() *session.Session { return s.session }

// Ask answers a question and returns the full text with attributed sources.
// The turn is recorded only after generation completes.
func (s *RAGService) Ask(ctx context.Context, question string) (*Answer, error) {
	chunks, err := s.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, prompt.System, s.buildPrompt(chunks, question))
	if err != nil {
		s.logGenerationFailure(question, chunks, err)
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	s.session.Append(question, text)
	answer := &Answer{Text: text, Sources: sourcesFrom(chunks)}
	s.logAnswer(question, answer)
	return answer, nil
}

// AskStream answers a question, forwarding each text fragment to the sink
// as it arrives. The final sources and the session update are identical to
// Ask. A failed or cancelled stream records nothing, so an interrupted
// generation never pollutes memory with a partial turn.
func (s *RAGService) AskStream(ctx context.Context, question string, sink generator.Sink) (*Answer, error) {
	chunks, err := s.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.GenerateStream(ctx, prompt.System, s.buildPrompt(chunks, question), sink)
	if err != nil {
		s.logGenerationFailure(question, chunks, err)
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	s.session.Append(question, text)
	answer := &Answer{Text: text, Sources: sourcesFrom(chunks)}
	s.logAnswer(question, answer)
	return answer, nil
}

// retrieve picks the strategy by intent: every indexed chunk for comparison
// questions, top-k similarity otherwise.
func (s *RAGService) retrieve(ctx context.Context, question string) ([]domain.Chunk, error) {
	if s.classifier.IsComparison(question) {
		s.log.Debug("comparison query detected, retrieving all documents",
			zap.String("question", question))
		chunks, err := s.index.RetrieveAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("retrieving all documents: %w", err)
		}
		return chunks, nil
	}

	results, err := s.index.Retrieve(ctx, question, s.questionTopK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	chunks := make([]domain.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	return chunks, nil
}

func (s *RAGService) buildPrompt(chunks []domain.Chunk, question string) string {
	context := s.assembler.FormatChunks(chunks)
	history := s.assembler.FormatHistory(s.session.History())
	return prompt.QA(context, history, question)
}

// sourcesFrom derives the attribution list, deduplicated by document name
// so a document contributing several chunks appears once.
func sourcesFrom(chunks []domain.Chunk) []domain.Source {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]domain.Source, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.Meta.Document]; ok {
			continue
		}
		seen[c.Meta.Document] = struct{}{}
		sources = append(sources, domain.NewSource(c))
	}
	return sources
}

func (s *RAGService) logAnswer(question string, answer *Answer) {
	names := make([]string, len(answer.Sources))
	for i, src := range answer.Sources {
		names[i] = src.Document
	}
	s.log.Info("answered question",
		zap.String("question", question),
		zap.Strings("sources", names),
		zap.Int("answer_chars", len(answer.Text)))
}

func (s *RAGService) logGenerationFailure(question string, chunks []domain.Chunk, err error) {
	names := make([]string, 0, len(chunks))
	seen := make(map[string]struct{})
	for _, c := range chunks {
		if _, ok := seen[c.Meta.Document]; !ok {
			seen[c.Meta.Document] = struct{}{}
			names = append(names, c.Meta.Document)
		}
	}
	s.log.Error("generation failed",
		zap.String("question", question),
		zap.Strings("sources", names),
		zap.Error(err))
}
