package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// mockIndexService is a fixed-response driving.IndexService.
type mockIndexService struct {
	report driving.BuildReport
	status driving.IndexStatus
	err    error
}

func (m *mockIndexService) Build(_ context.Context) (driving.BuildReport, error) {
	return m.report, m.err
}

func (m *mockIndexService) Status(_ context.Context) (driving.IndexStatus, error) {
	return m.status, m.err
}

// mockAnswerService answers every question with a canned record.
type mockAnswerService struct {
	record  domain.AnswerRecord
	results domain.RetrievalResult
	err     error
}

func (m *mockAnswerService) Ask(_ context.Context, question string, qtype domain.QuestionType) (domain.AnswerRecord, error) {
	if m.err != nil {
		return domain.AnswerRecord{}, m.err
	}
	rec := m.record
	rec.Question = question
	rec.Type = qtype
	rec.Timestamp = time.Now()
	return rec, nil
}

func (m *mockAnswerService) AskBatch(ctx context.Context, questions []string, qtype domain.QuestionType) (domain.BatchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: empty batch", domain.ErrInvalidInput)
	}
	batch := make(domain.BatchResult, len(questions))
	for i, q := range questions {
		if strings.TrimSpace(q) == "" {
			batch[i] = domain.BatchItem{Question: q, Err: "question must not be blank"}
			continue
		}
		rec, _ := m.Ask(ctx, q, qtype)
		batch[i] = domain.BatchItem{Question: q, Success: true, Record: &rec}
	}
	return batch, nil
}

func (m *mockAnswerService) Query(_ context.Context, _ string, _ int) (domain.RetrievalResult, error) {
	return m.results, m.err
}

// setupTestServices injects mocks and returns a cleanup func.
func setupTestServices() func() {
	SetServices(
		&mockIndexService{
			report: driving.BuildReport{Pages: 2, Passages: 8, Batches: 1, Elapsed: 1200 * time.Millisecond},
			status: driving.IndexStatus{Exists: true, Path: "/tmp/idx", Passages: 8, Dimensions: 4},
		},
		&mockAnswerService{
			record: domain.AnswerRecord{
				Result: domain.ParsedAnswer{
					Kind:    domain.ParseStructured,
					Answer:  "Paris",
					Sources: "doc1",
				},
			},
			results: domain.RetrievalResult{
				{
					Passage: domain.Passage{
						Content:  "the capital is Paris",
						Metadata: map[string]any{domain.MetaSource: "doc1"},
					},
					Score: 0.9,
				},
			},
		},
	)
	return func() { SetServices(nil, nil) }
}
