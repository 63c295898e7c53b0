package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	record  domain.AnswerRecord
	batch   domain.BatchResult
	results domain.RetrievalResult
	err     error

	lastK int
}

func (m *mockAnswerService) Ask(
	_ context.Context,
	question string,
	qtype domain.QuestionType,
) (domain.AnswerRecord, error) {
	if m.err != nil {
		return domain.AnswerRecord{}, m.err
	}
	rec := m.record
	rec.Question = question
	rec.Type = qtype
	return rec, nil
}

func (m *mockAnswerService) AskBatch(
	_ context.Context,
	_ []string,
	_ domain.QuestionType,
) (domain.BatchResult, error) {
	return m.batch, m.err
}

func (m *mockAnswerService) Query(
	_ context.Context,
	_ string,
	k int,
) (domain.RetrievalResult, error) {
	m.lastK = k
	return m.results, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	status driving.IndexStatus
	report driving.BuildReport
	err    error
}

func (m *mockIndexService) Build(_ context.Context) (driving.BuildReport, error) {
	return m.report, m.err
}

func (m *mockIndexService) Status(_ context.Context) (driving.IndexStatus, error) {
	return m.status, m.err
}
