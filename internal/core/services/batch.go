package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// AskBatch processes questions sequentially and fault-isolated: one
// question's failure never aborts or skips the rest, and every input
// question yields exactly one item, in input order. Each item derives
// from that question's own record, nothing else.
//
// Empty batches and batches above the configured maximum are rejected
// with domain.ErrInvalidInput rather than silently truncated.
func (a *Answerer) AskBatch(
	ctx context.Context, questions []string, qtype domain.QuestionType,
) (domain.BatchResult, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: questions cannot be empty", domain.ErrInvalidInput)
	}
	if len(questions) > a.maxBatch {
		return nil, fmt.Errorf("%w: %d questions exceeds batch maximum of %d",
			domain.ErrInvalidInput, len(questions), a.maxBatch)
	}

	logger.Section("Batch Run")
	results := make(domain.BatchResult, 0, len(questions))

	for i, question := range questions {
		logger.Info("Batch question %d/%d: %q", i+1, len(questions), question)

		rec, err := a.Ask(ctx, question, qtype)
		item := domain.BatchItem{Question: question}

		switch {
		case err != nil:
			item.Err = err.Error()
		case rec.Err != "":
			r := rec
			item.Record = &r
			item.Err = rec.Err
		default:
			r := rec
			item.Record = &r
			item.Success = true
		}

		results = append(results, item)
	}

	return results, nil
}
