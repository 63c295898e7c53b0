package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Answerer implements the interface.
var _ driving.AnswerService = (*Answerer)(nil)

// Sentinel the model is instructed to emit when the answer is absent
// from the supplied context. Downstream consumers match on it to detect
// "no answer" reliably.
const NotFoundSentinel = "Not found in document."

// Separator between passages in the grounding prompt.
const passageSeparator = "\n\n---\n\n"

// DefaultContextK is the default number of passages bound into the
// grounding prompt.
const DefaultContextK = 3

// DefaultMaxBatch is the default upper bound on batch size. The bound
// caps worst-case per-request latency and external API cost.
const DefaultMaxBatch = 10

// Answerer composes grounded answers: retrieve, prompt, generate, parse.
type Answerer struct {
	retriever *Retriever
	llm       driven.LLMService
	store     driven.VectorStore
	contextK  int
	maxBatch  int
	genOpts   driven.GenerateOptions
}

// AnswererOption configures the answerer.
type AnswererOption func(*Answerer)

// WithContextK sets how many passages ground each answer.
func WithContextK(k int) AnswererOption {
	return func(a *Answerer) {
		if k > 0 {
			a.contextK = k
		}
	}
}

// WithMaxBatch sets the upper bound on batch size.
func WithMaxBatch(n int) AnswererOption {
	return func(a *Answerer) {
		if n > 0 {
			a.maxBatch = n
		}
	}
}

// WithGenerateOptions sets the options passed to the language model.
func WithGenerateOptions(opts driven.GenerateOptions) AnswererOption {
	return func(a *Answerer) {
		a.genOpts = opts
	}
}

// NewAnswerer creates an answer service. The llm parameter is optional;
// without it only TypeQuery questions can be served.
func NewAnswerer(
	retriever *Retriever,
	llm driven.LLMService,
	store driven.VectorStore,
	opts ...AnswererOption,
) *Answerer {
	a := &Answerer{
		retriever: retriever,
		llm:       llm,
		store:     store,
		contextK:  DefaultContextK,
		maxBatch:  DefaultMaxBatch,
		genOpts: driven.GenerateOptions{
			Temperature: 0.1,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Ask processes one question through the pipeline. Pre-flight failures
// (blank question, missing index, unsupported type) come back as an
// error before any retrieval is attempted; failures in retrieval or
// generation are captured in the record and never propagate as a crash.
func (a *Answerer) Ask(
	ctx context.Context, question string, qtype domain.QuestionType,
) (domain.AnswerRecord, error) {
	rec := domain.AnswerRecord{
		Question:  question,
		Type:      qtype,
		Timestamp: time.Now(),
	}

	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return rec, fmt.Errorf("%w: question cannot be empty", domain.ErrInvalidInput)
	}

	// Readiness is checked up front, not discovered as a downstream
	// failure halfway through retrieval.
	if !a.store.Exists() {
		return rec, fmt.Errorf("%w: no index at %s, run build first", domain.ErrNotFound, a.store.Path())
	}

	switch qtype {
	case domain.TypeStandard:
		a.answer(ctx, trimmed, &rec, standardPrompt)
	case domain.TypeNumerical:
		a.answer(ctx, trimmed, &rec, numericalPrompt)
	case domain.TypeQuery:
		a.similarityOnly(ctx, trimmed, &rec)
	default:
		return rec, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, qtype)
	}

	rec.Timestamp = time.Now()
	return rec, nil
}

// Query performs similarity search without generation.
func (a *Answerer) Query(ctx context.Context, text string, k int) (domain.RetrievalResult, error) {
	if !a.store.Exists() {
		return nil, fmt.Errorf("%w: no index at %s, run build first", domain.ErrNotFound, a.store.Path())
	}
	if k <= 0 {
		k = a.contextK
	}
	return a.retriever.Retrieve(ctx, text, k)
}

// promptFunc builds the grounding instruction for one question mode.
type promptFunc func(context, question string) string

// answer runs the retrieve → compose → generate → parse chain,
// capturing any failure in the record.
func (a *Answerer) answer(ctx context.Context, question string, rec *domain.AnswerRecord, prompt promptFunc) {
	logger.Section("Answer Composition")

	results, err := a.retriever.Retrieve(ctx, question, a.contextK)
	if err != nil {
		rec.Err = fmt.Sprintf("retrieval failed: %v", err)
		return
	}
	rec.SourceIDs = sourceIDs(results)

	if a.llm == nil {
		rec.Err = domain.ErrLLMUnavailable.Error()
		return
	}

	// The one externally latent step. Its failure must not corrupt the
	// retrieval outcome already recorded above.
	raw, err := a.llm.Generate(ctx, prompt(joinPassages(results), question), a.genOpts)
	if err != nil {
		rec.Err = fmt.Sprintf("%v: %v", domain.ErrGeneration, err)
		return
	}

	logger.Debug("Model returned %d bytes", len(raw))
	rec.Result = ParseAnswer(raw)
}

// similarityOnly serves TypeQuery: retrieval results rendered as raw
// output, no model call.
func (a *Answerer) similarityOnly(ctx context.Context, question string, rec *domain.AnswerRecord) {
	results, err := a.retriever.Retrieve(ctx, question, a.contextK)
	if err != nil {
		rec.Err = fmt.Sprintf("retrieval failed: %v", err)
		return
	}

	rec.SourceIDs = sourceIDs(results)
	if len(results) == 0 {
		rec.Result = domain.RawAnswer("Unable to find any matches!")
		return
	}
	rec.Result = domain.RawAnswer(joinPassages(results))
}

// standardPrompt binds retrieved content and the verbatim question into
// the grounding instruction. The sentinel and the section markers are
// contracts ParseAnswer depends on.
func standardPrompt(context, question string) string {
	var b strings.Builder
	b.WriteString("Answer only based on the context below. If the answer is not in the context, say '")
	b.WriteString(NotFoundSentinel)
	b.WriteString("'\n\n")
	b.WriteString("Format your response exactly as:\n")
	b.WriteString(markerAnswer + "\n<your answer>\n")
	b.WriteString(markerSources + "\n<source identifiers you used>\n")
	b.WriteString(markerExcerpts + "\n<verbatim snippets supporting the answer>\n\n")
	b.WriteString("Context:\n")
	b.WriteString(context)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// numericalPrompt targets numeric extraction. The response is kept raw,
// so no section layout is requested.
func numericalPrompt(context, question string) string {
	var b strings.Builder
	b.WriteString("Extract the precise numerical value that answers the question, ")
	b.WriteString("using only the context below. Include the unit. ")
	b.WriteString("If no number in the context answers it, say '")
	b.WriteString(NotFoundSentinel)
	b.WriteString("'\n\nContext:\n")
	b.WriteString(context)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

func joinPassages(results domain.RetrievalResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Passage.Content
	}
	return strings.Join(parts, passageSeparator)
}

// sourceIDs collects source identifiers in retrieval order, deduplicated.
func sourceIDs(results domain.RetrievalResult) []string {
	seen := make(map[string]bool, len(results))
	var ids []string
	for _, r := range results {
		id := r.Passage.Source()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
