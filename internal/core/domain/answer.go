package domain

import (
	"fmt"
	"time"
)

// QuestionType selects the processing mode for a question.
type QuestionType string

// Closed set of question types. Anything else is rejected with
// ErrUnsupportedType rather than silently falling through.
const (
	// TypeStandard answers with retrieval plus generation and parses the
	// model output into answer/sources/excerpts sections.
	TypeStandard QuestionType = "standard"

	// TypeNumerical answers with a numeric-extraction prompt and keeps
	// the model output raw.
	TypeNumerical QuestionType = "numerical"

	// TypeQuery performs similarity search only, no generation.
	TypeQuery QuestionType = "query"
)

// ParseQuestionType validates a free-form type string. The empty string
// defaults to TypeStandard.
func ParseQuestionType(s string) (QuestionType, error) {
	switch QuestionType(s) {
	case "":
		return TypeStandard, nil
	case TypeStandard, TypeNumerical, TypeQuery:
		return QuestionType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, s)
	}
}

// ParseKind discriminates the two shapes a model response can parse into.
type ParseKind int

const (
	// ParseRaw means no section markers were found; the raw model output
	// is preserved verbatim. This is the degraded fallback, not an error.
	ParseRaw ParseKind = iota

	// ParseStructured means the output was split into sections.
	ParseStructured
)

// ParsedAnswer is the tagged result of parsing a model response.
// Exactly one shape is populated, selected by Kind.
type ParsedAnswer struct {
	Kind ParseKind

	// Answer, Sources and Excerpts are set when Kind is ParseStructured.
	Answer   string
	Sources  string
	Excerpts string

	// Raw is set when Kind is ParseRaw.
	Raw string
}

// RawAnswer wraps text in the raw-output fallback shape.
func RawAnswer(text string) ParsedAnswer {
	return ParsedAnswer{Kind: ParseRaw, Raw: text}
}

// AnswerRecord is the per-question outcome of the answer composer.
// A failed question is reported here with Err set, never as a panic.
type AnswerRecord struct {
	// Question is the input question, echoed verbatim.
	Question string

	// Type is the processing mode that produced this record.
	Type QuestionType

	// Result is the parsed model output. Zero value when Err is set.
	Result ParsedAnswer

	// SourceIDs lists the source identifiers of the passages used for
	// grounding, in retrieval order, deduplicated.
	SourceIDs []string

	// Timestamp is when processing finished.
	Timestamp time.Time

	// Err holds the failure message, empty on success.
	Err string
}

// Success reports whether the question was answered.
func (r AnswerRecord) Success() bool {
	return r.Err == ""
}

// BatchItem is one entry of a batch run. Each input question yields
// exactly one item, in input order, regardless of individual failures.
type BatchItem struct {
	// Question is the input question, echoed verbatim.
	Question string

	// Success reports whether this question was answered.
	Success bool

	// Record is the answer record when processing ran, nil when the
	// question was rejected before processing.
	Record *AnswerRecord

	// Err holds the failure message, empty on success.
	Err string
}

// BatchResult preserves input order: one item per input question.
type BatchResult []BatchItem
