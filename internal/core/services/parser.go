package services

import (
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Section markers the grounding prompt instructs the model to emit.
// ParseAnswer and the prompt in answerer.go are a matched pair; changing
// one without the other breaks structured parsing.
const (
	markerAnswer   = "ANSWER:"
	markerSources  = "SOURCES:"
	markerExcerpts = "RELEVANT EXCERPTS:"
)

// ParseAnswer splits a model response into answer/sources/excerpts
// sections by scanning line by line for the section markers. Lines are
// appended to whichever section is currently active; text before the
// first marker belongs to no section and is dropped. Markers may appear
// in any order and sections may be missing.
//
// When no marker is found at all, the entire response is preserved
// verbatim in the raw fallback shape. A malformed model response is
// still useful to the caller, so parsing degrades to pass-through,
// never to an error.
func ParseAnswer(raw string) domain.ParsedAnswer {
	var answer, sources, excerpts strings.Builder
	var section *strings.Builder
	found := false

	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, markerAnswer):
			section = &answer
			found = true
			continue
		case strings.HasPrefix(line, markerSources):
			section = &sources
			found = true
			continue
		case strings.HasPrefix(line, markerExcerpts):
			section = &excerpts
			found = true
			continue
		}

		if section != nil {
			section.WriteString(line)
			section.WriteString("\n")
		}
	}

	if !found {
		return domain.RawAnswer(raw)
	}

	return domain.ParsedAnswer{
		Kind:     domain.ParseStructured,
		Answer:   strings.TrimSpace(answer.String()),
		Sources:  strings.TrimSpace(sources.String()),
		Excerpts: strings.TrimSpace(excerpts.String()),
	}
}
