package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed document"`
	Type     string `json:"type,omitempty" jsonschema:"question type: standard, numerical or query (default standard)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Success  bool   `json:"success"`
	Answer   string `json:"answer,omitempty"`
	Sources  string `json:"sources,omitempty"`
	Excerpts string `json:"excerpts,omitempty"`
	Raw      string `json:"raw,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar passages for"`
	K     int    `json:"k,omitempty" jsonschema:"number of passages to return (default 3)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	StartIndex int     `json:"start_index"`
	Source     string  `json:"source"`
}

// StatusOutput is the output schema for the status tool.
type StatusOutput struct {
	Exists     bool   `json:"exists"`
	Path       string `json:"path"`
	Passages   int    `json:"passages"`
	Dimensions int    `json:"dimensions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed document, grounded in retrieved passages",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Find the passages most similar to a query, without generating an answer",
	}, s.handleSearch)

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "status",
			Description: "Report whether the document index exists and its size",
		}, s.handleStatus)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	qtype, err := domain.ParseQuestionType(input.Type)
	if err != nil {
		return nil, AskOutput{}, err
	}

	rec, err := s.ports.Answers.Ask(ctx, input.Question, qtype)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Success: rec.Success(),
		Error:   rec.Err,
	}
	switch rec.Result.Kind {
	case domain.ParseStructured:
		output.Answer = rec.Result.Answer
		output.Sources = rec.Result.Sources
		output.Excerpts = rec.Result.Excerpts
	default:
		output.Raw = rec.Result.Raw
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	k := input.K
	if k <= 0 {
		k = 3
	}

	results, err := s.ports.Answers.Query(ctx, input.Query, k)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			Content:    results[i].Content,
			Score:      results[i].Score,
			StartIndex: results[i].StartIndex,
			Source:     results[i].Source(),
		}
	}

	return nil, output, nil
}

// handleStatus handles the status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := s.ports.Index.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("index status: %w", err)
	}

	return nil, StatusOutput{
		Exists:     status.Exists,
		Path:       status.Path,
		Passages:   status.Passages,
		Dimensions: status.Dimensions,
	}, nil
}
