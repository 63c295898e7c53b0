package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// defaultSearchK is used when a search request omits k.
const defaultSearchK = 3

// askRequest is the body of POST /ask.
type askRequest struct {
	Question string `json:"question" binding:"required"`
	Type     string `json:"type"`
}

// batchRequest is the body of POST /ask/batch.
type batchRequest struct {
	Questions []string `json:"questions" binding:"required"`
	Type      string   `json:"type"`
}

// searchRequest is the body of POST /search.
type searchRequest struct {
	Question string `json:"question" binding:"required"`
	K        int    `json:"k"`
}

// questionResponse is the per-question envelope shared by /ask and
// /ask/batch entries.
type questionResponse struct {
	Success   bool      `json:"success"`
	Question  string    `json:"question"`
	Type      string    `json:"type"`
	Result    any       `json:"result,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// structuredResult is the parsed-sections shape of a result.
type structuredResult struct {
	Answer   string `json:"answer"`
	Sources  string `json:"sources"`
	Excerpts string `json:"relevant_excerpts"`
}

// rawResult is the fallback shape when the model output had no section
// markers.
type rawResult struct {
	RawResponse string `json:"raw_response"`
}

// searchHit is one passage in a search response.
type searchHit struct {
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	StartIndex int     `json:"start_index"`
	Source     string  `json:"source"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "docqa",
		"endpoints": []string{
			"GET /health",
			"GET /database/status",
			"POST /database/build",
			"POST /ask",
			"POST /ask/batch",
			"POST /search",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	status, err := s.index.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"timestamp":       time.Now().UTC(),
		"database_exists": status.Exists,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	status, err := s.index.Status(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{
		"exists":     status.Exists,
		"path":       status.Path,
		"passages":   status.Passages,
		"dimensions": status.Dimensions,
	}
	if !status.ModifiedAt.IsZero() {
		resp["modified_at"] = status.ModifiedAt.UTC()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleBuild(c *gin.Context) {
	report, err := s.index.Build(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"pages":           report.Pages,
		"passages":        report.Passages,
		"batches":         report.Batches,
		"elapsed_seconds": report.Elapsed.Seconds(),
	})
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	qtype, err := domain.ParseQuestionType(req.Type)
	if err != nil {
		abortWithError(c, err)
		return
	}

	rec, err := s.answers.Ask(c.Request.Context(), req.Question, qtype)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordResponse(rec))
}

func (s *Server) handleAskBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "questions are required"})
		return
	}

	qtype, err := domain.ParseQuestionType(req.Type)
	if err != nil {
		abortWithError(c, err)
		return
	}

	batch, err := s.answers.AskBatch(c.Request.Context(), req.Questions, qtype)
	if err != nil {
		abortWithError(c, err)
		return
	}

	results := make([]questionResponse, len(batch))
	for i, item := range batch {
		results[i] = batchItemResponse(item, qtype)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}
	if req.K == 0 {
		req.K = defaultSearchK
	}

	result, err := s.answers.Query(c.Request.Context(), req.Question, req.K)
	if err != nil {
		abortWithError(c, err)
		return
	}

	hits := make([]searchHit, len(result))
	for i, sp := range result {
		hits[i] = searchHit{
			Content:    sp.Content,
			Score:      sp.Score,
			StartIndex: sp.StartIndex,
			Source:     sp.Source(),
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"question": req.Question,
		"results":  hits,
	})
}

// recordResponse maps an answer record to the wire envelope.
func recordResponse(rec domain.AnswerRecord) questionResponse {
	resp := questionResponse{
		Success:   rec.Success(),
		Question:  rec.Question,
		Type:      string(rec.Type),
		Timestamp: rec.Timestamp,
		Error:     rec.Err,
	}
	if !rec.Success() {
		return resp
	}

	switch rec.Result.Kind {
	case domain.ParseStructured:
		resp.Result = structuredResult{
			Answer:   rec.Result.Answer,
			Sources:  rec.Result.Sources,
			Excerpts: rec.Result.Excerpts,
		}
	default:
		resp.Result = rawResult{RawResponse: rec.Result.Raw}
	}
	return resp
}

// batchItemResponse maps one batch item. Items rejected before
// processing have no record, so the envelope is synthesised.
func batchItemResponse(item domain.BatchItem, qtype domain.QuestionType) questionResponse {
	if item.Record != nil {
		return recordResponse(*item.Record)
	}
	return questionResponse{
		Success:   item.Success,
		Question:  item.Question,
		Type:      string(qtype),
		Timestamp: time.Now().UTC(),
		Error:     item.Err,
	}
}

// abortWithError maps domain error classes onto HTTP statuses: invalid
// input and unsupported types are client errors, a missing index means
// the service cannot answer yet, and everything else is internal.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedType):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
