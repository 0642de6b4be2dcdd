package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/relcis/cache"
	"github.com/use-agent/relcis/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSearcher struct {
	results []models.SearchResult
	err     error
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func doSearch(svc WebSearcher, cc *cache.Cache, target string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/api/search", Search(svc, cc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func decodeSearch(t *testing.T, w *httptest.ResponseRecorder) models.WebSearchResponse {
	t.Helper()
	var resp models.WebSearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestSearchHandler_MissingQuery(t *testing.T) {
	svc := &stubSearcher{}
	w := doSearch(svc, cache.New(10, 0), "/api/search")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeSearch(t, w)
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %+v, want INVALID_INPUT", resp.Error)
	}
	if len(svc.queries) != 0 {
		t.Error("searcher invoked despite missing query")
	}
}

func TestSearchHandler_Success(t *testing.T) {
	svc := &stubSearcher{results: []models.SearchResult{
		{Title: "First", URL: "https://a.example", Description: "one"},
		{Title: "Second", URL: "https://b.example", Description: "two"},
	}}
	w := doSearch(svc, cache.New(10, 0), "/api/search?query=golang+testing")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeSearch(t, w)
	if !resp.Success {
		t.Error("Success = false")
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(resp.Results))
	}
	if resp.Results[0].Title != "First" {
		t.Errorf("first result = %+v", resp.Results[0])
	}
	if len(svc.queries) != 1 || svc.queries[0] != "golang testing" {
		t.Errorf("queries = %v", svc.queries)
	}
}

func TestSearchHandler_AllProvidersExhausted(t *testing.T) {
	svc := &stubSearcher{err: models.NewSearchError(
		models.ErrCodeExhausted, "all search providers exhausted",
		models.NewSearchError(models.ErrCodeBlocked, "block indicator persisted", nil),
	)}
	w := doSearch(svc, cache.New(10, 0), "/api/search?query=x")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	resp := decodeSearch(t, w)
	if resp.Error == nil || resp.Error.Code != models.ErrCodeExhausted {
		t.Errorf("error = %+v, want ALL_PROVIDERS_EXHAUSTED", resp.Error)
	}
}

func TestSearchHandler_StructuralExhaustionIsServerFault(t *testing.T) {
	// 503 is reserved for blocking. A chain that died on a structural
	// failure (the search input never appeared) is our fault, not theirs.
	svc := &stubSearcher{err: models.NewSearchError(
		models.ErrCodeExhausted, "all search providers exhausted",
		models.NewSearchError(models.ErrCodeNavigation, "search input not found", nil),
	)}
	w := doSearch(svc, cache.New(10, 0), "/api/search?query=x")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp := decodeSearch(t, w)
	if resp.Error == nil || resp.Error.Code != models.ErrCodeExhausted {
		t.Errorf("error = %+v, want ALL_PROVIDERS_EXHAUSTED", resp.Error)
	}
}

func TestSearchHandler_ExhaustedOnLoadFailureIs503(t *testing.T) {
	svc := &stubSearcher{err: models.NewSearchError(
		models.ErrCodeExhausted, "all search providers exhausted",
		models.NewSearchError(models.ErrCodeLoadFailure, "results never rendered", nil),
	)}
	w := doSearch(svc, cache.New(10, 0), "/api/search?query=x")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestSearchHandler_SessionInitFailureIs500(t *testing.T) {
	svc := &stubSearcher{err: models.NewSearchError(
		models.ErrCodeSessionInit, "browser launch failed", nil)}
	w := doSearch(svc, cache.New(10, 0), "/api/search?query=x")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestSearchHandler_UntaggedErrorHidesDetail(t *testing.T) {
	svc := &stubSearcher{err: context.DeadlineExceeded}
	w := doSearch(svc, cache.New(10, 0), "/api/search?query=x")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp := decodeSearch(t, w)
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInternal {
		t.Errorf("error = %+v, want INTERNAL_ERROR", resp.Error)
	}
	if resp.Error.Message != "internal error" {
		t.Errorf("message = %q, must not leak the raw error", resp.Error.Message)
	}
}

func TestSearchHandler_CacheHitSkipsSearcher(t *testing.T) {
	cc := cache.New(10, time.Minute)
	svc := &stubSearcher{results: []models.SearchResult{{Title: "Fresh", URL: "https://a.example"}}}

	w := doSearch(svc, cc, "/api/search?query=repeated")
	if got := decodeSearch(t, w).Cache; got != "miss" {
		t.Errorf("first response cache = %q, want miss", got)
	}

	w = doSearch(svc, cc, "/api/search?query=repeated")
	resp := decodeSearch(t, w)
	if resp.Cache != "hit" {
		t.Errorf("second response cache = %q, want hit", resp.Cache)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "Fresh" {
		t.Errorf("cached results = %+v", resp.Results)
	}
	if len(svc.queries) != 1 {
		t.Errorf("searcher invoked %d times, want 1 (second request served from cache)", len(svc.queries))
	}
}
