package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/internal/engine"
	"github.com/gcbaptista/go-term-index/internal/metrics"
	"github.com/gcbaptista/go-term-index/model"
	"github.com/gcbaptista/go-term-index/services"
)

func setupTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.NewEngine(t.TempDir())
	t.Cleanup(eng.Close)
	return eng
}

func setupTestRouter(eng services.IndexManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, eng, nil, nil)
	return router
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

// setupIndex creates an index holding words through the API.
func setupIndex(t *testing.T, router *gin.Engine, name string, words ...string) {
	t.Helper()
	w := performRequest(router, http.MethodPost, "/indexes", config.IndexSettings{Name: name})
	if w.Code != http.StatusCreated {
		t.Fatalf("Create index: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(words) == 0 {
		return
	}
	w = performRequest(router, http.MethodPut, "/indexes/"+name+"/words", WordsRequest{Words: words})
	if w.Code != http.StatusOK {
		t.Fatalf("Add words: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))

	w := performRequest(router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
}

func TestCreateIndexHandler(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedCode   ErrorCode
	}{
		{
			name:           "valid index creation",
			requestBody:    config.IndexSettings{Name: "words", MaxEditsLimit: 2},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate index",
			requestBody:    config.IndexSettings{Name: "words"},
			expectedStatus: http.StatusConflict,
			expectedCode:   ErrorCodeIndexExists,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "missing index name",
			requestBody:    config.IndexSettings{MaxResults: 10},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "unsafe index name",
			requestBody:    config.IndexSettings{Name: "../etc"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "default edits above limit",
			requestBody:    config.IndexSettings{Name: "edits", DefaultMaxEdits: 3, MaxEditsLimit: 1, MaxResults: 5},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/indexes", tt.requestBody)
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedCode != "" {
				var apiErr APIError
				decode(t, w, &apiErr)
				if apiErr.Code != tt.expectedCode {
					t.Errorf("Expected code %s, got %s", tt.expectedCode, apiErr.Code)
				}
			}
		})
	}
}

func TestListAndGetIndex(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "beta", "bad", "baby")
	setupIndex(t, router, "alpha")

	w := performRequest(router, http.MethodGet, "/indexes", nil)
	var list struct {
		Indexes []string `json:"indexes"`
		Count   int      `json:"count"`
	}
	decode(t, w, &list)
	if list.Count != 2 || list.Indexes[0] != "alpha" || list.Indexes[1] != "beta" {
		t.Errorf("Expected [alpha beta], got %v", list.Indexes)
	}

	w = performRequest(router, http.MethodGet, "/indexes/beta", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var detail struct {
		Settings config.IndexSettings `json:"settings"`
		Stats    services.IndexStats  `json:"stats"`
	}
	decode(t, w, &detail)
	if detail.Settings.Name != "beta" {
		t.Errorf("Expected settings of beta, got %q", detail.Settings.Name)
	}
	if detail.Stats.Words != 2 || !detail.Stats.Dirty || detail.Stats.Persisted {
		t.Errorf("Unexpected stats %+v", detail.Stats)
	}

	w = performRequest(router, http.MethodGet, "/indexes/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a missing index, got %d", w.Code)
	}
}

func TestAddWordsHandler(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "words")

	w := performRequest(router, http.MethodPut, "/indexes/words/words", WordsRequest{
		Words: []string{"Bad", "baby", "bad", "  "},
		Text:  "The bank, the baby!",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Added int                 `json:"added"`
		Stats services.IndexStats `json:"stats"`
	}
	decode(t, w, &body)
	// bad and baby from the list, then the and bank from the text.
	if body.Added != 4 {
		t.Errorf("Expected 4 new words, got %d", body.Added)
	}
	if body.Stats.Words != 4 {
		t.Errorf("Expected 4 words in the index, got %d", body.Stats.Words)
	}

	w = performRequest(router, http.MethodPut, "/indexes/words/words", WordsRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty request, got %d", w.Code)
	}

	w = performRequest(router, http.MethodPut, "/indexes/missing/words", WordsRequest{Words: []string{"a"}})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a missing index, got %d", w.Code)
	}
}

func TestQueryHandler(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "words", "bad", "baby", "b", "bank", "rambo", "raiders", "rain")

	one := 1
	tests := []struct {
		name           string
		query          interface{}
		expectedStatus int
		expectedCode   ErrorCode
		check          func(t *testing.T, result services.TermQueryResult)
	}{
		{
			name:           "has present",
			query:          services.TermQuery{Op: services.QueryOpHas, Term: "BAD"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, result services.TermQueryResult) {
				if result.Found == nil || !*result.Found {
					t.Error("Expected bad to be found")
				}
				if result.QueryId == "" {
					t.Error("Expected a query id")
				}
			},
		},
		{
			name:           "has prefix only",
			query:          services.TermQuery{Op: services.QueryOpHas, Term: "ba"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, result services.TermQueryResult) {
				if result.Found == nil || *result.Found {
					t.Error("Expected ba to be absent")
				}
			},
		},
		{
			name:           "prefix",
			query:          services.TermQuery{Op: services.QueryOpPrefix, Term: "ra"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, result services.TermQueryResult) {
				if result.Total != 3 || len(result.Words) != 3 {
					t.Errorf("Expected 3 words, got %v", result.Words)
				}
			},
		},
		{
			name:           "prefix with limit",
			query:          services.TermQuery{Op: services.QueryOpPrefix, Term: "b", Limit: 2},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, result services.TermQueryResult) {
				if len(result.Words) != 2 || !result.Truncated || result.Total != 4 {
					t.Errorf("Expected 2 of 4 words, got %+v", result)
				}
			},
		},
		{
			name:           "near",
			query:          services.TermQuery{Op: services.QueryOpNear, Term: "ba", MaxEdits: &one},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, result services.TermQueryResult) {
				if len(result.Words) != 2 {
					t.Fatalf("Expected b and bad, got %v", result.Words)
				}
				for _, word := range result.Words {
					if word.Distance != 1 {
						t.Errorf("Expected distance 1 for %s, got %d", word.Value, word.Distance)
					}
				}
			},
		},
		{
			name:           "blank term",
			query:          services.TermQuery{Op: services.QueryOpPrefix, Term: "   "},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidQuery,
		},
		{
			name:           "unknown op",
			query:          map[string]string{"op": "fuzzy", "term": "bad"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "edit budget above limit",
			query:          map[string]interface{}{"op": "near", "term": "bad", "max_edits": 9},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidQuery,
		},
		{
			name:           "stream before persist",
			query:          services.TermQuery{Op: services.QueryOpHas, Term: "bad", Source: services.QuerySourceStream},
			expectedStatus: http.StatusConflict,
			expectedCode:   ErrorCodeIndexNotPersisted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/indexes/words/_query", tt.query)
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedCode != "" {
				var apiErr APIError
				decode(t, w, &apiErr)
				if apiErr.Code != tt.expectedCode {
					t.Errorf("Expected code %s, got %s", tt.expectedCode, apiErr.Code)
				}
			}
			if tt.check != nil {
				var result services.TermQueryResult
				decode(t, w, &result)
				tt.check(t, result)
			}
		})
	}
}

func TestPersistAndStreamQuery(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "words", "bad", "baby", "bank")

	w := performRequest(router, http.MethodPost, "/indexes/words/_persist", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Stats services.IndexStats `json:"stats"`
	}
	decode(t, w, &body)
	if !body.Stats.Persisted || body.Stats.Dirty || body.Stats.StreamBytes != int64(body.Stats.Nodes*16) {
		t.Errorf("Unexpected stats after persist: %+v", body.Stats)
	}

	// Words added after the persist are only visible in memory.
	performRequest(router, http.MethodPut, "/indexes/words/words", WordsRequest{Words: []string{"banner"}})

	query := services.TermQuery{Op: services.QueryOpPrefix, Term: "ban", Source: services.QuerySourceStream}
	w = performRequest(router, http.MethodPost, "/indexes/words/_query", query)
	var result services.TermQueryResult
	decode(t, w, &result)
	if result.Total != 1 || result.Words[0].Value != "bank" {
		t.Errorf("Expected only bank from the stream, got %v", result.Words)
	}

	query.Source = services.QuerySourceMemory
	w = performRequest(router, http.MethodPost, "/indexes/words/_query", query)
	decode(t, w, &result)
	if result.Total != 2 {
		t.Errorf("Expected bank and banner from memory, got %v", result.Words)
	}
}

func TestClearWordsHandler(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "words", "bad", "baby")

	w := performRequest(router, http.MethodDelete, "/indexes/words/words", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = performRequest(router, http.MethodGet, "/indexes/words/stats", nil)
	var stats services.IndexStats
	decode(t, w, &stats)
	if stats.Words != 0 || stats.Nodes != 1 {
		t.Errorf("Expected an empty index, got %+v", stats)
	}
}

func TestUpdateIndexSettingsHandler(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "words", "bad")

	w := performRequest(router, http.MethodPatch, "/indexes/words/settings", map[string]interface{}{"max_results": 7})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Settings config.IndexSettings `json:"settings"`
	}
	decode(t, w, &body)
	if body.Settings.MaxResults != 7 || body.Settings.MaxEditsLimit != config.DefaultMaxEditsLimit {
		t.Errorf("Expected only max_results to change, got %+v", body.Settings)
	}

	w = performRequest(router, http.MethodPatch, "/indexes/words/settings", map[string]interface{}{"name": "other"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 when renaming through settings, got %d", w.Code)
	}

	w = performRequest(router, http.MethodPatch, "/indexes/words/settings", map[string]interface{}{"max_results": -1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid settings, got %d", w.Code)
	}

	w = performRequest(router, http.MethodPatch, "/indexes/missing/settings", map[string]interface{}{"max_results": 7})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a missing index, got %d", w.Code)
	}
}

func TestRenameIndexHandler(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "old", "bad")
	setupIndex(t, router, "taken")

	tests := []struct {
		name           string
		path           string
		newName        string
		expectedStatus int
	}{
		{"same name", "/indexes/old/rename", "old", http.StatusBadRequest},
		{"empty name", "/indexes/old/rename", "", http.StatusBadRequest},
		{"name taken", "/indexes/old/rename", "taken", http.StatusConflict},
		{"missing index", "/indexes/missing/rename", "fresh", http.StatusNotFound},
		{"rename", "/indexes/old/rename", "new", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, tt.path, RenameRequest{NewName: tt.newName})
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}

	w := performRequest(router, http.MethodPost, "/indexes/new/_query", services.TermQuery{Op: services.QueryOpHas, Term: "bad"})
	var result services.TermQueryResult
	decode(t, w, &result)
	if result.Found == nil || !*result.Found {
		t.Error("Expected the renamed index to keep its words")
	}
}

func TestMergeIndexHandler(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "target", "bad")
	setupIndex(t, router, "source", "bad", "bank")

	w := performRequest(router, http.MethodPost, "/indexes/target/_merge", MergeRequest{Source: "source"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Added int `json:"added"`
	}
	decode(t, w, &body)
	if body.Added != 1 {
		t.Errorf("Expected 1 new word, got %d", body.Added)
	}

	w = performRequest(router, http.MethodPost, "/indexes/target/_merge", MergeRequest{Source: "missing"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a missing source, got %d", w.Code)
	}

	w = performRequest(router, http.MethodPost, "/indexes/target/_merge", MergeRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a source, got %d", w.Code)
	}
}

func waitForJob(t *testing.T, router *gin.Engine, jobID string) model.Job {
	t.Helper()
	w := performRequest(router, http.MethodGet, "/jobs/"+jobID+"?wait=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for job %s, got %d: %s", jobID, w.Code, w.Body.String())
	}
	var job model.Job
	decode(t, w, &job)
	if !job.IsFinished() {
		t.Fatalf("Job %s did not finish: %s", jobID, job.Status)
	}
	return job
}

func TestBuildIndexHandler(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "words")

	words := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		words = append(words, "term"+strings.Repeat("x", i%7)+string(rune('a'+i%26)))
	}

	w := performRequest(router, http.MethodPost, "/indexes/words/_build", BuildRequest{Words: words})
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var accepted struct {
		JobID string `json:"job_id"`
	}
	decode(t, w, &accepted)

	job := waitForJob(t, router, accepted.JobID)
	if job.Status != model.JobStatusCompleted {
		t.Fatalf("Expected a completed build, got %s: %s", job.Status, job.Error)
	}
	if job.Type != model.JobTypeBuildIndex || job.IndexName != "words" {
		t.Errorf("Unexpected job %+v", job)
	}

	w = performRequest(router, http.MethodPost, "/indexes/words/_query", services.TermQuery{Op: services.QueryOpPrefix, Term: "term"})
	var result services.TermQueryResult
	decode(t, w, &result)
	if result.Total == 0 {
		t.Error("Expected built words to be queryable")
	}

	w = performRequest(router, http.MethodGet, "/indexes/words/jobs", nil)
	var list struct {
		Total int `json:"total"`
	}
	decode(t, w, &list)
	if list.Total != 1 {
		t.Errorf("Expected 1 job for the index, got %d", list.Total)
	}

	w = performRequest(router, http.MethodPost, "/indexes/words/_build", BuildRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty build, got %d", w.Code)
	}

	w = performRequest(router, http.MethodPost, "/indexes/missing/_build", BuildRequest{Words: words})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a missing index, got %d", w.Code)
	}
}

func TestAsyncPersistAndDelete(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "words", "bad")

	w := performRequest(router, http.MethodPost, "/indexes/words/_persist?async=true", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}
	var accepted struct {
		JobID string `json:"job_id"`
	}
	decode(t, w, &accepted)
	if job := waitForJob(t, router, accepted.JobID); job.Status != model.JobStatusCompleted {
		t.Fatalf("Expected a completed persist, got %s: %s", job.Status, job.Error)
	}

	w = performRequest(router, http.MethodDelete, "/indexes/words?async=true", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}
	decode(t, w, &accepted)
	if job := waitForJob(t, router, accepted.JobID); job.Status != model.JobStatusCompleted {
		t.Fatalf("Expected a completed delete, got %s: %s", job.Status, job.Error)
	}

	w = performRequest(router, http.MethodGet, "/indexes/words", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestDeleteIndexHandler(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))
	setupIndex(t, router, "words")

	w := performRequest(router, http.MethodDelete, "/indexes/words", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	w = performRequest(router, http.MethodDelete, "/indexes/words", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a second delete, got %d", w.Code)
	}
}

func TestJobHandlers(t *testing.T) {
	router := setupTestRouter(setupTestEngine(t))

	w := performRequest(router, http.MethodGet, "/jobs/unknown", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown job, got %d", w.Code)
	}

	w = performRequest(router, http.MethodGet, "/jobs/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if _, ok := body["success_rate"]; !ok {
		t.Error("Expected success_rate in job metrics")
	}
}

// syncOnlyEngine hides the async and job methods of an engine.
type syncOnlyEngine struct {
	services.IndexManager
}

func TestAsyncNotSupported(t *testing.T) {
	router := setupTestRouter(syncOnlyEngine{setupTestEngine(t)})
	setupIndex(t, router, "words", "bad")

	for _, path := range []string{"/indexes/words/_build", "/indexes/words/_persist?async=true"} {
		w := performRequest(router, http.MethodPost, path, BuildRequest{Words: []string{"bank"}})
		if w.Code != http.StatusNotImplemented {
			t.Errorf("%s: expected 501, got %d", path, w.Code)
		}
	}

	w := performRequest(router, http.MethodGet, "/jobs/metrics", nil)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("Expected 501 for job metrics, got %d", w.Code)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	router := gin.New()
	router.Use(MetricsMiddleware(m), CORSMiddleware(), RequestSizeLimitMiddleware(64))
	SetupRoutes(router, setupTestEngine(t), m, nil)

	w := performRequest(router, http.MethodOptions, "/indexes", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for a preflight request, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Error("Expected PATCH among the allowed methods")
	}

	big := WordsRequest{Words: []string{strings.Repeat("a", 200)}}
	w = performRequest(router, http.MethodPut, "/indexes/x/words", big)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an oversized body, got %d", w.Code)
	}

	performRequest(router, http.MethodGet, "/health", nil)
	w = performRequest(router, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `term_index_http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("Expected the health request to be counted, got:\n%s", w.Body.String())
	}
}
