package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/db/badger"
	domrec "github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/screen"
	recordrepo "github.com/kailas-cloud/alumdex/internal/repository/record"
	healthuc "github.com/kailas-cloud/alumdex/internal/usecase/health"
	importeruc "github.com/kailas-cloud/alumdex/internal/usecase/importer"
	searchuc "github.com/kailas-cloud/alumdex/internal/usecase/search"
	sessionuc "github.com/kailas-cloud/alumdex/internal/usecase/session"
)

var seedRecords = []domrec.Record{
	{
		ID: "a1", Kind: domrec.KindAlumni, FullName: "Ada Lovelace", Company: "Acme",
		Location: "London", Institution: "MIT", Skills: []string{"Go", "Rust"},
	},
	{
		ID: "a2", Kind: domrec.KindAlumni, FullName: "Grace Hopper", Company: "Navy",
		Location: "New York", Institution: "Yale", Skills: []string{"COBOL"},
	},
	{ID: "j1", Kind: domrec.KindJob, Title: "Backend Engineer", Company: "Acme", Location: "Remote"},
}

type testEnv struct {
	handler  http.Handler
	sessions *sessionuc.Manager
	store    *badger.Store
}

func newTestEnv(t *testing.T, apiKeys ...string) *testEnv {
	t.Helper()

	store, err := badger.OpenInMemory()
	require.NoError(t, err)

	repo := recordrepo.New(store, "test:")
	_, err = repo.Upsert(context.Background(), seedRecords[0])
	require.NoError(t, err)
	require.NoError(t, repo.UpsertMany(context.Background(), seedRecords[1:]))

	screens, err := screen.NewRegistry(nil)
	require.NoError(t, err)

	imp, err := importeruc.New(repo, 2)
	require.NoError(t, err)

	sessions := sessionuc.NewManager(repo, screens, zap.NewNop()).
		WithDelay(time.Hour).
		WithMaxSessions(2)

	srv := NewServer(
		searchuc.New(repo, screens),
		sessions,
		imp,
		healthuc.New(store, sessions),
		zap.NewNop(),
	)

	t.Cleanup(func() {
		sessions.Close()
		imp.Release()
		store.Close()
	})

	return &testEnv{
		handler:  NewRouter(srv, RouterConfig{APIKeys: apiKeys}),
		sessions: sessions,
		store:    store,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func ids(recs []domrec.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeBody[HealthResponse](t, rr)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Equal(t, 0, resp.Sessions)
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	env := newTestEnv(t)
	env.store.Close()

	rr := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "error", decodeBody[HealthResponse](t, rr).Status)
}

func TestSearchScreen(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		target string
		want   []string
		total  int
	}{
		{"show none when idle", "/v1/screens/directory/search", []string{}, 0},
		{"show all when idle", "/v1/screens/results/search", []string{"a1", "a2"}, 2},
		{"word prefix", "/v1/screens/directory/search?q=hop", []string{"a2"}, 1},
		{"filter only", "/v1/screens/directory/search?filter=company:acme", []string{"a1"}, 1},
		{"filters are ORed", "/v1/screens/results/search?filter=skill:go&filter=skill:cobol", []string{"a1", "a2"}, 2},
		{"query and filter", "/v1/screens/results/search?q=grace&filter=skill:go", []string{}, 0},
		{"limit keeps total", "/v1/screens/results/search?limit=1", []string{"a1"}, 2},
		{"other kind", "/v1/screens/jobs/search?q=backend", []string{"j1"}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, tc.target, nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			resp := decodeBody[SearchResponse](t, rr)
			assert.Equal(t, tc.want, ids(resp.Items))
			assert.Equal(t, tc.total, resp.Total)
		})
	}
}

func TestSearchScreen_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		target string
		status int
		code   ErrorResponseCode
	}{
		{"unknown screen", "/v1/screens/nope/search", http.StatusNotFound, ErrorResponseCodeScreenNotFound},
		{"malformed filter", "/v1/screens/results/search?filter=company", http.StatusBadRequest,
			ErrorResponseCodeValidationFailed},
		{"negative limit", "/v1/screens/results/search?limit=-1", http.StatusBadRequest,
			ErrorResponseCodeValidationFailed},
		{"non-numeric limit", "/v1/screens/results/search?limit=ten", http.StatusBadRequest,
			ErrorResponseCodeBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, tc.target, nil)
			require.Equal(t, tc.status, rr.Code, rr.Body.String())
			assert.Equal(t, tc.code, decodeBody[ErrorResponse](t, rr).Code)
		})
	}
}

func TestScreenOptions(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/v1/screens/results/options?category=career", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeBody[OptionsResponse](t, rr)
	assert.Equal(t, []string{"company:acme", "company:navy", "skill:cobol", "skill:go", "skill:rust"}, resp.Options)

	rr = env.do(t, http.MethodGet, "/v1/screens/results/options?category=career&q=SKILL:R", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"skill:rust"}, decodeBody[OptionsResponse](t, rr).Options)
}

func TestScreenOptions_Errors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/v1/screens/results/options", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrorResponseCodeBadRequest, decodeBody[ErrorResponse](t, rr).Code)

	rr = env.do(t, http.MethodGet, "/v1/screens/results/options?category=organizer", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrorResponseCodeCategoryNotFound, decodeBody[ErrorResponse](t, rr).Code)
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/v1/sessions", MountSessionRequest{Screen: "directory"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	mounted := decodeBody[SessionResponse](t, rr)
	require.NotEmpty(t, mounted.Id)
	assert.Equal(t, "/v1/sessions/"+mounted.Id, rr.Header().Get("Location"))
	assert.Empty(t, mounted.Items, "directory hides records until searched")
	assert.Equal(t, "education", mounted.Category)
	base := "/v1/sessions/" + mounted.Id

	// Without flush the recomputation is still pending.
	rr = env.do(t, http.MethodPut, base+"/query", SetQueryRequest{Query: "ada"})
	require.Equal(t, http.StatusAccepted, rr.Code)
	pending := decodeBody[SessionResponse](t, rr)
	assert.True(t, pending.Searching)
	assert.Equal(t, "ada", pending.Query)
	assert.Empty(t, pending.Items)

	rr = env.do(t, http.MethodPut, base+"/query?flush=true", SetQueryRequest{Query: "ada"})
	require.Equal(t, http.StatusAccepted, rr.Code)
	settled := decodeBody[SessionResponse](t, rr)
	assert.False(t, settled.Searching)
	assert.Equal(t, []string{"a1"}, ids(settled.Items))

	rr = env.do(t, http.MethodPost, base+"/filters/toggle?flush=true", ToggleFilterRequest{Option: "company:Navy"})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	toggled := decodeBody[ToggleFilterResponse](t, rr)
	assert.True(t, toggled.Selected)
	assert.Equal(t, []string{"company:navy"}, toggled.Session.Filters)
	assert.Empty(t, toggled.Session.Items, "query and filter must both match")

	rr = env.do(t, http.MethodGet, base+"/options?category=career&q=company", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	opts := decodeBody[OptionsResponse](t, rr)
	assert.Equal(t, "career", opts.Category)
	assert.Equal(t, []string{"company:acme", "company:navy"}, opts.Options)

	rr = env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "career", decodeBody[SessionResponse](t, rr).Category)

	rr = env.do(t, http.MethodDelete, base+"/filters?flush=true", nil)
	require.Equal(t, http.StatusAccepted, rr.Code)
	cleared := decodeBody[SessionResponse](t, rr)
	assert.Empty(t, cleared.Filters)
	assert.Equal(t, []string{"a1"}, ids(cleared.Items))

	rr = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrorResponseCodeSessionNotFound, decodeBody[ErrorResponse](t, rr).Code)
}

func TestSession_Errors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/v1/sessions", MountSessionRequest{Screen: "nope"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/sessions", MountSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/sessions", MountSessionRequest{Screen: "map"})
	require.Equal(t, http.StatusCreated, rr.Code)
	base := "/v1/sessions/" + decodeBody[SessionResponse](t, rr).Id

	rr = env.do(t, http.MethodPost, base+"/filters/toggle", ToggleFilterRequest{Option: "no-colon"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrorResponseCodeValidationFailed, decodeBody[ErrorResponse](t, rr).Code)

	rr = env.do(t, http.MethodGet, base+"/options?category=education", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "map screen has no education category")

	rr = env.do(t, http.MethodPut, base+"/query?flush=maybe", SetQueryRequest{Query: "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPut, "/v1/sessions/missing/query", SetQueryRequest{Query: "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSession_Limit(t *testing.T) {
	env := newTestEnv(t)

	for range 2 {
		rr := env.do(t, http.MethodPost, "/v1/sessions", MountSessionRequest{Screen: "results"})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := env.do(t, http.MethodPost, "/v1/sessions", MountSessionRequest{Screen: "results"})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, ErrorResponseCodeSessionLimit, decodeBody[ErrorResponse](t, rr).Code)

	rr = env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[HealthResponse](t, rr)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, 2, resp.Sessions)
}

func TestUpsertRecords(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPut, "/v1/records", UpsertRecordsRequest{Records: []domrec.Record{
		{ID: "a3", Kind: domrec.KindAlumni, FullName: "  Alan Turing ", Company: "Bletchley"},
		{ID: "bad id", Kind: domrec.KindAlumni},
		{ID: "e1", Kind: "Event", Title: "Reunion"},
	}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[UpsertRecordsResponse](t, rr)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Invalid)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "invalid", resp.Items[1].Status)
	require.NotNil(t, resp.Items[1].Error)
	assert.Equal(t, ErrorResponseCodeValidationFailed, resp.Items[1].Error.Code)

	rr = env.do(t, http.MethodGet, "/v1/screens/directory/search?q=turing", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	found := decodeBody[SearchResponse](t, rr)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Alan Turing", found.Items[0].FullName)
}

func TestUpsertRecords_BadBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPut, "/v1/records", strings.NewReader(`{"records": [`))
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrorResponseCodeBadRequest, decodeBody[ErrorResponse](t, rr).Code)
}

func TestUpsertRecords_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t)

	body := `{"records": [{"id": "a9", "kind": "alumni", "bio": "` +
		strings.Repeat("x", maxImportBytes) + `"}]}`
	req := httptest.NewRequest(http.MethodPut, "/v1/records", strings.NewReader(body))
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, ErrorResponseCodeValidationFailed, decodeBody[ErrorResponse](t, rr).Code)
}

func TestUpsertRecords_MistypedAttributeKept(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPut, "/v1/records", strings.NewReader(
		`{"records": [{"id": "a8", "kind": "alumni", "fullName": "Mary Jackson", "graduationYear": "1942"}]}`))
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, decodeBody[UpsertRecordsResponse](t, rr).Succeeded)

	rr = env.do(t, http.MethodGet, "/v1/screens/directory/search?q=mary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	found := decodeBody[SearchResponse](t, rr)
	require.Len(t, found.Items, 1)
	assert.Zero(t, found.Items[0].GraduationYear)
}

func TestRouter_AuthAndRequestID(t *testing.T) {
	env := newTestEnv(t, "secret")

	rr := env.do(t, http.MethodGet, "/v1/screens/results/search", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/screens/results/search", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, ErrorResponseCodeInternalError, decodeBody[ErrorResponse](t, rr).Code)
}
