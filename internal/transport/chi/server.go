package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/domain"
	dombatch "github.com/kailas-cloud/alumdex/internal/domain/batch"
	"github.com/kailas-cloud/alumdex/internal/domain/search/filter"
	"github.com/kailas-cloud/alumdex/internal/domain/search/request"
	"github.com/kailas-cloud/alumdex/internal/logger"
	healthuc "github.com/kailas-cloud/alumdex/internal/usecase/health"
	importeruc "github.com/kailas-cloud/alumdex/internal/usecase/importer"
	searchuc "github.com/kailas-cloud/alumdex/internal/usecase/search"
	sessionuc "github.com/kailas-cloud/alumdex/internal/usecase/session"
)

const (
	// maxImportSize caps the number of records in one PUT /v1/records call.
	maxImportSize = 1000
	// maxImportBytes caps the PUT /v1/records body before it is decoded.
	maxImportBytes = 8 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	search        *searchuc.Service
	sessions      *sessionuc.Manager
	importer      *importeruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	sessions *sessionuc.Manager,
	importer *importeruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		sessions: sessions,
		importer: importer,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownScreen, http.StatusNotFound, ErrorResponseCodeScreenNotFound),
		sentinelHandler(domain.ErrUnknownCategory, http.StatusNotFound, ErrorResponseCodeCategoryNotFound),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorResponseCodeSessionNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrSessionClosed, http.StatusGone, ErrorResponseCodeSessionClosed),
		sentinelHandler(domain.ErrSessionLimit, http.StatusServiceUnavailable, ErrorResponseCodeSessionLimit),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
	}
	return s
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:   string(report.Status),
		Checks:   checks,
		Sessions: report.Sessions,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// SearchScreen handles GET /v1/screens/{screen}/search.
func (s *Server) SearchScreen(w http.ResponseWriter, r *http.Request, screen string, params SearchScreenParams) {
	var raw []string
	if params.Filter != nil {
		raw = *params.Filter
	}
	filters, err := filter.ParseSet(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	req, err := request.New(deref(params.Q), filters, deref(params.Limit))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	res, err := s.search.Search(r.Context(), screen, &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Screen: screen,
		Items:  nonNil(res.Records()),
		Total:  res.Matched(),
	})
}

// ScreenOptions handles GET /v1/screens/{screen}/options.
func (s *Server) ScreenOptions(w http.ResponseWriter, r *http.Request, screen string, params ScreenOptionsParams) {
	opts, err := s.search.Options(r.Context(), screen, params.Category, deref(params.Q))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, OptionsResponse{
		Screen:   screen,
		Category: params.Category,
		Options:  nonNil(opts),
	})
}

// MountSession handles POST /v1/sessions.
func (s *Server) MountSession(w http.ResponseWriter, r *http.Request) {
	var req MountSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Screen == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "screen is required")
		return
	}

	sess, err := s.sessions.Mount(r.Context(), req.Screen)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sessionToResponse(sess.Snapshot()))
}

// GetSession handles GET /v1/sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess.Snapshot()))
}

// UnmountSession handles DELETE /v1/sessions/{id}.
func (s *Server) UnmountSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.sessions.Unmount(id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSessionQuery handles PUT /v1/sessions/{id}/query.
func (s *Server) SetSessionQuery(w http.ResponseWriter, r *http.Request, id string, params MutationParams) {
	var req SetQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := sess.SetQuery(req.Query); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, s.settle(sess, params))
}

// ToggleSessionFilter handles POST /v1/sessions/{id}/filters/toggle.
func (s *Server) ToggleSessionFilter(w http.ResponseWriter, r *http.Request, id string, params MutationParams) {
	var req ToggleFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	selected, err := sess.ToggleFilter(req.Option)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ToggleFilterResponse{
		Option:   req.Option,
		Selected: selected,
		Session:  s.settle(sess, params),
	})
}

// ClearSessionFilters handles DELETE /v1/sessions/{id}/filters.
func (s *Server) ClearSessionFilters(w http.ResponseWriter, r *http.Request, id string, params MutationParams) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := sess.ClearFilters(); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, s.settle(sess, params))
}

// SessionOptions handles GET /v1/sessions/{id}/options.
func (s *Server) SessionOptions(w http.ResponseWriter, r *http.Request, id string, params SessionOptionsParams) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if params.Category != nil {
		if err := sess.SelectCategory(*params.Category); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
	}

	opts, err := sess.Options(deref(params.Q))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	snap := sess.Snapshot()
	writeJSON(w, http.StatusOK, OptionsResponse{
		Screen:   snap.Screen,
		Category: snap.Category,
		Options:  nonNil(opts),
	})
}

// UpsertRecords handles PUT /v1/records.
func (s *Server) UpsertRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := importeruc.Decode(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorResponseCodeValidationFailed,
				"request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, safeDomainMessage(err))
		return
	}
	if len(recs) > maxImportSize {
		writeError(w, http.StatusRequestEntityTooLarge, ErrorResponseCodeValidationFailed,
			"too many records in one request")
		return
	}

	results := s.importer.Import(r.Context(), recs)
	sum := dombatch.Summarize(results)

	items := make([]ImportResultItem, len(results))
	for i, res := range results {
		items[i] = importResultToResponse(res)
	}

	writeJSON(w, http.StatusOK, UpsertRecordsResponse{
		Items:     items,
		Succeeded: sum.OK,
		Invalid:   sum.Invalid,
		Failed:    sum.Failed,
	})
}

// settle flushes the pending recomputation when the caller asked for it and
// returns the resulting state.
func (s *Server) settle(sess *sessionuc.Session, params MutationParams) SessionResponse {
	if params.Flush != nil && *params.Flush {
		sess.Flush()
	}
	return sessionToResponse(sess.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// writeParamError is the ErrorHandlerFunc for parameters that fail to bind.
func writeParamError(w http.ResponseWriter, _ *http.Request, err error) {
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid parameter "+pe.ParamName)
		return
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid request")
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Validation errors carry user input, so their full text is returned.
func safeDomainMessage(err error) string {
	for _, v := range []error{domain.ErrInvalidRecord, domain.ErrInvalidQuery, domain.ErrInvalidFilter} {
		if errors.Is(err, v) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrUnknownScreen,
		domain.ErrUnknownCategory,
		domain.ErrSessionNotFound,
		domain.ErrNotFound,
		domain.ErrSessionClosed,
		domain.ErrSessionLimit,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func sessionToResponse(snap sessionuc.Snapshot) SessionResponse {
	filters := snap.Filters
	if filters == nil {
		filters = []string{}
	}
	return SessionResponse{
		Id:         snap.ID,
		Screen:     snap.Screen,
		Query:      snap.Query,
		Filters:    filters,
		Category:   snap.Category,
		Searching:  snap.Searching,
		Generation: snap.Generation,
		Items:      nonNil(snap.Results),
		Total:      len(snap.Results),
	}
}

func importResultToResponse(r dombatch.Result) ImportResultItem {
	item := ImportResultItem{
		Id:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		code := ErrorResponseCodeInternalError
		if r.Status() == dombatch.StatusInvalid {
			code = ErrorResponseCodeValidationFailed
		}
		item.Error = &ErrorResponse{Code: code, Message: safeDomainMessage(r.Err())}
	}
	return item
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
