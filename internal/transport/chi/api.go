package chi

import (
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/alumdex/internal/domain/record"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeNotFound         ErrorResponseCode = "not_found"
	ErrorResponseCodeScreenNotFound   ErrorResponseCode = "screen_not_found"
	ErrorResponseCodeCategoryNotFound ErrorResponseCode = "category_not_found"
	ErrorResponseCodeSessionNotFound  ErrorResponseCode = "session_not_found"
	ErrorResponseCodeSessionClosed    ErrorResponseCode = "session_closed"
	ErrorResponseCodeSessionLimit     ErrorResponseCode = "session_limit_reached"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchResponse is the result of a one-shot screen search.
type SearchResponse struct {
	Screen string          `json:"screen"`
	Items  []record.Record `json:"items"`
	Total  int             `json:"total"`
}

// OptionsResponse lists derived filter options of a category.
type OptionsResponse struct {
	Screen   string   `json:"screen"`
	Category string   `json:"category"`
	Options  []string `json:"options"`
}

// MountSessionRequest is the body of POST /v1/sessions.
type MountSessionRequest struct {
	Screen string `json:"screen"`
}

// SessionResponse is the state of a mounted session.
type SessionResponse struct {
	Id         string          `json:"id"` //nolint:revive // wire name
	Screen     string          `json:"screen"`
	Query      string          `json:"query"`
	Filters    []string        `json:"filters"`
	Category   string          `json:"category"`
	Searching  bool            `json:"searching"`
	Generation uint64          `json:"generation"`
	Items      []record.Record `json:"items"`
	Total      int             `json:"total"`
}

// SetQueryRequest is the body of PUT /v1/sessions/{id}/query.
type SetQueryRequest struct {
	Query string `json:"query"`
}

// ToggleFilterRequest is the body of POST /v1/sessions/{id}/filters/toggle.
type ToggleFilterRequest struct {
	Option string `json:"option"`
}

// ToggleFilterResponse reports the option state after a toggle.
type ToggleFilterResponse struct {
	Option   string          `json:"option"`
	Selected bool            `json:"selected"`
	Session  SessionResponse `json:"session"`
}

// UpsertRecordsRequest is the body of PUT /v1/records.
type UpsertRecordsRequest struct {
	Records []record.Record `json:"records"`
}

// ImportResultItem is the outcome of one imported record.
type ImportResultItem struct {
	Id     string         `json:"id"` //nolint:revive // wire name
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// UpsertRecordsResponse summarizes an import.
type UpsertRecordsResponse struct {
	Items     []ImportResultItem `json:"items"`
	Succeeded int                `json:"succeeded"`
	Invalid   int                `json:"invalid"`
	Failed    int                `json:"failed"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Sessions int               `json:"sessions"`
}

// SearchScreenParams are the query parameters of GET /v1/screens/{screen}/search.
type SearchScreenParams struct {
	Q      *string   `form:"q,omitempty" json:"q,omitempty"`
	Filter *[]string `form:"filter,omitempty" json:"filter,omitempty"`
	Limit  *int      `form:"limit,omitempty" json:"limit,omitempty"`
}

// ScreenOptionsParams are the query parameters of GET /v1/screens/{screen}/options.
type ScreenOptionsParams struct {
	Category string  `form:"category" json:"category"`
	Q        *string `form:"q,omitempty" json:"q,omitempty"`
}

// SessionOptionsParams are the query parameters of GET /v1/sessions/{id}/options.
// Category, when present, also becomes the session's selected category.
type SessionOptionsParams struct {
	Category *string `form:"category,omitempty" json:"category,omitempty"`
	Q        *string `form:"q,omitempty" json:"q,omitempty"`
}

// MutationParams control debounced session mutations. Flush applies the
// pending recomputation before responding.
type MutationParams struct {
	Flush *bool `form:"flush,omitempty" json:"flush,omitempty"`
}

// ServerInterface is implemented by the HTTP handlers.
type ServerInterface interface {
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
	// (GET /v1/screens/{screen}/search)
	SearchScreen(w http.ResponseWriter, r *http.Request, screen string, params SearchScreenParams)
	// (GET /v1/screens/{screen}/options)
	ScreenOptions(w http.ResponseWriter, r *http.Request, screen string, params ScreenOptionsParams)
	// (POST /v1/sessions)
	MountSession(w http.ResponseWriter, r *http.Request)
	// (GET /v1/sessions/{id})
	GetSession(w http.ResponseWriter, r *http.Request, id string)
	// (DELETE /v1/sessions/{id})
	UnmountSession(w http.ResponseWriter, r *http.Request, id string)
	// (PUT /v1/sessions/{id}/query)
	SetSessionQuery(w http.ResponseWriter, r *http.Request, id string, params MutationParams)
	// (POST /v1/sessions/{id}/filters/toggle)
	ToggleSessionFilter(w http.ResponseWriter, r *http.Request, id string, params MutationParams)
	// (DELETE /v1/sessions/{id}/filters)
	ClearSessionFilters(w http.ResponseWriter, r *http.Request, id string, params MutationParams)
	// (GET /v1/sessions/{id}/options)
	SessionOptions(w http.ResponseWriter, r *http.Request, id string, params SessionOptionsParams)
	// (PUT /v1/records)
	UpsertRecords(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       gochi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// serverInterfaceWrapper binds path and query parameters before dispatching.
type serverInterfaceWrapper struct {
	handler      ServerInterface
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, gochi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandler(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return v, true
}

func (siw *serverInterfaceWrapper) queryParam(
	w http.ResponseWriter, r *http.Request, name string, required bool, dest any,
) bool {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		siw.errorHandler(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.handler.HealthCheck(w, r)
}

func (siw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.handler.Metrics(w, r)
}

func (siw *serverInterfaceWrapper) SearchScreen(w http.ResponseWriter, r *http.Request) {
	screen, ok := siw.pathParam(w, r, "screen")
	if !ok {
		return
	}
	var params SearchScreenParams
	if !siw.queryParam(w, r, "q", false, &params.Q) ||
		!siw.queryParam(w, r, "filter", false, &params.Filter) ||
		!siw.queryParam(w, r, "limit", false, &params.Limit) {
		return
	}
	siw.handler.SearchScreen(w, r, screen, params)
}

func (siw *serverInterfaceWrapper) ScreenOptions(w http.ResponseWriter, r *http.Request) {
	screen, ok := siw.pathParam(w, r, "screen")
	if !ok {
		return
	}
	var params ScreenOptionsParams
	if !siw.queryParam(w, r, "category", true, &params.Category) ||
		!siw.queryParam(w, r, "q", false, &params.Q) {
		return
	}
	siw.handler.ScreenOptions(w, r, screen, params)
}

func (siw *serverInterfaceWrapper) MountSession(w http.ResponseWriter, r *http.Request) {
	siw.handler.MountSession(w, r)
}

func (siw *serverInterfaceWrapper) GetSession(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.handler.GetSession(w, r, id)
	}
}

func (siw *serverInterfaceWrapper) UnmountSession(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.handler.UnmountSession(w, r, id)
	}
}

func (siw *serverInterfaceWrapper) mutation(
	w http.ResponseWriter, r *http.Request,
	next func(w http.ResponseWriter, r *http.Request, id string, params MutationParams),
) {
	id, ok := siw.pathParam(w, r, "id")
	if !ok {
		return
	}
	var params MutationParams
	if !siw.queryParam(w, r, "flush", false, &params.Flush) {
		return
	}
	next(w, r, id, params)
}

func (siw *serverInterfaceWrapper) SetSessionQuery(w http.ResponseWriter, r *http.Request) {
	siw.mutation(w, r, siw.handler.SetSessionQuery)
}

func (siw *serverInterfaceWrapper) ToggleSessionFilter(w http.ResponseWriter, r *http.Request) {
	siw.mutation(w, r, siw.handler.ToggleSessionFilter)
}

func (siw *serverInterfaceWrapper) ClearSessionFilters(w http.ResponseWriter, r *http.Request) {
	siw.mutation(w, r, siw.handler.ClearSessionFilters)
}

func (siw *serverInterfaceWrapper) SessionOptions(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathParam(w, r, "id")
	if !ok {
		return
	}
	var params SessionOptionsParams
	if !siw.queryParam(w, r, "category", false, &params.Category) ||
		!siw.queryParam(w, r, "q", false, &params.Q) {
		return
	}
	siw.handler.SessionOptions(w, r, id, params)
}

func (siw *serverInterfaceWrapper) UpsertRecords(w http.ResponseWriter, r *http.Request) {
	siw.handler.UpsertRecords(w, r)
}

// HandlerWithOptions registers every route of si on the base router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = gochi.NewRouter()
	}
	errorHandler := options.ErrorHandlerFunc
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := &serverInterfaceWrapper{handler: si, errorHandler: errorHandler}
	base := options.BaseURL

	r.Get(base+"/health", wrapper.HealthCheck)
	r.Get(base+"/metrics", wrapper.Metrics)
	r.Get(base+"/v1/screens/{screen}/search", wrapper.SearchScreen)
	r.Get(base+"/v1/screens/{screen}/options", wrapper.ScreenOptions)
	r.Post(base+"/v1/sessions", wrapper.MountSession)
	r.Get(base+"/v1/sessions/{id}", wrapper.GetSession)
	r.Delete(base+"/v1/sessions/{id}", wrapper.UnmountSession)
	r.Put(base+"/v1/sessions/{id}/query", wrapper.SetSessionQuery)
	r.Post(base+"/v1/sessions/{id}/filters/toggle", wrapper.ToggleSessionFilter)
	r.Delete(base+"/v1/sessions/{id}/filters", wrapper.ClearSessionFilters)
	r.Get(base+"/v1/sessions/{id}/options", wrapper.SessionOptions)
	r.Put(base+"/v1/records", wrapper.UpsertRecords)

	return r
}
