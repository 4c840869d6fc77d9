package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/normalize"
	exportuc "github.com/kailas-cloud/specdex/internal/usecase/export"
	healthuc "github.com/kailas-cloud/specdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/specdex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/specdex/internal/usecase/search"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// filterParams maps GET /records query parameters to catalog fields.
var filterParams = []struct {
	param string
	field field.Name
}{
	{"brand", field.Brand},
	{"model", field.Model},
	{"processor", field.Processor},
	{"ram", field.RAM},
	{"storage", field.Storage},
	{"graphics_card", field.GraphicsCard},
	{"screen_inches", field.ScreenInches},
	{"price", field.Price},
	{"processor_frequency", field.ProcessorFrequency},
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// RunReader reads stored ingestion run reports.
type RunReader interface {
	Get(ctx context.Context, runID string) (dombatch.Report, error)
	Latest(ctx context.Context) (dombatch.Report, error)
}

// Server serves the catalog HTTP API.
type Server struct {
	search        *searchuc.Service
	ingest        *ingestuc.Service
	export        *exportuc.Service
	health        *healthuc.Service
	runs          RunReader
	ingestDir     string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. ingestDir is the directory POST /ingest walks.
func NewServer(
	search *searchuc.Service,
	ingest *ingestuc.Service,
	export *exportuc.Service,
	health *healthuc.Service,
	runs RunReader,
	ingestDir string,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:    search,
		ingest:    ingest,
		export:    export,
		health:    health,
		runs:      runs,
		ingestDir: ingestDir,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, ErrorResponseCodeRecordNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedSource,
			http.StatusUnprocessableEntity, ErrorResponseCodeUnsupportedSource),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorResponseCodeRateLimited),
		sentinelHandler(domain.ErrRecognizerFailed, http.StatusBadGateway, ErrorResponseCodeRecognizerFailed),
	}
	return s
}

// Mount registers every API route on r.
func (s *Server) Mount(r chi.Router) {
	r.Post("/search", s.SearchRecords)
	r.Get("/records", s.ListRecords)
	r.Get("/records/export.xlsx", s.ExportRecords)
	r.Get("/records/{id}", s.GetRecord)
	r.Delete("/records/{id}", s.DeleteRecord)
	r.Put("/records/{id}/spans", s.PutRecordSpans)
	r.Put("/records/{id}/text", s.PutRecordText)
	r.Post("/ingest", s.IngestDirectory)
	r.Get("/ingest/runs/latest", s.GetLatestRun)
	r.Get("/ingest/runs/{id}", s.GetRun)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchRecords handles POST /search.
func (s *Server) SearchRecords(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.search.Search(ctx, req.Query)
	setRecognizerHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := outcomeToAPI(&out)
	resp.Query = req.Query
	writeJSON(w, http.StatusOK, resp)
}

// ListRecords handles GET /records. With any field parameter it runs a
// structured filter, otherwise it pages through the whole catalog.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	fields := field.NewSet()
	for _, fp := range filterParams {
		var raw *string
		if err := runtime.BindQueryParameter("form", true, false, fp.param, query, &raw); err != nil {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
				fmt.Sprintf("Invalid format for parameter %s: %s", fp.param, err))
			return
		}
		if raw == nil {
			continue
		}
		c := normalize.ParseCategory(string(fp.field))
		v := normalize.Normalize(c, *raw)
		if !v.IsPresent() {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
				fmt.Sprintf("Parameter %s has no usable value", fp.param))
			return
		}
		fields.Put(fp.field, v)
	}

	var offset, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "offset", query, &offset); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
			"Invalid format for parameter offset: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
			"Invalid format for parameter limit: "+err.Error())
		return
	}

	if !fields.IsEmpty() {
		out, err := s.search.Filter(r.Context(), fields)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, outcomeToAPI(&out))
		return
	}

	off := derefInt(offset)
	recs, total, err := s.search.All(r.Context(), off, derefInt(limit))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordListResponse{
		Total:  total,
		Offset: max(off, 0),
		Items:  recordsToAPI(recs),
	})
}

// GetRecord handles GET /records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := s.search.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToAPI(&rec))
}

// PutRecordSpans handles PUT /records/{id}/spans.
func (s *Server) PutRecordSpans(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SpansRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res := s.ingest.IngestSpans(r.Context(), id, spansFromAPI(req.Spans))
	if err := res.Err(); err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if res.Status() == dombatch.StatusCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, resultToAPI(res))
}

// DeleteRecord handles DELETE /records/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.ingest.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// maxTextBytes caps a plain-text spec sheet upload.
const maxTextBytes = 1 << 20

// PutRecordText handles PUT /records/{id}/text: the body is the spec sheet
// text, extracted and stored under id.
func (s *Server) PutRecordText(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTextBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	text := string(body)
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "Spec sheet text is empty")
		return
	}

	res := s.ingest.IngestDocument(r.Context(), ingestuc.Source{Path: id, Text: text})
	if err := res.Err(); err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if res.Status() == dombatch.StatusCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, resultToAPI(res))
}

// IngestDirectory handles POST /ingest.
func (s *Server) IngestDirectory(w http.ResponseWriter, r *http.Request) {
	if s.ingestDir == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "Ingest directory is not configured")
		return
	}
	report, err := s.ingest.IngestDirectory(r.Context(), s.ingestDir)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToAPI(&report))
}

// GetLatestRun handles GET /ingest/runs/latest.
func (s *Server) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, domain.ErrNotFound.Error())
		return
	}
	report, err := s.runs.Latest(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToAPI(&report))
}

// GetRun handles GET /ingest/runs/{id}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if s.runs == nil {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, domain.ErrNotFound.Error())
		return
	}
	report, err := s.runs.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToAPI(&report))
}

// ExportRecords handles GET /records/export.xlsx.
func (s *Server) ExportRecords(w http.ResponseWriter, r *http.Request) {
	data, err := s.export.XLSX(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HealthCheck handles GET /health. Only an unreachable store is a 503;
// a degraded recognizer still serves structured filters.
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
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setRecognizerHeaders(w http.ResponseWriter, usage *domain.RecognizerUsage) {
	if usage != nil && usage.Calls > 0 {
		w.Header().Set("X-Recognizer-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
			"Invalid format for parameter id: "+err.Error())
		return "", false
	}
	return id, true
}

func outcomeToAPI(out *searchuc.Outcome) SearchResponse {
	return SearchResponse{
		Fields:    fieldsToAPI(out.Fields),
		Extras:    out.Extras,
		Predicate: predicateToAPI(out.Predicate),
		Total:     out.Total,
		Items:     recordsToAPI(out.Records),
	}
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

// safeSentinels are the domain errors whose message may reach the client.
var safeSentinels = []error{
	domain.ErrRecordNotFound,
	domain.ErrNotFound,
	domain.ErrEmptyQuery,
	domain.ErrInvalidInput,
	domain.ErrUnsupportedSource,
	domain.ErrRateLimited,
	domain.ErrRecognizerFailed,
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range safeSentinels {
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

// resultErrorCode classifies a per-document ingestion failure.
func resultErrorCode(err error) ErrorResponseCode {
	switch {
	case errors.Is(err, domain.ErrUnsupportedSource):
		return ErrorResponseCodeUnsupportedSource
	case errors.Is(err, domain.ErrInvalidInput):
		return ErrorResponseCodeValidationFailed
	case errors.Is(err, domain.ErrRateLimited):
		return ErrorResponseCodeRateLimited
	case errors.Is(err, domain.ErrRecognizerFailed):
		return ErrorResponseCodeRecognizerFailed
	default:
		return ErrorResponseCodeInternalError
	}
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
