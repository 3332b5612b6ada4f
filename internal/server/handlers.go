package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/desertthunder/sheetstats/internal/shared"
	"github.com/desertthunder/sheetstats/internal/web"
)

// Rejection bodies of POST /start.
const (
	RejectRunning = "Running"
	RejectInvalid = "Invalid"
)

// JobManager is the job control surface exposed over HTTP.
//
// [tasks.Manager] is the production implementation.
//
// [tasks.Manager]: github.com/desertthunder/sheetstats/internal/tasks.Manager
type JobManager interface {
	Start(target string) (models.JobStatus, error)
	Status() models.JobStatus
	Targets() []string
}

// StartRequest is the body of POST /start.
type StartRequest struct {
	Worksheet string `json:"worksheet"`
}

// JobHandler serves POST /start and GET /status.
type JobHandler struct {
	manager JobManager
	logger  *log.Logger
}

// NewJobHandler creates a new JobHandler for manager.
func NewJobHandler(manager JobManager, logger *log.Logger) *JobHandler {
	return &JobHandler{manager: manager, logger: logger}
}

// Routes implements [Handler].
func (h *JobHandler) Routes() []string {
	return []string{"/start", "/status"}
}

// ServeHTTP dispatches on path and method.
func (h *JobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/start" && r.Method == http.MethodPost:
		h.start(w, r)
	case r.URL.Path == "/status" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.manager.Status())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// start reads the target from a JSON body, falling back to the worksheet form value.
func (h *JobHandler) start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
			h.logger.Debug("malformed start request", "error", err)
		}
	} else {
		req.Worksheet = r.FormValue("worksheet")
	}

	_, err := h.manager.Start(req.Worksheet)
	switch {
	case err == nil:
		h.logger.Info("job accepted", "target", req.Worksheet)
		writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
	case errors.Is(err, shared.ErrJobRunning):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": RejectRunning})
	case errors.Is(err, shared.ErrInvalidTarget):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": RejectInvalid})
	default:
		h.logger.Error("job start failed", "target", req.Worksheet, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// IndexHandler renders the browser front end.
func IndexHandler(manager JobManager, schedule string, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := web.IndexData{Targets: manager.Targets(), Schedule: schedule}
		if err := web.RenderIndex(w, data); err != nil {
			logger.Error("failed to render index", "error", err)
		}
	})
}

// HealthHandler reports liveness.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Routes registers every endpoint of the service on router.
func Routes(router Router, manager JobManager, schedule string, logger *log.Logger) {
	router.Use(Recover(logger), Logging(logger))
	router.Handle(http.MethodGet, "/{$}", IndexHandler(manager, schedule, logger))
	router.Handle(http.MethodGet, "/health", HealthHandler())
	router.Handler(NewJobHandler(manager, logger))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
