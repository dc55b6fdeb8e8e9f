package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
)

type Router struct {
	uploader  ports.DocumentUploader
	submitter ports.FolderSubmitter
	reviewer  ports.DocumentReviewer
	reader    ports.FolderReader

	options Options
}

// Options carries transport-level tuning; zero values disable the
// corresponding middleware.
type Options struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxConcurrent    int
	BackpressureWait time.Duration

	// Metrics wraps the handler chain when set.
	Metrics interface {
		Middleware(next http.Handler) http.Handler
	}
}

func NewRouter(
	uploader ports.DocumentUploader,
	submitter ports.FolderSubmitter,
	reviewer ports.DocumentReviewer,
	reader ports.FolderReader,
	options Options,
) *Router {
	return &Router{
		uploader:  uploader,
		submitter: submitter,
		reviewer:  reviewer,
		reader:    reader,
		options:   options,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/folders/{folder_id}/documents", rt.uploadDocument)
	mux.HandleFunc("POST /v1/folders/{folder_id}/submit", rt.submitFolder)
	mux.HandleFunc("POST /v1/folders/{folder_id}/documents/{document_id}/review", rt.reviewDocument)
	mux.HandleFunc("GET /v1/folders/{folder_id}", rt.getFolderView)
	mux.HandleFunc("GET /v1/parents/{parent_id}", rt.getParentView)

	var handler http.Handler = mux
	if rt.options.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.options.MaxConcurrent, rt.options.BackpressureWait)
	}
	if rt.options.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.options.RateLimitRPS, rt.options.RateLimitBurst)
	}
	if rt.options.Metrics != nil {
		handler = rt.options.Metrics.Middleware(handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadRequest struct {
	Type    string         `json:"type"`
	Content domain.Content `json:"content"`
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "actor headers are required")
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Type) == "" {
		writeError(w, http.StatusBadRequest, "document type is required")
		return
	}

	doc, err := rt.uploader.UploadDocument(
		r.Context(),
		r.PathValue("folder_id"),
		domain.DocumentType(req.Type),
		req.Content,
		actor,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type submitRequest struct {
	NotificationEmails []string `json:"notification_emails"`
}

func (rt *Router) submitFolder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "actor headers are required")
		return
	}

	var req submitRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	folder, err := rt.submitter.SubmitFolder(r.Context(), r.PathValue("folder_id"), actor, req.NotificationEmails)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

type reviewRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

func (rt *Router) reviewDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "actor headers are required")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	folder, err := rt.reviewer.ReviewDocument(
		r.Context(),
		r.PathValue("folder_id"),
		r.PathValue("document_id"),
		domain.ReviewDecision(req.Decision),
		actor,
		req.Notes,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (rt *Router) getFolderView(w http.ResponseWriter, r *http.Request) {
	view, err := rt.reader.GetFolderView(r.Context(), r.PathValue("folder_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) getParentView(w http.ResponseWriter, r *http.Request) {
	view, err := rt.reader.GetParentView(r.Context(), r.PathValue("parent_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func actorFrom(r *http.Request) (ports.Actor, bool) {
	actor := ports.Actor{
		ID:   strings.TrimSpace(r.Header.Get("X-Actor-Id")),
		Role: strings.TrimSpace(r.Header.Get("X-Actor-Role")),
	}
	return actor, actor.ID != ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
