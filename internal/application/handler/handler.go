// Package handler exposes the instructor-application HTTP surface. Handlers
// stay thin: decode, resolve the principal, call the service, translate
// errors through the shared envelope.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scouthub/internal/application/models"
	"scouthub/internal/application/service"
	"scouthub/internal/principal"
	id "scouthub/pkg/domain"
	dErrors "scouthub/pkg/domain-errors"
	"scouthub/pkg/platform/httputil"
	"scouthub/pkg/requestcontext"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the module's routes. The auth middleware must already have
// attached a validated principal upstream.
func (h *Handler) Register(r chi.Router) {
	r.Route("/instructor-applications", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/templates", h.templates)
		r.Get("/profile-check", h.profileCheck)

		r.Route("/{applicationID}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Post("/submit", h.submit)
			r.Post("/review", h.startReview)
			r.Post("/approve", h.approve)
			r.Post("/reject", h.reject)
			r.Post("/request-changes", h.requestChanges)

			r.Post("/attachments", h.addAttachment)
			r.Route("/attachments/{attachmentID}", func(r chi.Router) {
				r.Delete("/", h.removeAttachment)
				r.Get("/download", h.downloadAttachment)
				r.Post("/review", h.reviewAttachment)
			})
		})
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "authentication required"))
		return
	}
	app, err := h.service.Create(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "authentication required"))
		return
	}
	apps, err := h.service.List(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if apps == nil {
		apps = []*models.InstructorApplication{}
	}
	httputil.WriteJSON(w, http.StatusOK, apps)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, appID, ok := h.principalAndApplication(w, r)
	if !ok {
		return
	}
	app, err := h.service.Get(r.Context(), actor, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) templates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.Templates(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, templates)
}

func (h *Handler) profileCheck(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "authentication required"))
		return
	}
	result, err := h.service.ProfileCheck(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) addAttachment(w http.ResponseWriter, r *http.Request) {
	actor, appID, ok := h.principalAndApplication(w, r)
	if !ok {
		return
	}

	var req models.AddAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "request body is not valid JSON"))
		return
	}

	att, uploadURL, err := h.service.AddAttachment(r.Context(), actor, appID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"attachment": att,
		"upload_url": uploadURL,
	})
}

func (h *Handler) removeAttachment(w http.ResponseWriter, r *http.Request) {
	actor, appID, ok := h.principalAndApplication(w, r)
	if !ok {
		return
	}
	attachmentID, err := id.ParseAttachmentID(chi.URLParam(r, "attachmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RemoveAttachment(r.Context(), actor, appID, attachmentID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, appID, ok := h.principalAndApplication(w, r)
	if !ok {
		return
	}
	attachmentID, err := id.ParseAttachmentID(chi.URLParam(r, "attachmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inline := r.URL.Query().Get("inline") == "true"

	url, err := h.service.AttachmentDownloadURL(r.Context(), actor, appID, attachmentID, inline)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"download_url": url})
}

func (h *Handler) reviewAttachment(w http.ResponseWriter, r *http.Request) {
	actor, appID, ok := h.principalAndApplication(w, r)
	if !ok {
		return
	}
	attachmentID, err := id.ParseAttachmentID(chi.URLParam(r, "attachmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req models.ReviewAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "request body is not valid JSON"))
		return
	}
	verdict, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	att, err := h.service.ReviewAttachment(r.Context(), actor, appID, attachmentID, verdict)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, att)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	actor, appID, ok := h.principalAndApplication(w, r)
	if !ok {
		return
	}
	app, err := h.service.Submit(r.Context(), actor, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) startReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusUnderReview)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusApproved)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusRejected)
}

func (h *Handler) requestChanges(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusToFix)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, target models.Status) {
	actor, appID, ok := h.principalAndApplication(w, r)
	if !ok {
		return
	}
	app, err := h.service.Transition(r.Context(), actor, appID, target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

// principalAndApplication resolves the shared per-route inputs. On failure it
// has already written the error response.
func (h *Handler) principalAndApplication(w http.ResponseWriter, r *http.Request) (*principal.AuthPrincipal, id.ApplicationID, bool) {
	actor, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "authentication required"))
		return nil, id.ApplicationID{}, false
	}
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, id.ApplicationID{}, false
	}
	return actor, appID, true
}
