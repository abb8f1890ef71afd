package handler

import (
	"encoding/json"
	"net/http"
	"venuebook/internal/venues/service"
	apperrors "venuebook/pkg/errors"
	httputil "venuebook/pkg/http"
	"venuebook/pkg/logger"
	"venuebook/pkg/middleware"
	"venuebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type VenueHandler struct {
	service service.VenueService
	log     *logger.Logger
}

func NewVenueHandler(service service.VenueService, log *logger.Logger) *VenueHandler {
	return &VenueHandler{
		service: service,
		log:     log,
	}
}

func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r, "Create") {
		return
	}

	var venue model.Venue
	if err := json.NewDecoder(r.Body).Decode(&venue); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &venue); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, venue); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *VenueHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	venue, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, venue); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	venues, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, venues, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *VenueHandler) ListActive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	venues, err := h.service.ListActive(r.Context())
	if err != nil {
		h.writeError(w, "ListActive", err)
		return
	}

	if err := httputil.WriteSuccess(w, venues); err != nil {
		h.log.Error("failed to write success response", "handler", "ListActive", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, err := httputil.RequiredQuery(r, "name")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	venues, err := h.service.SearchByName(r.Context(), name)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, venues); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "Update") {
		return
	}

	var updates model.VenueUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	venue, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, venue); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "Deactivate") {
		return
	}

	if err := h.service.Deactivate(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Deactivate", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *VenueHandler) requireAdmin(w http.ResponseWriter, r *http.Request, name string) bool {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, name, apperrors.Unauthorized("authentication required"))
		return false
	}
	if !actor.IsAdmin() {
		h.writeError(w, name, apperrors.Forbidden("admin role required"))
		return false
	}
	return true
}

func (h *VenueHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *VenueHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/venues", h.Create)
	router.GET("/api/v1/venues", h.GetAll)
	router.GET("/api/v1/venues/active", h.ListActive)
	router.GET("/api/v1/venues/search", h.Search)
	router.GET("/api/v1/venues/id/:id", h.GetByID)
	router.PATCH("/api/v1/venues/id/:id", h.Update)
	router.POST("/api/v1/venues/id/:id/deactivate", h.Deactivate)
}
