package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
	"venuebook/internal/reservations/service"
	apperrors "venuebook/pkg/errors"
	httputil "venuebook/pkg/http"
	"venuebook/pkg/logger"
	"venuebook/pkg/middleware"
	"venuebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

type verifyRequest struct {
	Code string `json:"code"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "Create")
	if !ok {
		return
	}

	var req model.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	receipt, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, receipt); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "GetByID")
	if !ok {
		return
	}

	reservation, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", reservation)
}

func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "ListMine")
	if !ok {
		return
	}

	limit, _, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	reservations, err := h.service.ListMine(r.Context(), actor, r.URL.Query().Get("status"), limit)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}
	h.writeSuccess(w, "ListMine", reservations)
}

func (h *ReservationHandler) ListPending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := h.staff(w, r, "ListPending"); !ok {
		return
	}
	limit, _, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListPending", err)
		return
	}

	reservations, err := h.service.ListPending(r.Context(), limit)
	if err != nil {
		h.writeError(w, "ListPending", err)
		return
	}
	h.writeSuccess(w, "ListPending", reservations)
}

func (h *ReservationHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := h.staff(w, r, "Stats"); !ok {
		return
	}

	counts, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}
	h.writeSuccess(w, "Stats", counts)
}

func (h *ReservationHandler) Verify(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := h.actor(w, r, "Verify"); !ok {
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		h.writeError(w, "Verify", apperrors.InvalidInput("A verification code is required"))
		return
	}

	reservation, err := h.service.Verify(r.Context(), ps.ByName("id"), req.Code)
	if err != nil {
		h.writeError(w, "Verify", err)
		return
	}
	h.writeSuccess(w, "Verify", reservation)
}

func (h *ReservationHandler) Resend(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Resend")
	if !ok {
		return
	}

	receipt, err := h.service.ResendCode(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Resend", err)
		return
	}
	h.writeSuccess(w, "Resend", receipt)
}

func (h *ReservationHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.staffTransition(w, r, "Approve", ps.ByName("id"), h.service.Approve)
}

func (h *ReservationHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.staffTransition(w, r, "Reject", ps.ByName("id"), h.service.Reject)
}

func (h *ReservationHandler) AdminCancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.staffTransition(w, r, "AdminCancel", ps.ByName("id"), h.service.AdminCancel)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Cancel")
	if !ok {
		return
	}

	reservation, err := h.service.Cancel(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	h.writeSuccess(w, "Cancel", reservation)
}

func (h *ReservationHandler) Slots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), ps.ByName("venue"), date)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}
	h.writeSuccess(w, "Slots", slots)
}

func (h *ReservationHandler) Calendar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	year, err := httputil.ExtractInt(r, "year", 2000, 9999)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}
	month, err := httputil.ExtractInt(r, "month", 1, 12)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	days, err := h.service.DayAvailability(r.Context(), ps.ByName("venue"), year, time.Month(month))
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}
	h.writeSuccess(w, "Calendar", days)
}

func (h *ReservationHandler) Suggestions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		h.writeError(w, "Suggestions", err)
		return
	}
	start, err := httputil.RequiredQuery(r, "start")
	if err != nil {
		h.writeError(w, "Suggestions", err)
		return
	}
	end, err := httputil.RequiredQuery(r, "end")
	if err != nil {
		h.writeError(w, "Suggestions", err)
		return
	}

	suggestions, err := h.service.SuggestAlternates(r.Context(), ps.ByName("venue"), date, start, end)
	if err != nil {
		h.writeError(w, "Suggestions", err)
		return
	}
	h.writeSuccess(w, "Suggestions", suggestions)
}

func (h *ReservationHandler) VenueReservations(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := h.staff(w, r, "VenueReservations"); !ok {
		return
	}
	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		h.writeError(w, "VenueReservations", err)
		return
	}

	reservations, err := h.service.ListForVenueDate(r.Context(), ps.ByName("venue"), date)
	if err != nil {
		h.writeError(w, "VenueReservations", err)
		return
	}
	h.writeSuccess(w, "VenueReservations", reservations)
}

type transitionFunc func(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)

func (h *ReservationHandler) staffTransition(w http.ResponseWriter, r *http.Request, name, id string, fn transitionFunc) {
	actor, ok := h.staff(w, r, name)
	if !ok {
		return
	}

	reservation, err := fn(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, name, err)
		return
	}
	h.writeSuccess(w, name, reservation)
}

func (h *ReservationHandler) actor(w http.ResponseWriter, r *http.Request, name string) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, name, apperrors.Unauthorized("authentication required"))
		return model.Actor{}, false
	}
	return actor, true
}

func (h *ReservationHandler) staff(w http.ResponseWriter, r *http.Request, name string) (model.Actor, bool) {
	actor, ok := h.actor(w, r, name)
	if !ok {
		return actor, false
	}
	if !actor.IsStaff() {
		h.writeError(w, name, apperrors.Forbidden("staff role required"))
		return actor, false
	}
	return actor, true
}

func (h *ReservationHandler) writeSuccess(w http.ResponseWriter, name string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations/mine", h.ListMine)
	router.GET("/api/v1/reservations/pending", h.ListPending)
	router.GET("/api/v1/reservations/stats", h.Stats)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.POST("/api/v1/reservations/id/:id/verify", h.Verify)
	router.POST("/api/v1/reservations/id/:id/resend", h.Resend)
	router.POST("/api/v1/reservations/id/:id/approve", h.Approve)
	router.POST("/api/v1/reservations/id/:id/reject", h.Reject)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/reservations/id/:id/admin-cancel", h.AdminCancel)

	router.GET("/api/v1/venues/:venue/slots", h.Slots)
	router.GET("/api/v1/venues/:venue/calendar", h.Calendar)
	router.GET("/api/v1/venues/:venue/suggestions", h.Suggestions)
	router.GET("/api/v1/venues/:venue/reservations", h.VenueReservations)
}
