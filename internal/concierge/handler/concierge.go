package handler

import (
	"encoding/json"
	"net/http"
	"venuebook/internal/concierge/service"
	apperrors "venuebook/pkg/errors"
	httputil "venuebook/pkg/http"
	"venuebook/pkg/logger"
	"venuebook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type ConciergeHandler struct {
	service service.ConciergeService
	log     *logger.Logger
}

func NewConciergeHandler(service service.ConciergeService, log *logger.Logger) *ConciergeHandler {
	return &ConciergeHandler{
		service: service,
		log:     log,
	}
}

type ChatRequest struct {
	Message string         `json:"message"`
	Input   map[string]any `json:"input,omitempty"`
}

type ExecuteFlowRequest struct {
	Flow  string         `json:"flow"`
	Input map[string]any `json:"input"`
}

type ListFlowsResponse struct {
	Flows []string `json:"flows"`
}

func (h *ConciergeHandler) Chat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token, ok := h.token(w, r, "Chat")
	if !ok {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Chat", apperrors.InvalidInput("Invalid request body"))
		return
	}

	reply, err := h.service.Chat(r.Context(), token, req.Message, req.Input)
	if err != nil {
		h.writeError(w, "Chat", err)
		return
	}
	h.writeSuccess(w, "Chat", reply)
}

func (h *ConciergeHandler) ExecuteFlow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token, ok := h.token(w, r, "ExecuteFlow")
	if !ok {
		return
	}

	var req ExecuteFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "ExecuteFlow", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.Flow == "" {
		h.writeError(w, "ExecuteFlow", apperrors.InvalidInput("flow name is required"))
		return
	}

	h.log.Info("executing flow", "flow", req.Flow)

	reply, err := h.service.Execute(r.Context(), token, req.Flow, req.Input)
	if err != nil {
		h.writeError(w, "ExecuteFlow", err)
		return
	}
	h.writeSuccess(w, "ExecuteFlow", reply)
}

func (h *ConciergeHandler) ListFlows(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.writeSuccess(w, "ListFlows", ListFlowsResponse{Flows: h.service.Flows()})
}

// token returns the caller's bearer token, forwarded unchanged to the
// reservations and venues services.
func (h *ConciergeHandler) token(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	if _, ok := middleware.ActorFromContext(r.Context()); !ok {
		h.writeError(w, name, apperrors.Unauthorized("authentication required"))
		return "", false
	}
	return middleware.TokenFromContext(r.Context()), true
}

func (h *ConciergeHandler) writeSuccess(w http.ResponseWriter, name string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ConciergeHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ConciergeHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/concierge/chat", h.Chat)
	router.POST("/api/v1/concierge/execute", h.ExecuteFlow)
	router.GET("/api/v1/concierge/flows", h.ListFlows)
}
