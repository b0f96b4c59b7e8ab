package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"huddle/internal/lobbies/service"
	httputil "huddle/pkg/http"
	"huddle/pkg/logger"
	"huddle/pkg/model"
)

type LobbyHandler struct {
	service service.LobbyService
	log     *logger.Logger
}

func NewLobbyHandler(service service.LobbyService, log *logger.Logger) *LobbyHandler {
	return &LobbyHandler{
		service: service,
		log:     log,
	}
}

func (h *LobbyHandler) CreateLobby(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateLobbyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateLobby", err)
		return
	}

	lobby, err := h.service.CreateLobby(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CreateLobby", err)
		return
	}

	if err := httputil.WriteCreated(w, lobby); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateLobby", "operation", "WriteCreated", "error", err)
	}
}

func (h *LobbyHandler) GetSnapshot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	snapshot, err := h.service.GetSnapshot(r.Context(), ps.ByName("code"))
	if err != nil {
		h.writeError(w, "GetSnapshot", err)
		return
	}

	if err := httputil.WriteSuccess(w, snapshot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSnapshot", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.JoinRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Join", err)
		return
	}

	participant, err := h.service.Join(r.Context(), ps.ByName("code"), &req)
	if err != nil {
		h.writeError(w, "Join", err)
		return
	}

	if err := httputil.WriteSuccess(w, participant); err != nil {
		h.log.Error("failed to write success response", "handler", "Join", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LobbyHandler) Link(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.LinkRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Link", err)
		return
	}

	participant, err := h.service.Link(r.Context(), ps.ByName("code"), &req)
	if err != nil {
		h.writeError(w, "Link", err)
		return
	}

	if err := httputil.WriteSuccess(w, participant); err != nil {
		h.log.Error("failed to write success response", "handler", "Link", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.LeaveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Leave", err)
		return
	}

	if err := h.service.Leave(r.Context(), ps.ByName("code"), &req); err != nil {
		h.writeError(w, "Leave", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *LobbyHandler) CreateBlock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CreateBlockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateBlock", err)
		return
	}

	block, err := h.service.CreateBlock(r.Context(), ps.ByName("code"), &req)
	if err != nil {
		h.writeError(w, "CreateBlock", err)
		return
	}

	if err := httputil.WriteCreated(w, block); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateBlock", "operation", "WriteCreated", "error", err)
	}
}

func (h *LobbyHandler) UpdateBlock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.UpdateBlockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateBlock", err)
		return
	}

	block, err := h.service.UpdateBlock(r.Context(), ps.ByName("code"), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "UpdateBlock", err)
		return
	}

	if err := httputil.WriteSuccess(w, block); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateBlock", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LobbyHandler) DeleteBlock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteBlock(r.Context(), ps.ByName("code"), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteBlock", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *LobbyHandler) DaySlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.ParseDate(ps.ByName("date"), time.UTC)
	if err != nil {
		h.writeError(w, "DaySlots", err)
		return
	}

	query := r.URL.Query()
	overlapOnly, err := httputil.ParseBool(query.Get("overlap_only"))
	if err != nil {
		h.writeError(w, "DaySlots", err)
		return
	}

	slots, err := h.service.DaySlots(r.Context(), ps.ByName("code"), model.SlotQuery{
		Date:        date,
		Polarity:    query.Get("polarity"),
		OverlapOnly: overlapOnly,
	})
	if err != nil {
		h.writeError(w, "DaySlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "DaySlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LobbyHandler) MonthGrid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	year, month, err := httputil.ParseYearMonth(ps.ByName("year"), ps.ByName("month"))
	if err != nil {
		h.writeError(w, "MonthGrid", err)
		return
	}

	calendar, err := h.service.MonthGrid(r.Context(), ps.ByName("code"), year, month)
	if err != nil {
		h.writeError(w, "MonthGrid", err)
		return
	}

	if err := httputil.WriteSuccess(w, calendar); err != nil {
		h.log.Error("failed to write success response", "handler", "MonthGrid", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LobbyHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *LobbyHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/lobbies", h.CreateLobby)
	router.GET("/api/v1/lobbies/:code", h.GetSnapshot)
	router.POST("/api/v1/lobbies/:code/join", h.Join)
	router.POST("/api/v1/lobbies/:code/link", h.Link)
	router.POST("/api/v1/lobbies/:code/leave", h.Leave)
	router.POST("/api/v1/lobbies/:code/blocks", h.CreateBlock)
	router.PATCH("/api/v1/lobbies/:code/blocks/:id", h.UpdateBlock)
	router.DELETE("/api/v1/lobbies/:code/blocks/:id", h.DeleteBlock)
	router.GET("/api/v1/lobbies/:code/days/:date/slots", h.DaySlots)
	router.GET("/api/v1/lobbies/:code/calendar/:year/:month", h.MonthGrid)
}
