package handler

import (
	"net/http"

	"roombook/internal/hotels/service"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// httprouter does not allow a static segment next to a wildcard, so
// /api/rooms/confirm and /api/rooms/:roomId/hold share one wildcard name.
const targetParam = "target"

type RoomHandler struct {
	locks service.RoomLockService
	rooms service.RoomService
	log   *logger.Logger
}

func NewRoomHandler(locks service.RoomLockService, rooms service.RoomService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		locks: locks,
		rooms: rooms,
		log:   log,
	}
}

func (h *RoomHandler) Hold(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, err := httputil.ParseID(ps.ByName(targetParam), "roomId")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	requestID, err := httputil.QueryString(r, "requestId")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	start, err := httputil.QueryDate(r, "startDate")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	end, err := httputil.QueryDate(r, "endDate")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	lock, err := h.locks.Hold(r.Context(), requestID, roomID, start, end)
	h.writeLock(w, r, "Hold", lock, err)
}

// Transition serves POST /api/rooms/confirm and POST /api/rooms/release.
func (h *RoomHandler) Transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	action := ps.ByName(targetParam)
	if action != "confirm" && action != "release" {
		httputil.WriteError(w, apperrors.NotFound("Route not found"))
		return
	}

	requestID, err := httputil.QueryString(r, "requestId")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var lock *model.RoomReservationLock
	if action == "confirm" {
		lock, err = h.locks.Confirm(r.Context(), requestID)
		h.writeLock(w, r, "Confirm", lock, err)
		return
	}
	lock, err = h.locks.Release(r.Context(), requestID)
	h.writeLock(w, r, "Release", lock, err)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		h.log.WithContext(r.Context()).Error("failed to list rooms", "handler", "List", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, rooms)
}

func (h *RoomHandler) writeLock(w http.ResponseWriter, r *http.Request, op string, lock *model.RoomReservationLock, err error) {
	if err != nil {
		if !apperrors.IsAppError(err) || apperrors.HasCode(err, apperrors.CodeInternal) {
			h.log.WithContext(r.Context()).Error("room lock operation failed", "handler", op, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, lock)
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/rooms", h.List)
	router.POST("/api/rooms/:"+targetParam, h.Transition)
	router.POST("/api/rooms/:"+targetParam+"/hold", h.Hold)
}
