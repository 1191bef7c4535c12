package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"roombook/internal/bookings/service"
	"roombook/internal/bookings/validator"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/validation"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, validator *validator.BookingValidator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

// Create answers 200 with the booking for every request that passes input
// validation, whether the saga confirmed or cancelled it.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.UserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}
	if err := h.validator.ValidateRequest(&req); err != nil {
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			httputil.WriteError(w, apperrors.Validation("Invalid booking request", verrs.Details()))
			return
		}
		httputil.WriteError(w, apperrors.Validation(err.Error(), nil))
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), service.CreateBookingInput{
		UserID:    userID,
		RoomID:    req.RoomID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		RequestID: idempotencyKey(r),
	})
	if err != nil {
		h.log.WithContext(r.Context()).Error("failed to create booking", "handler", "Create", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.UserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, err := h.service.ListUserBookings(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, bookings)
}

func (h *BookingHandler) Suggestions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := h.service.GetRoomSuggestions(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, rooms)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", h.Create)
	router.GET("/api/bookings", h.ListMine)
	router.GET("/api/bookings/suggestions", h.Suggestions)
}

// idempotencyKey is the caller's X-Request-Id, or the id the logging
// middleware generated for this request.
func idempotencyKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(httputil.HeaderRequestID)); key != "" {
		return key
	}
	if key := logger.RequestID(r.Context()); key != "" {
		return key
	}
	return uuid.New().String()
}
