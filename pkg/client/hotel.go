package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

const headerRequestID = "X-Request-Id"

// HotelClient calls the hotels service room lock API. Every call makes a
// single attempt; retries belong to the caller.
type HotelClient struct {
	httpClient *HttpClient
}

func NewHotelClient(baseURL string, timeout time.Duration) *HotelClient {
	return &HotelClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *HotelClient) Hold(ctx context.Context, requestID string, roomID int64, start, end model.Date) (*model.RoomReservationLock, error) {
	q := url.Values{}
	q.Set("requestId", requestID)
	q.Set("startDate", start.String())
	q.Set("endDate", end.String())

	path := "/api/rooms/" + strconv.FormatInt(roomID, 10) + "/hold"
	resp, err := c.httpClient.POST(ctx, path, q, nil, correlationHeaders(ctx, requestID))
	if err != nil {
		return nil, err
	}
	return decodeLock(resp)
}

func (c *HotelClient) Confirm(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
	return c.transition(ctx, "/api/rooms/confirm", requestID)
}

func (c *HotelClient) Release(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
	return c.transition(ctx, "/api/rooms/release", requestID)
}

func (c *HotelClient) ListRooms(ctx context.Context) ([]model.RoomView, error) {
	resp, err := c.httpClient.GET(ctx, "/api/rooms", correlationHeaders(ctx, ""))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, toAppError(resp)
	}

	var rooms []model.RoomView
	if err := resp.DecodeJSON(&rooms); err != nil {
		return nil, apperrors.Transport("could not decode rooms", err)
	}
	if rooms == nil {
		rooms = []model.RoomView{}
	}
	return rooms, nil
}

func (c *HotelClient) transition(ctx context.Context, path, requestID string) (*model.RoomReservationLock, error) {
	q := url.Values{}
	q.Set("requestId", requestID)

	resp, err := c.httpClient.POST(ctx, path, q, nil, correlationHeaders(ctx, requestID))
	if err != nil {
		return nil, err
	}
	return decodeLock(resp)
}

func decodeLock(resp *Response) (*model.RoomReservationLock, error) {
	if !resp.IsSuccess() {
		return nil, toAppError(resp)
	}
	var lock model.RoomReservationLock
	if err := resp.DecodeJSON(&lock); err != nil {
		return nil, apperrors.Transport("could not decode reservation lock", err)
	}
	return &lock, nil
}

// toAppError maps a non-2xx answer onto the error classes the saga reasons
// about. Only 5xx is retryable.
func toAppError(resp *Response) error {
	body := ErrorBody(resp)

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return apperrors.Transport(fmt.Sprintf("hotels returned %d: %s", resp.StatusCode, body.Error), nil)
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(body.Error)
	case resp.StatusCode == http.StatusConflict:
		if body.Code == apperrors.CodeExpired {
			return apperrors.Expired(body.Error)
		}
		return apperrors.Conflict(body.Error)
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.RateLimited(body.Error)
	default:
		return apperrors.InvalidInput(fmt.Sprintf("hotels rejected request (%d): %s", resp.StatusCode, body.Error))
	}
}

func correlationHeaders(ctx context.Context, fallback string) map[string]string {
	id := logger.RequestID(ctx)
	if id == "" {
		id = fallback
	}
	if id == "" {
		return nil
	}
	return map[string]string{headerRequestID: id}
}
