package config

import (
	"strings"
	"testing"
	"time"
)

func TestHotelCallBudget(t *testing.T) {
	cfg := &Config{HotelTimeout: 2 * time.Second, HotelRetries: 3, HotelRetryBaseDelay: 300 * time.Millisecond}

	// three attempts plus linear backoff of 300ms and 600ms
	if got, want := cfg.HotelCallBudget(), 6900*time.Millisecond; got != want {
		t.Errorf("HotelCallBudget() = %s, want %s", got, want)
	}
	if got, want := cfg.SagaBudget(), 20700*time.Millisecond; got != want {
		t.Errorf("SagaBudget() = %s, want %s", got, want)
	}
}

func TestValidate_Defaults(t *testing.T) {
	for _, service := range []string{ServiceBookings, "hotels"} {
		t.Run(service, func(t *testing.T) {
			if err := Load(service).Validate(); err != nil {
				t.Errorf("expected defaults to validate, got %v", err)
			}
		})
	}
}

func TestValidate_RequestTimeoutCoversSaga(t *testing.T) {
	tests := []struct {
		name           string
		service        string
		requestTimeout string
		hotelTimeout   string
		wantErr        bool
	}{
		{name: "bookings with room to spare", service: ServiceBookings, requestTimeout: "30s", hotelTimeout: "2s"},
		{name: "bookings shorter than saga", service: ServiceBookings, requestTimeout: "5s", hotelTimeout: "2s", wantErr: true},
		{name: "bookings slow hotels", service: ServiceBookings, requestTimeout: "30s", hotelTimeout: "5s", wantErr: true},
		{name: "hotels makes no saga calls", service: "hotels", requestTimeout: "5s", hotelTimeout: "2s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvRequestTimeout, tt.requestTimeout)
			t.Setenv(EnvHotelTimeout, tt.hotelTimeout)
			t.Setenv(EnvHotelRetries, "3")

			err := Load(tt.service).Validate()
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "booking saga budget") {
					t.Fatalf("expected saga budget error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Load(ServiceBookings)
	cfg.Port = "0"
	cfg.MongoURI = "postgres://localhost"
	cfg.HotelRetries = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"1. Port", "2. MongoURI", "HotelRetries must be at least 1"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017")
	if strings.Contains(got, "secret") || !strings.Contains(got, "***:***@db") {
		t.Errorf("expected credentials redacted, got %s", got)
	}
}
