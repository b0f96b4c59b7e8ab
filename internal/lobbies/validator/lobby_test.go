package validator

import (
	"errors"
	"testing"
	"time"

	"huddle/pkg/logger"
	"huddle/pkg/model"
)

const testUUID = "5f0c7d8e-3b9a-4c51-9a7e-2d6f1e8b4c3a"

func newTestValidator() *LobbyValidator {
	return NewLobbyValidator(logger.Discard(), 6)
}

func TestValidate_JoinRequest(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		req       model.JoinRequest
		wantField string
	}{
		{name: "new participant", req: model.JoinRequest{Name: "Ada"}},
		{name: "returning participant", req: model.JoinRequest{ID: testUUID, Name: "Ada", Color: "#3b82f6"}},
		{name: "missing name", req: model.JoinRequest{}, wantField: "name"},
		{name: "name too long", req: model.JoinRequest{Name: "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"}, wantField: "name"},
		{name: "bad id", req: model.JoinRequest{ID: "123", Name: "Ada"}, wantField: "id"},
		{name: "bad color", req: model.JoinRequest{Name: "Ada", Color: "blue"}, wantField: "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			assertField(t, err, tt.wantField)
		})
	}
}

func TestValidate_LinkRequest(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		code      string
		wantField string
	}{
		{name: "exact code", code: "K7M2QX"},
		{name: "lowercase with dash", code: "k7m-2qx"},
		{name: "ambiguous characters", code: "K0M1QX", wantField: "user_code"},
		{name: "too short", code: "K7M", wantField: "user_code"},
		{name: "empty", code: "", wantField: "user_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&model.LinkRequest{UserCode: tt.code})
			assertField(t, err, tt.wantField)
		})
	}
}

func TestValidate_CreateBlockRequest(t *testing.T) {
	v := newTestValidator()
	start := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		req       model.CreateBlockRequest
		wantField string
	}{
		{
			name: "minimal block",
			req:  model.CreateBlockRequest{OwnerID: testUUID, Start: start, End: start.Add(time.Hour)},
		},
		{
			name:      "missing owner",
			req:       model.CreateBlockRequest{Start: start, End: start.Add(time.Hour)},
			wantField: "owner_id",
		},
		{
			name:      "missing start",
			req:       model.CreateBlockRequest{OwnerID: testUUID, End: start},
			wantField: "start",
		},
		{
			name:      "unknown block type",
			req:       model.CreateBlockRequest{OwnerID: testUUID, Start: start, End: start.Add(time.Hour), BlockType: "maybe"},
			wantField: "block_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			assertField(t, err, tt.wantField)
		})
	}
}

func TestValidate_CreateLobbyRequest(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(&model.CreateLobbyRequest{TimeZone: "Europe/Berlin"}); err != nil {
		t.Errorf("valid time zone rejected: %v", err)
	}
	assertField(t, v.Validate(&model.CreateLobbyRequest{TimeZone: "Mars/Olympus"}), "time_zone")
}

func TestValidationErrors_Details(t *testing.T) {
	errs := ValidationErrors{{Field: "name", Message: "name is required"}}
	details := errs.Details()
	if details["name"] != "name is required" {
		t.Errorf("Details() = %v", details)
	}
}

func assertField(t *testing.T, err error, wantField string) {
	t.Helper()

	if wantField == "" {
		if err != nil {
			t.Fatalf("Validate() unexpected error = %v", err)
		}
		return
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() error = %v, want ValidationErrors", err)
	}
	for _, e := range verrs {
		if e.Field == wantField {
			return
		}
	}
	t.Errorf("Validate() errors = %v, want one on %q", verrs, wantField)
}
