package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Date      string  `json:"date" validate:"required,isodate"`
	StartTime string  `json:"startTime" validate:"required"`
	Kind      string  `json:"kind" validate:"required,oneof=oral written_exam other"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=5"`
}

func TestValidateStruct(t *testing.T) {
	longNotes := "очень длинно"
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr string
	}{
		{name: "valid", req: sampleRequest{Date: "2025-03-11", StartTime: "09:00", Kind: "oral"}},
		{name: "missing date", req: sampleRequest{StartTime: "09:00", Kind: "oral"}, wantErr: "date"},
		{name: "bad date", req: sampleRequest{Date: "11.03.2025", StartTime: "09:00", Kind: "oral"}, wantErr: "YYYY-MM-DD"},
		{name: "missing time", req: sampleRequest{Date: "2025-03-11", Kind: "oral"}, wantErr: "startTime"},
		{name: "bad kind", req: sampleRequest{Date: "2025-03-11", StartTime: "09:00", Kind: "quiz"}, wantErr: "kind"},
		{name: "long optional notes", req: sampleRequest{Date: "2025-03-11", StartTime: "09:00", Kind: "oral", Notes: &longNotes}, wantErr: "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst sampleRequest

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"date":"2025-03-11"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "2025-03-11", dst.Date)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	assert.Error(t, DecodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.Error(t, DecodeJSON(r, &dst))
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondConflict(w, "слот заполнен")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"слот заполнен"}`, w.Body.String())
}
