package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlers_ServiceEndpoints(t *testing.T) {
	t.Parallel()

	h := New(nil)

	tests := []struct {
		name     string
		method   string
		handler  http.HandlerFunc
		wantCode int
		wantBody string
	}{
		{name: "ping", method: http.MethodGet, handler: h.Ping, wantCode: http.StatusOK, wantBody: `{"message":"pong"}`},
		{name: "healthcheck", method: http.MethodHead, handler: h.HealthcheckHead, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			tt.handler(rr, httptest.NewRequest(tt.method, "/", nil))

			require.Equal(t, tt.wantCode, rr.Code)
			if tt.wantBody == "" {
				require.Zero(t, rr.Body.Len())
				return
			}
			require.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestHandlers_Fallbacks(t *testing.T) {
	t.Parallel()

	h := New(nil)

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
		wantErr  string
	}{
		{name: "not found", handler: h.NotFound, wantCode: http.StatusNotFound, wantErr: codeNotFound},
		{name: "method not allowed", handler: h.MethodNotAllowed, wantCode: http.StatusMethodNotAllowed, wantErr: "method_not_allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			tt.handler(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

			require.Equal(t, tt.wantCode, rr.Code)
			var body errResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			require.Equal(t, tt.wantErr, body.Code)
			require.NotEmpty(t, body.Error)
		})
	}
}
