package readwise

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_BaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").baseURL)
	assert.Equal(t, "http://localhost:1234/api/v2/", NewClient("http://localhost:1234/api/v2").baseURL)
}

func TestClient_ValidateToken(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
		errType    error
	}{
		{
			name:       "valid token",
			statusCode: http.StatusNoContent,
			wantErr:    false,
		},
		{
			name:       "invalid token",
			statusCode: http.StatusUnauthorized,
			wantErr:    true,
			errType:    ErrInvalidToken,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v2/auth/", r.URL.Path)
				assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClient(server.URL + "/api/v2/")
			err := client.ValidateToken(context.Background(), "test-token")

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.errType != nil {
				assert.ErrorIs(t, err, tt.errType)
			}
		})
	}
}

func TestClient_CreateHighlights(t *testing.T) {
	page := 42
	author := "Test Author"

	var received map[string][]map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/highlights/", r.URL.Path)
		assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"title":"Test Book","modified_highlights":[10]}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/api/v2/")
	resp, err := client.CreateHighlights(context.Background(), "test-token", []HighlightInput{
		{
			Text:          "Test highlight text",
			Title:         "Test Book",
			Author:        &author,
			SourceType:    "pocketbook",
			Category:      "books",
			LocationType:  "page",
			Location:      &page,
			HighlightedAt: "2023-01-29T13:46:40Z",
		},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"Test Book","modified_highlights":[10]}]`, string(resp))

	require.Len(t, received["highlights"], 1)
	h := received["highlights"][0]
	assert.Equal(t, "Test highlight text", h["text"])
	assert.Equal(t, float64(42), h["location"])
	assert.Equal(t, "Test Author", h["author"])

	// Absent optional values are sent as null, image_url is left out
	assert.Contains(t, h, "note")
	assert.Nil(t, h["note"])
	assert.Contains(t, h, "highlight_url")
	assert.Nil(t, h["highlight_url"])
	assert.NotContains(t, h, "image_url")
}

func TestClient_CreateHighlights_EmptyBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `[]`, string(body["highlights"]))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).CreateHighlights(context.Background(), "test-token", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(resp))
}

func TestClient_CreateHighlights_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		check      func(t *testing.T, err error)
	}{
		{
			name:       "unauthorized",
			statusCode: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidToken)
			},
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrRateLimited)
			},
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var serverErr *ServerError
				require.True(t, errors.As(err, &serverErr))
				assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
			},
		},
		{
			name:       "bad request",
			statusCode: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
				assert.Contains(t, err.Error(), "unexpected status 400")
				assert.Contains(t, err.Error(), "text is required")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestCount := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requestCount++
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(`{"detail":"text is required"}`))
			}))
			defer server.Close()

			resp, err := NewClient(server.URL).CreateHighlights(context.Background(), "test-token", []HighlightInput{{Text: "x"}})
			require.Error(t, err)
			assert.Nil(t, resp)
			tt.check(t, err)
			assert.Equal(t, 1, requestCount, "push must not be retried")
		})
	}
}

func TestServerError(t *testing.T) {
	err := &ServerError{StatusCode: 503}
	assert.Equal(t, "Readwise server error: HTTP 503", err.Error())
}
