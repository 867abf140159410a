package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", "tok", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListPins_SendsCategoryAndToken(t *testing.T) {
	var gotQuery, gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("category")
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []models.Pin{{ID: 1, Title: "Well", Category: "water & springs"}})
	})

	pins, err := c.ListPins(context.Background(), "water & springs")
	require.NoError(t, err)
	require.Len(t, pins, 1)
	assert.Equal(t, "Well", pins[0].Title)
	assert.Equal(t, "/api/pins", gotPath)
	assert.Equal(t, "water & springs", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestCreatePin_PostsJSON(t *testing.T) {
	var got NewPin
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, models.Pin{ID: 9, Title: got.Title, Lat: got.Lat, Lng: got.Lng, Version: 1})
	})

	pin, err := c.CreatePin(context.Background(), &NewPin{Title: "Oak", Lat: 1.5, Lng: -2})
	require.NoError(t, err)
	assert.Equal(t, int64(9), pin.ID)
	assert.Equal(t, int64(1), pin.Version)
	assert.Equal(t, "Oak", got.Title)
	assert.Equal(t, 1.5, got.Lat)
}

func TestAddVisit_Path(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, http.StatusCreated, models.Visit{ID: 3, PinID: 7, Name: "Ann"})
	})

	v, err := c.AddVisit(context.Background(), 7, &NewVisit{Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "/api/pins/7/visits", gotPath)
	assert.Equal(t, int64(7), v.PinID)
}

func TestErrorMapping(t *testing.T) {
	serverTS := time.Date(2026, 3, 1, 10, 0, 0, 123000, time.UTC)

	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{"not found", http.StatusNotFound, map[string]string{"error": "not found"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, common.ErrorNotFound)
		}},
		{"conflict", http.StatusConflict, map[string]any{"error": "version conflict", "serverUpdatedAt": serverTS}, func(t *testing.T, err error) {
			var ce *common.ConflictError
			require.True(t, errors.As(err, &ce))
			assert.True(t, ce.ServerUpdatedAt.Equal(serverTS))
			assert.ErrorIs(t, err, common.ErrVersionConflict)
		}},
		{"unauthorized", http.StatusUnauthorized, map[string]string{"error": "unauthorized"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, common.ErrorUnauthorized)
		}},
		{"validation", http.StatusBadRequest, map[string]string{"error": "title is required"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.Contains(t, err.Error(), "title is required")
		}},
		{"storage disabled", http.StatusServiceUnavailable, map[string]string{"error": "object storage disabled"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, common.ErrorStorageDisabled)
		}},
		{"other", http.StatusInternalServerError, map[string]string{"error": "internal error"}, func(t *testing.T, err error) {
			var ae *APIError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, 500, ae.Status)
			assert.Equal(t, "internal error", ae.Message)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.GetPin(context.Background(), 1)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestUploadImage_RequestsSlotThenPuts(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")

	var putCT string
	var putBody []byte
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		putCT = r.Header.Get("Content-Type")
		putBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer storage.Close()

	var slotCT string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/uploads", r.URL.Path)
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		slotCT = req["contentType"]
		writeJSON(w, http.StatusCreated, UploadSlot{
			Key:       "pins/2026/3/1/abc",
			UploadURL: storage.URL + "/bucket/pins/2026/3/1/abc?X-Amz-Signature=x",
			PublicURL: "https://cdn.example/pins/2026/3/1/abc",
		})
	})

	u, err := c.UploadImage(context.Background(), png)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/pins/2026/3/1/abc", u)
	assert.Equal(t, "image/png", slotCT)
	assert.Equal(t, "image/png", putCT)
	assert.Equal(t, png, putBody)
}

func TestUploadImage_StorageDisabled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "object storage disabled"})
	})

	_, err := c.UploadImage(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, common.ErrorStorageDisabled)
}
