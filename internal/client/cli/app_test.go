package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/client/config"
	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, h http.HandlerFunc, args ...string) (*App, *bytes.Buffer) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	cfg := &config.Config{ServerURL: ts.URL, Token: "tok", Timeout: 5 * time.Second, Args: args}
	return NewApp(cfg, &out), &out
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRun_Usage(t *testing.T) {
	for _, args := range [][]string{nil, {"show"}, {"add", "x"}, {"visit", "1"}, {"frobnicate"}} {
		app, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("no request expected, got %s", r.URL.Path)
		}, args...)
		assert.ErrorIs(t, app.Run(context.Background()), ErrUsage, "args %v", args)
	}
}

func TestRun_InvalidArguments(t *testing.T) {
	noCall := func(w http.ResponseWriter, r *http.Request) { t.Errorf("unexpected request") }

	app, _ := newTestApp(t, noCall, "show", "abc")
	assert.EqualError(t, app.Run(context.Background()), `invalid id "abc"`)

	app, _ = newTestApp(t, noCall, "add", "Oak", "north", "2")
	assert.EqualError(t, app.Run(context.Background()), `invalid latitude "north"`)
}

func TestRun_List(t *testing.T) {
	ts := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trees", r.URL.Query().Get("category"))
		reply(w, http.StatusOK, []models.Pin{
			{ID: 2, Title: "Oak", Category: "trees", VisitsCount: 3, UpdatedAt: ts},
			{ID: 1, Title: "Elm", Category: "trees", UpdatedAt: ts},
		})
	}, "list", "trees")

	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "Oak")
	assert.Contains(t, out.String(), "2026-05-02T08:00:00Z")
}

func TestRun_Show(t *testing.T) {
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pins/5", r.URL.Path)
		reply(w, http.StatusOK, models.PinWithVisits{
			Pin:    models.Pin{ID: 5, Title: "Well", Category: "water", Version: 3, VisitsCount: 1},
			Visits: []models.Visit{{ID: 1, PinID: 5, Name: "Ann", Note: "dry"}},
		})
	}, "show", "5")

	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "#5 Well [water]")
	assert.Contains(t, out.String(), "v3, 1 visits")
	assert.Contains(t, out.String(), "Ann: dry")
}

func TestRun_ShowNotFound(t *testing.T) {
	app, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}, "show", "99")

	assert.ErrorIs(t, app.Run(context.Background()), common.ErrorNotFound)
}

func TestRun_Add(t *testing.T) {
	var body map[string]any
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&body)
		reply(w, http.StatusCreated, models.Pin{ID: 11})
	}, "add", "Oak", "51.5", "-0.12", "trees")

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, "created pin 11\n", out.String())
	assert.Equal(t, "Oak", body["title"])
	assert.Equal(t, 51.5, body["lat"])
	assert.Equal(t, "trees", body["category"])
}

func TestRun_Visit(t *testing.T) {
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pins/4/visits", r.URL.Path)
		reply(w, http.StatusCreated, models.Visit{ID: 8, PinID: 4, Name: "Bo"})
	}, "visit", "4", "Bo", "sunny")

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, "recorded visit 8 on pin 4\n", out.String())
}

func TestRun_Upload(t *testing.T) {
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer storage.Close()

	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("\xff\xd8\xff\xe0jpeg"), 0o600))

	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusCreated, map[string]string{
			"key":       "pins/2026/5/2/x",
			"uploadUrl": storage.URL + "/b/pins/2026/5/2/x",
			"publicUrl": "https://cdn.example/pins/2026/5/2/x",
		})
	}, "upload", path)

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, "https://cdn.example/pins/2026/5/2/x\n", out.String())
}

func TestRun_Stats(t *testing.T) {
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, models.Stats{
			TotalPins: 3, TotalVisits: 7,
			ByCategory: []models.CategoryStats{{Category: "trees", Pins: 2, Visits: 5}, {Category: "water", Pins: 1, Visits: 2}},
		})
	}, "stats")

	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "pins: 3, visits: 7")
	assert.Contains(t, out.String(), "trees")
}
