// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/MikeStrusz/nmf-dashboard/internal/auth"
	"github.com/MikeStrusz/nmf-dashboard/internal/cache"
	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/database"
	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// testDBSemaphore serializes DuckDB usage across tests. Concurrent CGO
// calls from parallel tests can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        8501,
			Environment: "development",
		},
		Graph: config.GraphConfig{
			ReferenceArtist: "Lucy Dacus",
			MaxNeighbors:    3,
			LayoutSeed:      42,
		},
		Security: config.SecurityConfig{
			AuthMode:          "none",
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
	}
}

// testServer bundles the pieces tests poke at directly.
type testServer struct {
	handler *Handler
	db      *database.DB
	router  http.Handler
	cfg     *config.Config
}

// setupTestServer builds a full router over an in-memory database with
// auth_mode none, so every route runs as admin.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	store, err := cache.New("", time.Hour)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	cfg := testConfig()
	graphSvc := NewGraphService(db, &cfg.Graph, store)
	handler := NewHandler(HandlerDeps{
		DB:       db,
		Config:   cfg,
		GraphSvc: graphSvc,
	})

	enforcer, err := auth.NewEnforcer()
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}
	authMw := auth.NewMiddleware(nil, enforcer, cfg.Security.AuthMode)

	return &testServer{
		handler: handler,
		db:      db,
		router:  NewRouter(handler, authMw, cfg).Setup(),
		cfg:     cfg,
	}
}

// doRequest runs a request through the router, JSON-encoding body when
// non-nil.
func (ts *testServer) doRequest(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope unwraps the standard API response envelope.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return &resp
}

// decodeData re-marshals the envelope's data field into a typed value.
func decodeData(t *testing.T, resp *models.APIResponse, out interface{}) {
	t.Helper()
	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("failed to re-marshal data: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", resp.Error, code)
	}
}

func week(s string) time.Time {
	w, err := time.Parse(weekParamLayout, s)
	if err != nil {
		panic(err)
	}
	return w
}

// seedWeek inserts one prediction week directly through the store layer.
func seedWeek(t *testing.T, db *database.DB, weekOf time.Time, preds []models.Prediction) {
	t.Helper()
	if err := db.ReplacePredictionWeek(context.Background(), weekOf, preds); err != nil {
		t.Fatalf("failed to seed prediction week: %v", err)
	}
}

// writeCSV drops a temp CSV file and returns its path.
func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// seedGraph loads a small similarity graph: boygenius and Julien Baker
// connect to Lucy Dacus, Hozier comes from the NMF list with no edges.
func seedGraph(t *testing.T, db *database.DB) {
	t.Helper()
	dir := t.TempDir()

	ratings := writeCSV(t, dir, "ratings.csv",
		"\"Artist Name(s)\",playlist_origin\n"+
			"Lucy Dacus,df_liked\n"+
			"boygenius,df_liked\n"+
			"Julien Baker,df_liked\n"+
			"Hozier,df_nmf\n")
	if err := db.ImportArtistRatingsCSV(context.Background(), ratings); err != nil {
		t.Fatalf("failed to import ratings: %v", err)
	}

	similar := writeCSV(t, dir, "similar.csv",
		"Artist,\"Similar Artists\"\n"+
			"boygenius,\"Lucy Dacus, Julien Baker\"\n"+
			"Julien Baker,\"Lucy Dacus, Phoebe Bridgers\"\n")
	if err := db.ImportSimilarArtistsCSV(context.Background(), similar, "liked"); err != nil {
		t.Fatalf("failed to import similar artists: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var health HealthStatus
	decodeData(t, decodeEnvelope(t, rec), &health)
	if health.Status != "ok" {
		t.Errorf("health status = %q, want ok", health.Status)
	}
	if health.Database != "ok" {
		t.Errorf("database status = %q, want ok", health.Database)
	}
}

func TestHealthLiveAndReady(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		rec := ts.doRequest(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestGetPredictionsEmpty(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/predictions", nil)
	assertErrorCode(t, rec, http.StatusNotFound, "NO_PREDICTIONS")
}

func TestPredictionsRoundTrip(t *testing.T) {
	ts := setupTestServer(t)

	older := week("2026-08-14")
	latest := week("2026-08-21")
	seedWeek(t, ts.db, older, []models.Prediction{
		{Artist: "Big Thief", Album: "Double Infinity", AvgScore: 8.4},
	})
	seedWeek(t, ts.db, latest, []models.Prediction{
		{Artist: "Lucy Dacus", Album: "Forever Is A Feeling", AvgScore: 9.1},
		{Artist: "Hozier", Album: "Unreal Unearth", AvgScore: 7.7},
	})

	// No week_of parameter resolves to the latest week.
	rec := ts.doRequest(t, http.MethodGet, "/api/v1/predictions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var preds PredictionsResponse
	decodeData(t, decodeEnvelope(t, rec), &preds)
	if preds.WeekOf != "2026-08-21" {
		t.Errorf("week_of = %q, want 2026-08-21", preds.WeekOf)
	}
	if len(preds.Albums) != 2 {
		t.Fatalf("got %d albums, want 2", len(preds.Albums))
	}
	if preds.Albums[0].Artist != "Lucy Dacus" {
		t.Errorf("top album = %q, want Lucy Dacus (score descending)", preds.Albums[0].Artist)
	}

	// Explicit week_of selects the archive week.
	rec = ts.doRequest(t, http.MethodGet, "/api/v1/predictions?week_of=2026-08-14", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("archive status = %d, want 200", rec.Code)
	}
	decodeData(t, decodeEnvelope(t, rec), &preds)
	if len(preds.Albums) != 1 || preds.Albums[0].Artist != "Big Thief" {
		t.Errorf("archive albums = %+v, want one Big Thief entry", preds.Albums)
	}

	// Week list is newest first.
	rec = ts.doRequest(t, http.MethodGet, "/api/v1/predictions/weeks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("weeks status = %d, want 200", rec.Code)
	}
	var weeks []PredictionWeekResponse
	decodeData(t, decodeEnvelope(t, rec), &weeks)
	if len(weeks) != 2 || weeks[0].WeekOf != "2026-08-21" {
		t.Errorf("weeks = %+v, want 2 entries newest first", weeks)
	}
}

func TestGetPredictionsInvalidWeekParam(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/predictions?week_of=Friday", nil)
	assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_PARAM")
}

func TestFeedbackLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	body := models.Feedback{
		Artist:  "Lucy Dacus",
		Album:   "Forever Is A Feeling",
		Verdict: "like",
		Review:  "album of the year contender",
	}
	rec := ts.doRequest(t, http.MethodPost, "/api/v1/feedback", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	params := url.Values{"artist": {body.Artist}, "album": {body.Album}}
	rec = ts.doRequest(t, http.MethodGet, "/api/v1/feedback?"+params.Encode(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	var got models.Feedback
	decodeData(t, decodeEnvelope(t, rec), &got)
	if got.Verdict != "like" || got.Review != body.Review {
		t.Errorf("feedback = %+v, want saved verdict and review", got)
	}

	rec = ts.doRequest(t, http.MethodDelete, "/api/v1/feedback?"+params.Encode(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}

	rec = ts.doRequest(t, http.MethodGet, "/api/v1/feedback?"+params.Encode(), nil)
	assertErrorCode(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestSaveFeedbackRejectsInvalidVerdict(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodPost, "/api/v1/feedback", models.Feedback{
		Artist:  "Lucy Dacus",
		Album:   "Forever Is A Feeling",
		Verdict: "banger",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPublicFeedbackFlow(t *testing.T) {
	ts := setupTestServer(t)

	for _, verdict := range []string{"like", "like", "dislike"} {
		rec := ts.doRequest(t, http.MethodPost, "/api/v1/public-feedback", models.PublicFeedback{
			Artist:  "Hozier",
			Album:   "Unreal Unearth",
			Verdict: verdict,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("submit status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
		}
	}

	params := url.Values{"artist": {"Hozier"}, "album": {"Unreal Unearth"}}
	rec := ts.doRequest(t, http.MethodGet, "/api/v1/public-feedback?"+params.Encode(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, want 200", rec.Code)
	}

	var summary PublicFeedbackSummary
	decodeData(t, decodeEnvelope(t, rec), &summary)
	if summary.Stats == nil || summary.Stats.Likes != 2 || summary.Stats.Dislikes != 1 {
		t.Errorf("stats = %+v, want 2 likes and 1 dislike", summary.Stats)
	}
	if len(summary.Recent) != 3 {
		t.Errorf("got %d recent entries, want 3", len(summary.Recent))
	}
}

func TestNukeLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	weekOf := week("2026-08-21")
	seedWeek(t, ts.db, weekOf, []models.Prediction{
		{Artist: "Lucy Dacus", Album: "Forever Is A Feeling", AvgScore: 9.1},
		{Artist: "Hozier", Album: "Unreal Unearth (Deluxe)", AvgScore: 7.7},
	})

	rec := ts.doRequest(t, http.MethodPost, "/api/v1/fixer/nuke", models.NukedAlbum{
		Artist: "Hozier",
		Album:  "Unreal Unearth (Deluxe)",
		Reason: "deluxe reissue",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("nuke status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	// Nuked albums disappear from the dashboard.
	rec = ts.doRequest(t, http.MethodGet, "/api/v1/predictions", nil)
	var preds PredictionsResponse
	decodeData(t, decodeEnvelope(t, rec), &preds)
	if len(preds.Albums) != 1 || preds.Albums[0].Artist != "Lucy Dacus" {
		t.Fatalf("albums after nuke = %+v, want only Lucy Dacus", preds.Albums)
	}

	rec = ts.doRequest(t, http.MethodGet, "/api/v1/fixer/nuked", nil)
	var nuked []models.NukedAlbum
	decodeData(t, decodeEnvelope(t, rec), &nuked)
	if len(nuked) != 1 || nuked[0].Reason != "deluxe reissue" {
		t.Fatalf("nuked list = %+v, want the Hozier entry", nuked)
	}

	params := url.Values{"artist": {"Hozier"}, "album": {"Unreal Unearth (Deluxe)"}}
	rec = ts.doRequest(t, http.MethodPost, "/api/v1/fixer/restore?"+params.Encode(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	rec = ts.doRequest(t, http.MethodGet, "/api/v1/predictions", nil)
	decodeData(t, decodeEnvelope(t, rec), &preds)
	if len(preds.Albums) != 2 {
		t.Errorf("albums after restore = %d, want 2", len(preds.Albums))
	}
}

func TestRestoreUnknownAlbum(t *testing.T) {
	ts := setupTestServer(t)

	params := url.Values{"artist": {"Nobody"}, "album": {"Nothing"}}
	rec := ts.doRequest(t, http.MethodPost, "/api/v1/fixer/restore?"+params.Encode(), nil)
	assertErrorCode(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestNukeCandidates(t *testing.T) {
	ts := setupTestServer(t)

	seedWeek(t, ts.db, week("2026-08-21"), []models.Prediction{
		{Artist: "Lucy Dacus", Album: "Forever Is A Feeling", AvgScore: 9.1},
		{Artist: "Hozier", Album: "Unreal Unearth (Deluxe)", AvgScore: 7.7},
		{Artist: "Big Thief", Album: "Live at Bowery Ballroom", AvgScore: 6.2},
	})

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/fixer/nuke-candidates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var candidates []models.Prediction
	decodeData(t, decodeEnvelope(t, rec), &candidates)
	if len(candidates) != 2 {
		t.Errorf("got %d candidates, want 2 (Deluxe and Live titles)", len(candidates))
	}
}

func TestUpdateCoverAndLink(t *testing.T) {
	ts := setupTestServer(t)

	weekOf := week("2026-08-21")
	seedWeek(t, ts.db, weekOf, []models.Prediction{
		{Artist: "Lucy Dacus", Album: "Forever Is A Feeling", AvgScore: 9.1},
	})

	// No prober configured, so the URL is accepted without probing.
	rec := ts.doRequest(t, http.MethodPost, "/api/v1/fixer/cover", models.AlbumCover{
		Artist:   "Lucy Dacus",
		Album:    "Forever Is A Feeling",
		CoverURL: "https://img.example/fiaf.jpg",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("cover status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	rec = ts.doRequest(t, http.MethodPost, "/api/v1/fixer/link", models.AlbumLink{
		Artist:     "Lucy Dacus",
		Album:      "Forever Is A Feeling",
		SpotifyURL: "https://open.spotify.com/album/xyz",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("link status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	// Corrections are joined into the prediction payload.
	rec = ts.doRequest(t, http.MethodGet, "/api/v1/predictions", nil)
	var preds PredictionsResponse
	decodeData(t, decodeEnvelope(t, rec), &preds)
	if len(preds.Albums) != 1 {
		t.Fatalf("got %d albums, want 1", len(preds.Albums))
	}
	if preds.Albums[0].CoverURL != "https://img.example/fiaf.jpg" {
		t.Errorf("cover_url = %q, want the fixed URL", preds.Albums[0].CoverURL)
	}
	if preds.Albums[0].SpotifyURL != "https://open.spotify.com/album/xyz" {
		t.Errorf("spotify_url = %q, want the fixed URL", preds.Albums[0].SpotifyURL)
	}
}

func TestMissingArtwork(t *testing.T) {
	ts := setupTestServer(t)

	seedWeek(t, ts.db, week("2026-08-21"), []models.Prediction{
		{Artist: "Lucy Dacus", Album: "Forever Is A Feeling", AvgScore: 9.1},
		{Artist: "Hozier", Album: "Unreal Unearth", AvgScore: 7.7},
	})
	if err := ts.db.UpsertAlbumCover(context.Background(), &models.AlbumCover{
		Artist: "Lucy Dacus", Album: "Forever Is A Feeling", CoverURL: "https://img.example/fiaf.jpg",
	}); err != nil {
		t.Fatalf("failed to seed cover: %v", err)
	}

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/fixer/missing-artwork", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var missing []models.Prediction
	decodeData(t, decodeEnvelope(t, rec), &missing)
	if len(missing) != 1 || missing[0].Artist != "Hozier" {
		t.Errorf("missing = %+v, want only the Hozier album", missing)
	}
}

func TestDacusNumberEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	seedGraph(t, ts.db)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/graph/dacus-number?artist=boygenius", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var result DacusResponse
	decodeData(t, decodeEnvelope(t, rec), &result)
	if result.Outcome != "found" {
		t.Fatalf("outcome = %q, want found", result.Outcome)
	}
	if result.Distance != 1 {
		t.Errorf("distance = %d, want 1", result.Distance)
	}
	if len(result.Path) != 2 || result.Path[0] != "boygenius" || result.Path[1] != "Lucy Dacus" {
		t.Errorf("path = %v, want [boygenius Lucy Dacus]", result.Path)
	}
	if result.Reference != "Lucy Dacus" {
		t.Errorf("reference = %q, want Lucy Dacus", result.Reference)
	}
}

func TestDacusNumberUnknownArtist(t *testing.T) {
	ts := setupTestServer(t)
	seedGraph(t, ts.db)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/graph/dacus-number?artist=Nobody", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var result DacusResponse
	decodeData(t, decodeEnvelope(t, rec), &result)
	if result.Outcome != "not_found" {
		t.Errorf("outcome = %q, want not_found", result.Outcome)
	}
}

func TestDacusNumberNMFArtistUnreachable(t *testing.T) {
	ts := setupTestServer(t)
	seedGraph(t, ts.db)

	// Hozier arrives from the NMF list with no similarity edges. He is in
	// the game graph, so the answer is unreachable, not not_found.
	rec := ts.doRequest(t, http.MethodGet, "/api/v1/graph/dacus-number?artist=Hozier", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var result DacusResponse
	decodeData(t, decodeEnvelope(t, rec), &result)
	if result.Outcome != "unreachable" {
		t.Errorf("outcome = %q, want unreachable", result.Outcome)
	}
}

func TestListArtists(t *testing.T) {
	ts := setupTestServer(t)
	seedGraph(t, ts.db)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/graph/artists", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var artists []ArtistEntry
	decodeData(t, decodeEnvelope(t, rec), &artists)

	names := make(map[string]string, len(artists))
	for _, a := range artists {
		names[a.Name] = a.Category
	}
	// NMF-only artists stay searchable alongside the connected graph.
	if _, ok := names["Hozier"]; !ok {
		t.Errorf("artists = %v, want Hozier in the list", names)
	}
	if _, ok := names["Phoebe Bridgers"]; !ok {
		t.Errorf("artists = %v, want similar-artist nodes in the list", names)
	}
	for i := 1; i < len(artists); i++ {
		if artists[i].Name < artists[i-1].Name {
			t.Fatalf("artists not sorted: %v", artists)
		}
	}

	// Search matches a case-insensitive substring.
	rec = ts.doRequest(t, http.MethodGet, "/api/v1/graph/artists?search=julien", nil)
	decodeData(t, decodeEnvelope(t, rec), &artists)
	if len(artists) != 1 || artists[0].Name != "Julien Baker" {
		t.Errorf("search result = %v, want only Julien Baker", artists)
	}
}

func TestDacusNumberMissingParam(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/graph/dacus-number", nil)
	assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_PARAM")
}

func TestFigureEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	seedGraph(t, ts.db)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/graph/figure?artist=boygenius", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var fig FigureResponse
	decodeData(t, decodeEnvelope(t, rec), &fig)
	if len(fig.Figure.Nodes) == 0 || len(fig.Figure.Edges) == 0 {
		t.Errorf("figure = %d nodes %d edges, want a populated figure",
			len(fig.Figure.Nodes), len(fig.Figure.Edges))
	}
	if fig.Seed != ts.cfg.Graph.LayoutSeed {
		t.Errorf("seed = %d, want %d", fig.Seed, ts.cfg.Graph.LayoutSeed)
	}
}

func TestFigureNoPath(t *testing.T) {
	ts := setupTestServer(t)
	seedGraph(t, ts.db)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/graph/figure?artist=Nobody", nil)
	assertErrorCode(t, rec, http.StatusNotFound, "NO_PATH")
}

func TestSimilarArtistsEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	dir := t.TempDir()
	path := writeCSV(t, dir, "nmf_similar.csv",
		"Artist,\"Similar Artists\"\n"+
			"Hozier,\"Noah Kahan, Dermot Kennedy\"\n")
	if err := ts.db.ImportSimilarArtistsCSV(context.Background(), path, "nmf"); err != nil {
		t.Fatalf("failed to import nmf similar artists: %v", err)
	}

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/graph/similar?artist=Hozier", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var similar []string
	decodeData(t, decodeEnvelope(t, rec), &similar)
	if len(similar) != 2 || similar[0] != "Noah Kahan" {
		t.Errorf("similar = %v, want [Noah Kahan Dermot Kennedy]", similar)
	}

	// Unknown artists return an empty list, not an error.
	rec = ts.doRequest(t, http.MethodGet, "/api/v1/graph/similar?artist=Nobody", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown artist status = %d, want 200", rec.Code)
	}
	decodeData(t, decodeEnvelope(t, rec), &similar)
	if len(similar) != 0 {
		t.Errorf("similar = %v, want empty", similar)
	}
}

func TestBackupRoutesDisabled(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodPost, "/api/v1/backups", nil)
	assertErrorCode(t, rec, http.StatusNotFound, "BACKUP_DISABLED")

	rec = ts.doRequest(t, http.MethodGet, "/api/v1/backups", nil)
	assertErrorCode(t, rec, http.StatusNotFound, "BACKUP_DISABLED")
}

func TestReimportDisabled(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodPost, "/api/v1/admin/reimport", nil)
	assertErrorCode(t, rec, http.StatusNotFound, "IMPORT_DISABLED")
}

func TestLoginDisabledInOpenMode(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		Username: "mike",
		Password: "password123",
	})
	assertErrorCode(t, rec, http.StatusNotFound, "AUTH_DISABLED")
}

func TestPredictionsGenreFilter(t *testing.T) {
	ts := setupTestServer(t)

	seedWeek(t, ts.db, week("2026-08-21"), []models.Prediction{
		{Artist: "Lucy Dacus", Album: "Forever Is A Feeling", Genres: "indie rock, singer-songwriter", AvgScore: 9.1},
		{Artist: "Hozier", Album: "Unreal Unearth", Genres: "folk rock", AvgScore: 7.7},
	})

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/predictions?genre=indie", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var preds PredictionsResponse
	decodeData(t, decodeEnvelope(t, rec), &preds)
	if len(preds.Albums) != 1 || preds.Albums[0].Artist != "Lucy Dacus" {
		t.Errorf("albums = %+v, want only the indie rock album", preds.Albums)
	}

	// Genre matching is a case-insensitive substring.
	rec = ts.doRequest(t, http.MethodGet, "/api/v1/predictions?genre=ROCK", nil)
	decodeData(t, decodeEnvelope(t, rec), &preds)
	if len(preds.Albums) != 2 {
		t.Errorf("got %d albums for genre=ROCK, want 2", len(preds.Albums))
	}

	// A genre nothing matches behaves like an empty week.
	rec = ts.doRequest(t, http.MethodGet, "/api/v1/predictions?genre=vaporwave", nil)
	assertErrorCode(t, rec, http.StatusNotFound, "WEEK_NOT_FOUND")
}

func TestMissingLinks(t *testing.T) {
	ts := setupTestServer(t)

	seedWeek(t, ts.db, week("2026-08-21"), []models.Prediction{
		{Artist: "Lucy Dacus", Album: "Forever Is A Feeling", AvgScore: 9.1},
		{Artist: "Hozier", Album: "Unreal Unearth", AvgScore: 7.7},
	})
	if err := ts.db.UpsertAlbumLink(context.Background(), &models.AlbumLink{
		Artist: "Lucy Dacus", Album: "Forever Is A Feeling", SpotifyURL: "https://open.spotify.com/album/fiaf",
	}); err != nil {
		t.Fatalf("failed to seed link: %v", err)
	}

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/fixer/missing-links", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var missing []models.Prediction
	decodeData(t, decodeEnvelope(t, rec), &missing)
	if len(missing) != 1 || missing[0].Artist != "Hozier" {
		t.Errorf("missing = %+v, want only the Hozier album", missing)
	}
}

func TestPublicFeedbackModeration(t *testing.T) {
	ts := setupTestServer(t)

	entries := []models.PublicFeedback{
		{Artist: "Hozier", Album: "Unreal Unearth", Verdict: "like", Username: "phoebefan"},
		{Artist: "Hozier", Album: "Unreal Unearth", Verdict: "dislike"},
		{Artist: "Lucy Dacus", Album: "Forever Is A Feeling", Verdict: "like", Review: "spam spam spam"},
	}
	for _, e := range entries {
		rec := ts.doRequest(t, http.MethodPost, "/api/v1/public-feedback", e)
		if rec.Code != http.StatusCreated {
			t.Fatalf("submit status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
		}
	}

	// Username filter matches as a substring.
	rec := ts.doRequest(t, http.MethodGet, "/api/v1/public-feedback/reviews?username=phoebe", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var reviews []models.PublicFeedback
	decodeData(t, decodeEnvelope(t, rec), &reviews)
	if len(reviews) != 1 || reviews[0].Username != "phoebefan" {
		t.Fatalf("reviews = %+v, want the single phoebefan entry", reviews)
	}

	// Delete one row by ID.
	rec = ts.doRequest(t, http.MethodDelete, "/api/v1/public-feedback/"+reviews[0].ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	rec = ts.doRequest(t, http.MethodDelete, "/api/v1/public-feedback/"+reviews[0].ID, nil)
	assertErrorCode(t, rec, http.StatusNotFound, "NOT_FOUND")

	// Bulk delete the anonymous rows, leaving nothing but named entries.
	rec = ts.doRequest(t, http.MethodPost, "/api/v1/public-feedback/bulk-delete", models.BulkDeleteRequest{
		Mode: models.BulkDeleteAnonymous,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk delete status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var result map[string]int64
	decodeData(t, decodeEnvelope(t, rec), &result)
	if result["deleted"] != 2 {
		t.Errorf("deleted = %d, want 2 anonymous rows", result["deleted"])
	}

	rec = ts.doRequest(t, http.MethodGet, "/api/v1/public-feedback/reviews", nil)
	decodeData(t, decodeEnvelope(t, rec), &reviews)
	if len(reviews) != 0 {
		t.Errorf("got %d reviews after moderation, want 0", len(reviews))
	}
}

func TestBulkDeleteRejectsUnknownMode(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodPost, "/api/v1/public-feedback/bulk-delete", models.BulkDeleteRequest{
		Mode: "everything-please",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestResponseCarriesETag(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.doRequest(t, http.MethodGet, "/api/v1/health", nil)
	if rec.Header().Get("ETag") == "" {
		t.Error("response has no ETag header")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response has no X-Request-ID header")
	}
}
