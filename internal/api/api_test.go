package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/scorekeeper/internal/api"
	"github.com/mcoot/scorekeeper/internal/api/apierr"
	"github.com/mcoot/scorekeeper/internal/api/response"
	"github.com/mcoot/scorekeeper/internal/factory"
	"github.com/mcoot/scorekeeper/internal/storage"
	"github.com/mcoot/scorekeeper/internal/storage/memory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithStorage(t, memory.New())
}

func newTestServerWithStorage(t *testing.T, store storage.Storage) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app := factory.NewTestAppWithStorage(store)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		Ledger:         app.Ledger,
		HubManager:     app.HubManager,
		Monitor:        app.Monitor,
		Metrics:        app.Metrics,
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// register creates an account and returns its token
func (ts *testServer) register(t *testing.T, name, email string) response.AuthResponse {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"display_name": name,
		"email":        email,
		"password":     "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	return decode[response.AuthResponse](t, rr)
}

func (ts *testServer) createGame(t *testing.T, token, name string) response.Game {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{"name": name}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	game := decode[response.Game](t, rr)
	require.Equal(t, "/api/v1/games/"+game.ID, rr.Header().Get("Location"))
	return game
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	body := decode[apierr.APIError](t, rr)
	assert.Equal(t, code, body.Code)
	assert.NotEmpty(t, body.Message)
}

// downStore is a store whose health check always fails
type downStore struct {
	storage.Storage
}

func (downStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	resp := decode[response.Health](t, rr)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.StoreConnected)
	assert.NotNil(t, resp.CheckedAt)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registered := ts.register(t, "Alice", "Alice@Example.com")
	assert.Equal(t, "Alice", registered.Identity.DisplayName)
	assert.Equal(t, "alice@example.com", registered.Identity.Email)
	assert.NotEmpty(t, registered.Token)

	rr := ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	loggedIn := decode[response.AuthResponse](t, rr)
	assert.Equal(t, registered.Identity.ID, loggedIn.Identity.ID)

	rr = ts.request(http.MethodGet, "/api/v1/auth/me", nil, loggedIn.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, registered.Identity.ID, decode[response.Identity](t, rr).ID)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Alice", "alice@example.com")

	rr := ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"display_name": "Alice", "email": "alice@example.com", "password": "secret123",
	}, "")
	assertError(t, rr, http.StatusBadRequest, apierr.CodeEmailTaken)

	rr = ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"display_name": "Bob", "email": "bob@example.com", "password": "abc",
	}, "")
	assertError(t, rr, http.StatusBadRequest, apierr.CodePasswordTooShort)

	rr = ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"display_name": "Bob", "email": "not-an-email", "password": "secret123",
	}, "")
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidEmail)

	rr = ts.request(http.MethodPost, "/api/v1/auth/register", map[string]any{"bogus": true}, "")
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Alice", "alice@example.com")

	rr := ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	}, "")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeInvalidCredentials)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games", nil, "")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)

	rr = ts.request(http.MethodGet, "/api/v1/games", nil, "not-a-jwt")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)
}

func TestSessionCookieAccepted(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "Alice", "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: alice.Token})
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "Alice", "alice@example.com")
	ts.register(t, "Bob", "bob@example.com")

	rr := ts.request(http.MethodPatch, "/api/v1/auth/me", map[string]string{"display_name": "Alicia"}, alice.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[response.Identity](t, rr)
	assert.Equal(t, "Alicia", updated.DisplayName)
	assert.Equal(t, "alice@example.com", updated.Email)

	rr = ts.request(http.MethodPatch, "/api/v1/auth/me", map[string]string{"email": "bob@example.com"}, alice.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeEmailTaken)
}

func TestGameFlow(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.register(t, "Owner", "owner@example.com")
	guest := ts.register(t, "Guest", "guest@example.com")

	game := ts.createGame(t, owner.Token, "Friday darts")
	assert.Equal(t, "Friday darts", game.Name)
	assert.True(t, game.Active)
	assert.Len(t, game.JoinCode, 6)
	assert.Equal(t, []string{owner.Identity.ID}, game.ParticipantIDs)
	assert.Empty(t, game.Roster)

	// Join by lower-cased code
	rr := ts.request(http.MethodPost, "/api/v1/games/join/"+strings.ToLower(game.JoinCode), nil, guest.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, decode[response.Game](t, rr).ParticipantIDs, guest.Identity.ID)

	rr = ts.request(http.MethodPost, "/api/v1/games/join/"+game.JoinCode, nil, guest.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeAlreadyParticipant)

	// Lookup by id and by join code
	rr = ts.request(http.MethodGet, "/api/v1/games/"+game.ID, nil, guest.Token)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodGet, "/api/v1/games/"+game.JoinCode, nil, guest.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, game.ID, decode[response.Game](t, rr).ID)

	rr = ts.request(http.MethodGet, "/api/v1/games", nil, guest.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	listed := decode[response.GameList](t, rr).Games
	require.Len(t, listed, 1)
	assert.Equal(t, "Owner", listed[0].OwnerName)

	// Roster: participants may edit it, strangers may not
	stranger := ts.register(t, "Stranger", "stranger@example.com")
	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/roster", map[string]string{"name": "Mallory"}, stranger.Token)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotParticipant)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/roster", map[string]string{"name": "Mallory"}, guest.Token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	game = decode[response.Game](t, rr)
	require.Len(t, game.Roster, 1)
	assert.Equal(t, "Mallory", game.Roster[0].Name)

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+game.ID+"/roster/"+game.Roster[0].ID, nil, guest.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, decode[response.Game](t, rr).Roster)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/roster", map[string]string{"name": "Alice"}, owner.Token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	game = decode[response.Game](t, rr)
	require.Len(t, game.Roster, 1)
	entry := game.Roster[0]
	assert.Equal(t, 0, entry.Score)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/roster", map[string]string{"name": "alice"}, owner.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeDuplicateRoster)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/roster", map[string]string{"name": ""}, owner.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeNameRequired)

	scorePath := fmt.Sprintf("/api/v1/games/%s/roster/%s/score", game.ID, entry.ID)
	rr = ts.request(http.MethodPut, scorePath, map[string]int{"score": -15}, owner.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, -15, decode[response.Game](t, rr).Roster[0].Score)

	rr = ts.request(http.MethodPut, scorePath, map[string]any{}, owner.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPut, "/api/v1/games/"+game.ID+"/roster/missing/score", map[string]int{"score": 1}, owner.Token)
	assertError(t, rr, http.StatusNotFound, apierr.CodeRosterEntryNotFound)

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+game.ID+"/roster/"+entry.ID, nil, owner.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[response.Game](t, rr).Roster)

	// Leave, then delete
	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/leave", nil, guest.Token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/leave", nil, owner.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeOwnerCannotLeave)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+game.ID, nil, guest.Token)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotParticipant)

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+game.ID, nil, guest.Token)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotOwner)

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+game.ID, nil, owner.Token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+game.ID, nil, owner.Token)
	assertError(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestParticipantRunsRosterThenOwnerDeletes(t *testing.T) {
	ts := newTestServer(t)
	u1 := ts.register(t, "U1", "u1@example.com")
	u2 := ts.register(t, "U2", "u2@example.com")
	game := ts.createGame(t, u1.Token, "Hoops")

	rr := ts.request(http.MethodPost, "/api/v1/games/join/"+game.JoinCode, nil, u2.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/roster", map[string]string{"name": "Sam"}, u2.Token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	game = decode[response.Game](t, rr)
	require.Len(t, game.Roster, 1)
	assert.Equal(t, "Sam", game.Roster[0].Name)
	assert.Equal(t, 0, game.Roster[0].Score)

	rr = ts.request(http.MethodPut, "/api/v1/games/"+game.ID+"/roster/"+game.Roster[0].ID+"/score", map[string]int{"score": 7}, u2.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	roster := decode[response.Game](t, rr).Roster
	require.Len(t, roster, 1)
	assert.Equal(t, "Sam", roster[0].Name)
	assert.Equal(t, 7, roster[0].Score)

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+game.ID, nil, u1.Token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+game.ID, nil, u2.Token)
	assertError(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestUpdateGame(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.register(t, "Owner", "owner@example.com")
	guest := ts.register(t, "Guest", "guest@example.com")
	game := ts.createGame(t, owner.Token, "Quiz")

	rr := ts.request(http.MethodPatch, "/api/v1/games/"+game.ID, map[string]any{
		"name":     "Pub quiz",
		"metadata": map[string]any{"rounds": 6},
		"active":   false,
	}, owner.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[response.Game](t, rr)
	assert.Equal(t, "Pub quiz", updated.Name)
	assert.Equal(t, map[string]any{"rounds": float64(6)}, updated.Metadata)
	assert.False(t, updated.Active)

	// Inactive games refuse new participants
	rr = ts.request(http.MethodPost, "/api/v1/games/join/"+game.JoinCode, nil, guest.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeGameInactive)

	rr = ts.request(http.MethodPatch, "/api/v1/games/"+game.ID, map[string]any{}, owner.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPatch, "/api/v1/games/"+game.ID, map[string]any{"name": "Hijack"}, guest.Token)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotOwner)

	rr = ts.request(http.MethodPatch, "/api/v1/games/missing", map[string]any{"name": "x"}, owner.Token)
	assertError(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestJoinUnknownCode(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "Alice", "alice@example.com")

	rr := ts.request(http.MethodPost, "/api/v1/games/join/NOPE42", nil, alice.Token)
	assertError(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestLedgerFlow(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.register(t, "Owner", "owner@example.com")
	stranger := ts.register(t, "Stranger", "stranger@example.com")
	game := ts.createGame(t, owner.Token, "Poker")

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"name": "Bob"}, owner.Token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	player := decode[response.Player](t, rr)

	rr = ts.request(http.MethodPost, "/api/v1/scores", map[string]any{
		"player_id": player.ID, "game_id": game.ID, "value": 40,
	}, owner.Token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	first := decode[response.ScoreEntry](t, rr)

	ts.app.MockClock.Advance(time.Minute)
	rr = ts.request(http.MethodPost, "/api/v1/scores", map[string]any{
		"player_id": player.ID, "game_id": game.ID, "value": -5,
	}, owner.Token)
	require.Equal(t, http.StatusCreated, rr.Code)
	second := decode[response.ScoreEntry](t, rr)

	rr = ts.request(http.MethodGet, "/api/v1/scores/total/"+game.ID+"/"+player.ID, nil, owner.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 35, decode[response.ScoreTotal](t, rr).Total)

	rr = ts.request(http.MethodGet, "/api/v1/scores/game/"+game.ID, nil, owner.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	scores := decode[response.ScoreList](t, rr).Scores
	require.Len(t, scores, 2)
	assert.Equal(t, second.ID, scores[0].ID)
	assert.Equal(t, first.ID, scores[1].ID)
	assert.Equal(t, "Bob", scores[0].PlayerName)

	rr = ts.request(http.MethodPut, "/api/v1/scores/"+first.ID, map[string]int{"value": 100}, owner.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 100, decode[response.ScoreEntry](t, rr).Value)

	rr = ts.request(http.MethodDelete, "/api/v1/scores/"+second.ID, nil, owner.Token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/scores/player/"+player.ID, nil, owner.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	byPlayer := decode[response.ScoreList](t, rr).Scores
	require.Len(t, byPlayer, 1)
	assert.Equal(t, "Poker", byPlayer[0].GameName)

	rr = ts.request(http.MethodGet, "/api/v1/players/"+player.ID, nil, owner.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{game.ID}, decode[response.Player](t, rr).GameIDs)

	// Strangers see nothing
	rr = ts.request(http.MethodGet, "/api/v1/scores/total/"+game.ID+"/"+player.ID, nil, stranger.Token)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotOwner)
	rr = ts.request(http.MethodGet, "/api/v1/players/"+player.ID, nil, stranger.Token)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotOwner)
	rr = ts.request(http.MethodGet, "/api/v1/players", nil, stranger.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[response.PlayerList](t, rr).Players)
}

func TestLedgerValidation(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.register(t, "Owner", "owner@example.com")
	game := ts.createGame(t, owner.Token, "Poker")

	rr := ts.request(http.MethodPost, "/api/v1/scores", map[string]any{"player_id": "p", "game_id": game.ID}, owner.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPost, "/api/v1/scores", map[string]any{
		"player_id": "missing", "game_id": game.ID, "value": 1,
	}, owner.Token)
	assertError(t, rr, http.StatusNotFound, apierr.CodePlayerNotFound)

	rr = ts.request(http.MethodPut, "/api/v1/scores/missing", map[string]int{"value": 1}, owner.Token)
	assertError(t, rr, http.StatusNotFound, apierr.CodeScoreEntryNotFound)

	rr = ts.request(http.MethodPost, "/api/v1/players", map[string]string{"name": "  "}, owner.Token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeNameRequired)

	rr = ts.request(http.MethodPatch, "/api/v1/players/missing", map[string]string{"name": "x"}, owner.Token)
	assertError(t, rr, http.StatusNotFound, apierr.CodePlayerNotFound)
}

func TestDeletePlayer(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.register(t, "Owner", "owner@example.com")

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"name": "Bob"}, owner.Token)
	require.Equal(t, http.StatusCreated, rr.Code)
	player := decode[response.Player](t, rr)

	rr = ts.request(http.MethodPatch, "/api/v1/players/"+player.ID, map[string]string{"name": "Robert"}, owner.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Robert", decode[response.Player](t, rr).Name)

	rr = ts.request(http.MethodDelete, "/api/v1/players/"+player.ID, nil, owner.Token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/"+player.ID, nil, owner.Token)
	assertError(t, rr, http.StatusNotFound, apierr.CodePlayerNotFound)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/nothing-here", nil, "")
	assertError(t, rr, http.StatusNotFound, apierr.CodeNotFound)
}

func TestStoreUnavailable(t *testing.T) {
	ts := newTestServerWithStorage(t, downStore{Storage: memory.New()})

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	health := decode[response.Health](t, rr)
	assert.Equal(t, "degraded", health.Status)
	assert.False(t, health.StoreConnected)

	rr = ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"display_name": "Alice", "email": "alice@example.com", "password": "secret123",
	}, "")
	assertError(t, rr, http.StatusServiceUnavailable, apierr.CodeStoreUnavailable)

	rr = ts.request(http.MethodGet, "/api/v1/games", nil, "any-token")
	assertError(t, rr, http.StatusServiceUnavailable, apierr.CodeStoreUnavailable)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Alice", "alice@example.com")

	rr := ts.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(),
		`scorekeeper_http_requests_total{method="POST",route="/api/v1/auth/register",status="201"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/games", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))
}

func TestGameEventsStream(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.register(t, "Owner", "owner@example.com")
	stranger := ts.register(t, "Stranger", "stranger@example.com")
	game := ts.createGame(t, owner.Token, "Darts")

	rr := ts.request(http.MethodGet, "/api/v1/games/"+game.ID+"/events", nil, stranger.Token)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotParticipant)

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/games/"+game.ID+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+owner.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", nextEvent(t, reader))

	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/roster", map[string]string{"name": "Alice"}, owner.Token)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "game-updated", nextEvent(t, reader))

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+game.ID, nil, owner.Token)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "game-deleted", nextEvent(t, reader))
}

// nextEvent reads SSE lines until the next event name, skipping keepalive comments
func nextEvent(t *testing.T, reader *bufio.Reader) string {
	t.Helper()
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if name, ok := strings.CutPrefix(strings.TrimSpace(line), "event: "); ok {
			return name
		}
	}
}
