package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationEscapesSegments(t *testing.T) {
	assert.Equal(t, "/api/v1", Location())
	assert.Equal(t, "/api/v1/games/abc", Location("games", "abc"))
	assert.Equal(t, "/api/v1/players/a%2Fb", Location("players", "a/b"))
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, Player{ID: "p1", Name: "Alice"}, "players", "p1")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/players/p1", rec.Header().Get("Location"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"name":"Alice"`)
}

func TestJSONWithNilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusAccepted, nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}
