package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scorekeeper/internal/api/middleware"
	"github.com/mcoot/scorekeeper/internal/api/request"
	"github.com/mcoot/scorekeeper/internal/api/response"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/services/ledger"
)

// ScoreHandler handles ledger score entry endpoints
type ScoreHandler struct {
	ledger *ledger.Service
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(ledger *ledger.Service) *ScoreHandler {
	return &ScoreHandler{
		ledger: ledger,
	}
}

// Add handles POST /api/v1/scores
func (h *ScoreHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.AddScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.PlayerID == "" || req.GameID == "" {
		WriteError(w, NewInvalidRequestError("player_id and game_id are required"))
		return
	}
	if req.Value == nil {
		WriteError(w, NewInvalidRequestError("value is required"))
		return
	}

	entry, err := h.ledger.AddScoreEntry(r.Context(),
		model.PlayerID(req.PlayerID), model.GameID(req.GameID), *req.Value, identity.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.ScoreEntryFromModel(entry), "scores", string(entry.ID))
}

// ListForGame handles GET /api/v1/scores/game/{gameID}
func (h *ScoreHandler) ListForGame(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	lines, err := h.ledger.ListScoresForGame(r.Context(), model.GameID(mux.Vars(r)["gameID"]), identity.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreListFromLines(lines))
}

// ListForPlayer handles GET /api/v1/scores/player/{playerID}
func (h *ScoreHandler) ListForPlayer(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	lines, err := h.ledger.ListScoresForPlayer(r.Context(), model.PlayerID(mux.Vars(r)["playerID"]), identity.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreListFromLines(lines))
}

// Total handles GET /api/v1/scores/total/{gameID}/{playerID}
func (h *ScoreHandler) Total(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	vars := mux.Vars(r)
	gameID := model.GameID(vars["gameID"])
	playerID := model.PlayerID(vars["playerID"])

	total, err := h.ledger.TotalScore(r.Context(), gameID, playerID, identity.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreTotal{
		PlayerID: string(playerID),
		GameID:   string(gameID),
		Total:    total,
	})
}

// Update handles PUT /api/v1/scores/{id}
func (h *ScoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.UpdateScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Value == nil {
		WriteError(w, NewInvalidRequestError("value is required"))
		return
	}

	entry, err := h.ledger.UpdateScoreEntry(r.Context(), model.ScoreEntryID(mux.Vars(r)["id"]), *req.Value, identity.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreEntryFromModel(entry))
}

// Delete handles DELETE /api/v1/scores/{id}
func (h *ScoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	if err := h.ledger.DeleteScoreEntry(r.Context(), model.ScoreEntryID(mux.Vars(r)["id"]), identity.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
