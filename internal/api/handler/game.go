package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scorekeeper/internal/access"
	"github.com/mcoot/scorekeeper/internal/api/events"
	"github.com/mcoot/scorekeeper/internal/api/middleware"
	"github.com/mcoot/scorekeeper/internal/api/request"
	"github.com/mcoot/scorekeeper/internal/api/response"
	"github.com/mcoot/scorekeeper/internal/metrics"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/services/games"
)

// GameHandler handles game and roster endpoints
type GameHandler struct {
	controller *games.Controller
	hubManager *events.HubManager
	metrics    *metrics.Recorder
}

// NewGameHandler creates a new game handler.
// hubManager may be nil, in which case the events endpoint is unavailable.
func NewGameHandler(controller *games.Controller, hubManager *events.HubManager, recorder *metrics.Recorder) *GameHandler {
	return &GameHandler{
		controller: controller,
		hubManager: hubManager,
		metrics:    recorder,
	}
}

func gameIDVar(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.CreateGameRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.controller.CreateGame(r.Context(), identity.ID, req.Name, req.Metadata)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.GameFromModel(g), "games", string(g.ID))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	list, err := h.controller.ListGames(r.Context(), identity.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	owners, err := h.controller.OwnerNames(r.Context(), list)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameListFromModels(list, owners))
}

// Join handles POST /api/v1/games/join/{code}
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	g, err := h.controller.JoinGame(r.Context(), identity.ID, mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Get handles GET /api/v1/games/{ref}, where ref is a game id or join code
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	g, err := h.controller.GetGame(r.Context(), mux.Vars(r)["ref"], identity.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	owners, err := h.controller.OwnerNames(r.Context(), []*model.Game{g})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameWithOwnerName(g, owners))
}

// Update handles PATCH /api/v1/games/{id}.
// Present fields are applied in order: name, metadata, active.
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	gameID := gameIDVar(r)

	var req request.UpdateGameRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.IsEmpty() {
		WriteError(w, NewInvalidRequestError("at least one of name, metadata or active is required"))
		return
	}

	var (
		g   *model.Game
		err error
	)
	if req.Name != nil {
		if g, err = h.controller.RenameGame(r.Context(), gameID, identity.ID, *req.Name); err != nil {
			WriteError(w, err)
			return
		}
	}
	if req.Metadata != nil {
		if g, err = h.controller.UpdateMetadata(r.Context(), gameID, identity.ID, *req.Metadata); err != nil {
			WriteError(w, err)
			return
		}
	}
	if req.Active != nil {
		if g, err = h.controller.SetActive(r.Context(), gameID, identity.ID, *req.Active); err != nil {
			WriteError(w, err)
			return
		}
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	if err := h.controller.DeleteGame(r.Context(), gameIDVar(r), identity.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Leave handles POST /api/v1/games/{id}/leave
func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	if err := h.controller.LeaveGame(r.Context(), gameIDVar(r), identity.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// AddRosterEntry handles POST /api/v1/games/{id}/roster
func (h *GameHandler) AddRosterEntry(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.AddRosterEntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.controller.AddRosterEntry(r.Context(), gameIDVar(r), identity.ID, req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(g))
}

// SetRosterScore handles PUT /api/v1/games/{id}/roster/{entry}/score
func (h *GameHandler) SetRosterScore(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.SetScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Score == nil {
		WriteError(w, NewInvalidRequestError("score is required"))
		return
	}

	entryID := model.RosterEntryID(mux.Vars(r)["entry"])
	g, err := h.controller.SetRosterScore(r.Context(), gameIDVar(r), identity.ID, entryID, *req.Score)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// RemoveRosterEntry handles DELETE /api/v1/games/{id}/roster/{entry}
func (h *GameHandler) RemoveRosterEntry(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	entryID := model.RosterEntryID(mux.Vars(r)["entry"])
	g, err := h.controller.RemoveRosterEntry(r.Context(), gameIDVar(r), identity.ID, entryID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Events handles GET /api/v1/games/{id}/events as a Server-Sent Events stream
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	gameID := gameIDVar(r)

	if h.hubManager == nil {
		WriteError(w, apiNotFound())
		return
	}

	if _, err := h.controller.Authorize(r.Context(), gameID, identity.ID, access.WatchGame); err != nil {
		WriteError(w, err)
		return
	}

	h.metrics.SSEClientConnected()
	defer h.metrics.SSEClientDisconnected()

	events.ServeSSE(w, r, h.hubManager, gameID, identity.ID)
}
