package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// outputFor returns the formatter for a command's stdout
func outputFor(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Identity:
		o.printIdentity(v)
	case AuthResult:
		o.printAuthResult(v)
	case Game:
		o.printGame(v)
	case GameList:
		o.printGameList(v)
	case Player:
		o.printPlayer(v)
	case PlayerList:
		o.printPlayerList(v)
	case ScoreEntry:
		o.printScoreEntry(v)
	case ScoreList:
		o.printScoreList(v)
	case ScoreTotal:
		fmt.Fprintf(o.w, "Total for %s in %s: %d\n", v.PlayerID, v.GameID, v.Total)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Identity response type (matches API)
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  Identity  `json:"identity"`
}

// RosterEntry response type
type RosterEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Game response type
type Game struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	JoinCode       string         `json:"join_code"`
	OwnerID        string         `json:"owner_id"`
	OwnerName      string         `json:"owner_name,omitempty"`
	ParticipantIDs []string       `json:"participant_ids"`
	Roster         []RosterEntry  `json:"roster"`
	Active         bool           `json:"active"`
	Metadata       map[string]any `json:"metadata"`
}

// GameList response type
type GameList struct {
	Games []Game `json:"games"`
}

// Player response type
type Player struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	OwnerID string   `json:"owner_id"`
	GameIDs []string `json:"game_ids"`
}

// PlayerList response type
type PlayerList struct {
	Players []Player `json:"players"`
}

// ScoreEntry response type
type ScoreEntry struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name,omitempty"`
	GameID     string    `json:"game_id"`
	GameName   string    `json:"game_name,omitempty"`
	Value      int       `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ScoreList response type
type ScoreList struct {
	Scores []ScoreEntry `json:"scores"`
}

// ScoreTotal response type
type ScoreTotal struct {
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id"`
	Total    int    `json:"total"`
}

// HealthResult response type
type HealthResult struct {
	Status         string `json:"status"`
	StoreConnected bool   `json:"store_connected"`
}

func (o *Output) printIdentity(i Identity) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", i.DisplayName, i.ID)
	fmt.Fprintf(o.w, "Email: %s\n", i.Email)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printIdentity(a.Identity)
	fmt.Fprintf(o.w, "Token: %s\n", a.Token)
	fmt.Fprintf(o.w, "Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printGame(g Game) {
	state := "active"
	if !g.Active {
		state = "closed"
	}
	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.Name, g.ID)
	fmt.Fprintf(o.w, "Join Code: %s\n", g.JoinCode)
	fmt.Fprintf(o.w, "State: %s\n", state)
	fmt.Fprintf(o.w, "Owner: %s\n", g.OwnerID)
	fmt.Fprintf(o.w, "Participants: %s\n", strings.Join(g.ParticipantIDs, ", "))

	if len(g.Metadata) > 0 {
		keys := make([]string, 0, len(g.Metadata))
		for k := range g.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(o.w, "Metadata:")
		for _, k := range keys {
			fmt.Fprintf(o.w, "  %s: %v\n", k, g.Metadata[k])
		}
	}

	fmt.Fprintf(o.w, "Roster (%d):\n", len(g.Roster))
	for _, e := range g.Roster {
		fmt.Fprintf(o.w, "  - %s (%s): %d\n", e.Name, e.ID, e.Score)
	}
}

func (o *Output) printGameList(l GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	for _, g := range l.Games {
		state := ""
		if !g.Active {
			state = " [closed]"
		}
		owner := ""
		if g.OwnerName != "" {
			owner = " (" + g.OwnerName + ")"
		}
		fmt.Fprintf(o.w, "%s  %s  %s%s%s\n", g.ID, g.JoinCode, g.Name, owner, state)
	}
}

func (o *Output) printPlayer(p Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	if len(p.GameIDs) > 0 {
		fmt.Fprintf(o.w, "Games: %s\n", strings.Join(p.GameIDs, ", "))
	}
}

func (o *Output) printPlayerList(l PlayerList) {
	if len(l.Players) == 0 {
		fmt.Fprintln(o.w, "No players")
		return
	}
	for _, p := range l.Players {
		fmt.Fprintf(o.w, "%s  %s\n", p.ID, p.Name)
	}
}

func (o *Output) printScoreEntry(e ScoreEntry) {
	fmt.Fprintf(o.w, "Score %s: %d (player %s, game %s)\n", e.ID, e.Value, e.PlayerID, e.GameID)
}

func (o *Output) printScoreList(l ScoreList) {
	if len(l.Scores) == 0 {
		fmt.Fprintln(o.w, "No scores")
		return
	}
	for _, e := range l.Scores {
		fmt.Fprintf(o.w, "%s  %s  %s  %+d\n", e.RecordedAt.Format("2006-01-02 15:04:05"),
			nameOr(e.PlayerName, e.PlayerID), nameOr(e.GameName, e.GameID), e.Value)
	}
}

// nameOr prefers a display name, falling back to the id of a deleted record
func nameOr(name, id string) string {
	if name == "" {
		return id
	}
	return name
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Store Connected: %t\n", h.StoreConnected)
}
