package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"classical-quiz/internal/mediasession"
)

const (
	defaultListLimit = 10
	writeWait        = 5 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API listens on loopback for local controllers.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (a *API) HandleNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.session == nil {
		writeUnavailable(w, "media session")
		return
	}

	writeJSON(w, http.StatusOK, a.session.Notification())
}

func (a *API) HandleTransport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if a.session == nil {
		writeUnavailable(w, "media session")
		return
	}

	cmd, err := mediasession.ParseCommand(strings.TrimSpace(r.PathValue("command")))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if err := a.session.Handle(cmd); err != nil {
		log.Debugw("transport command rejected", "command", cmd, "err", err)
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transportResponse{
		Command:      cmd,
		Notification: a.session.Notification(),
	})
}

// HandleEvents upgrades to a WebSocket and writes one JSON message per
// notification change until either side goes away.
func (a *API) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.events == nil {
		writeUnavailable(w, "event stream")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugw("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := a.events.Subscribe()
	defer cancel()

	// Reads only serve to notice the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Debugw("event stream connected", "remote", r.RemoteAddr)
	for {
		select {
		case <-closed:
			log.Debugw("event stream disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		case n, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		}
	}
}

func (a *API) HandleScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.scores == nil {
		writeUnavailable(w, "score store")
		return
	}

	current, err := a.scores.CurrentScore(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read scores"})
		return
	}
	high, err := a.scores.HighScore(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read scores"})
		return
	}

	writeJSON(w, http.StatusOK, scoresResponse{
		CurrentScore: current,
		HighScore:    high,
	})
}

func (a *API) HandleGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.history == nil {
		writeUnavailable(w, "game history")
		return
	}

	limit, err := parseIntParam(r, "limit", defaultListLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	games, err := a.history.ListGames(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list games"})
		return
	}

	writeJSON(w, http.StatusOK, gamesResponse{Games: toGameResponses(games)})
}
