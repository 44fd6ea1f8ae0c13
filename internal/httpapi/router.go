package httpapi

import (
	"net/http"
)

func NewRouter(opts Options) http.Handler {
	api := NewAPI(opts)

	mux := http.NewServeMux()
	mux.HandleFunc("/session/notification", api.HandleNotification)
	mux.HandleFunc("/session/transport/{command}", api.HandleTransport)
	mux.HandleFunc("/session/events", api.HandleEvents)
	mux.HandleFunc("/scores", api.HandleScores)
	mux.HandleFunc("/games", api.HandleGames)

	return withRequestLogging(mux)
}
