package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"classical-quiz/internal/mediasession"
	"classical-quiz/internal/quiz"
)

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mediasession.ErrUnknownCommand):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown transport command"})
	case errors.Is(err, mediasession.ErrInactive):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "no sample is playing"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "transport command failed"})
	}
}

func toGameResponses(games []quiz.GameRecord) []gameResponse {
	response := make([]gameResponse, 0, len(games))
	for _, game := range games {
		item := gameResponse{
			GameID:     game.GameID,
			StartedAt:  game.StartedAt,
			FinalScore: game.FinalScore,
			Rounds:     game.Rounds,
		}
		if !game.FinishedAt.IsZero() {
			finishedAt := game.FinishedAt
			item.FinishedAt = &finishedAt
			item.Finished = true
		}
		response = append(response, item)
	}
	return response
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}

func writeUnavailable(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: what + " unavailable"})
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
