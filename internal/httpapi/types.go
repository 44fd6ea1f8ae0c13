package httpapi

import (
	"time"

	"classical-quiz/internal/mediasession"
)

type transportResponse struct {
	Command      mediasession.Command      `json:"command"`
	Notification mediasession.Notification `json:"notification"`
}

type scoresResponse struct {
	CurrentScore int `json:"current_score"`
	HighScore    int `json:"high_score"`
}

type gameResponse struct {
	GameID     string     `json:"game_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Finished   bool       `json:"finished"`
	FinalScore int        `json:"final_score"`
	Rounds     int        `json:"rounds"`
}

type gamesResponse struct {
	Games []gameResponse `json:"games"`
}

type errorResponse struct {
	Error string `json:"error"`
}
