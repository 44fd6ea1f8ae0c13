// Package httpapi serves the local control API: the current notification,
// transport commands, a WebSocket stream of notification changes, and the
// persisted scores and game history.
package httpapi

import (
	"context"

	logging "github.com/ipfs/go-log/v2"

	"classical-quiz/internal/mediasession"
	"classical-quiz/internal/quiz"
)

var log = logging.Logger("httpapi")

// Session is the transport side of the media session.
type Session interface {
	Handle(cmd mediasession.Command) error
	Notification() mediasession.Notification
}

// Events streams notification changes, primed with the latest one.
type Events interface {
	Subscribe() (<-chan mediasession.Notification, func())
}

type ScoreReader interface {
	CurrentScore(ctx context.Context) (int, error)
	HighScore(ctx context.Context) (int, error)
}

type GameLister interface {
	ListGames(ctx context.Context, limit int) ([]quiz.GameRecord, error)
}

// Options lists the backends; nil ones make their routes answer 503.
type Options struct {
	Session Session
	Events  Events
	Scores  ScoreReader
	History GameLister
}

type API struct {
	session Session
	events  Events
	scores  ScoreReader
	history GameLister
}

func NewAPI(opts Options) *API {
	return &API{
		session: opts.Session,
		events:  opts.Events,
		scores:  opts.Scores,
		history: opts.History,
	}
}
