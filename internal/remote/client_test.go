package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"classical-quiz/internal/mediasession"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestDoJSONReturnsServiceUnavailable(t *testing.T) {
	client := NewHTTPClient("http://example.test", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	})

	err := client.doJSON(context.Background(), http.MethodGet, "/scores", nil, nil)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable wrapper, got %v", err)
	}
}

func TestDoJSONReturnsAPIErrorMessageFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "no sample is playing"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	_, err := client.Transport(context.Background(), "play")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Message != "no sample is playing" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestNewHTTPClientNormalisesBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: DefaultServerURL},
		{in: "127.0.0.1:9000/", want: "http://127.0.0.1:9000"},
		{in: " https://quiz.local ", want: "https://quiz.local"},
	}

	for _, tt := range tests {
		if got := NewHTTPClient(tt.in, nil).baseURL; got != tt.want {
			t.Fatalf("NewHTTPClient(%q).baseURL = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListGamesSendsLimit(t *testing.T) {
	var seenLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenLimit = r.URL.Query().Get("limit")
		_ = json.NewEncoder(w).Encode(gamesResponse{Games: []Game{{GameID: "g1", Rounds: 4}}})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	games, err := client.ListGames(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListGames returned error: %v", err)
	}
	if seenLimit != "10" {
		t.Fatalf("limit = %q, want default 10", seenLimit)
	}
	if len(games) != 1 || games[0].GameID != "g1" || games[0].Rounds != 4 {
		t.Fatalf("unexpected games: %+v", games)
	}
}

func TestWatchStopsWhenCallbackDeclines(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/events" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, state := range []string{"buffering", "playing", "paused"} {
			if err := conn.WriteJSON(mediasession.Notification{State: state, Visible: true}); err != nil {
				return
			}
		}
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := NewHTTPClient(server.URL, server.Client())
	var states []string
	err := client.Watch(ctx, func(n mediasession.Notification) bool {
		states = append(states, n.State)
		return len(states) < 2
	})
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if len(states) != 2 || states[0] != "buffering" || states[1] != "playing" {
		t.Fatalf("states = %v", states)
	}
}
