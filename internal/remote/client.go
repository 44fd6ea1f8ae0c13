package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"classical-quiz/internal/mediasession"
)

var ErrServiceUnavailable = errors.New("control api unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

type Scores struct {
	CurrentScore int `json:"current_score"`
	HighScore    int `json:"high_score"`
}

type Game struct {
	GameID     string     `json:"game_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Finished   bool       `json:"finished"`
	FinalScore int        `json:"final_score"`
	Rounds     int        `json:"rounds"`
}

type gamesResponse struct {
	Games []Game `json:"games"`
}

type transportResponse struct {
	Command      mediasession.Command      `json:"command"`
	Notification mediasession.Notification `json:"notification"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		dialer:     websocket.DefaultDialer,
	}
}

func (c *HTTPClient) Notification(ctx context.Context) (mediasession.Notification, error) {
	var payload mediasession.Notification
	if err := c.doJSON(ctx, http.MethodGet, "/session/notification", nil, &payload); err != nil {
		return mediasession.Notification{}, err
	}
	return payload, nil
}

func (c *HTTPClient) Transport(ctx context.Context, cmd string) (mediasession.Notification, error) {
	if strings.TrimSpace(cmd) == "" {
		return mediasession.Notification{}, errors.New("command is required")
	}

	var payload transportResponse
	path := "/session/transport/" + url.PathEscape(cmd)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &payload); err != nil {
		return mediasession.Notification{}, err
	}
	return payload.Notification, nil
}

func (c *HTTPClient) Scores(ctx context.Context) (Scores, error) {
	var payload Scores
	if err := c.doJSON(ctx, http.MethodGet, "/scores", nil, &payload); err != nil {
		return Scores{}, err
	}
	return payload, nil
}

func (c *HTTPClient) ListGames(ctx context.Context, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var payload gamesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/games?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Games, nil
}

// Watch calls fn for each notification on the event stream until fn returns
// false, ctx ends or the server closes the stream.
func (c *HTTPClient) Watch(ctx context.Context, fn func(mediasession.Notification) bool) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/session/events"

	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		var n mediasession.Notification
		if err := conn.ReadJSON(&n); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if !fn(n) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
