package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example/aoe4-reviewer/app/config"
	"example/aoe4-reviewer/app/models"
)

var ErrNoGames = errors.New("no games found")

// APIError is a non-2xx answer (after retries) or an {"error": ...} body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "aoe4world: " + e.Body
	}
	return fmt.Sprintf("aoe4world http %d: %s", e.Status, e.Body)
}

// AOE4WorldClient reads public match history from aoe4world.
type AOE4WorldClient struct {
	baseURL   string
	userAgent string
	httpc     *http.Client
	backoff   time.Duration
}

// NewAOE4WorldClient uses httpc when non-nil, otherwise a client with cfg.Timeout.
func NewAOE4WorldClient(cfg config.AOE4WorldConfig, httpc *http.Client) *AOE4WorldClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: cfg.Timeout}
	}
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	return &AOE4WorldClient{
		baseURL:   strings.TrimRight(base, "/"),
		userAgent: ua,
		httpc:     httpc,
		backoff:   250 * time.Millisecond,
	}
}

func (c *AOE4WorldClient) gamesURL(playerID string, limit int) string {
	return fmt.Sprintf("%s/api/v0/players/%s/games?limit=%d", c.baseURL, url.PathEscape(playerID), limit)
}

// FetchRecentMatches returns the player's latest games as the API sent them.
func (c *AOE4WorldClient) FetchRecentMatches(ctx context.Context, playerID string, limit int) (*models.GamesResponse, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, errors.New("missing player id")
	}
	if limit <= 0 {
		limit = config.DefaultRecentLimit
	}

	var resp models.GamesResponse
	if err := c.getJSON(ctx, c.gamesURL(playerID, limit), &resp); err != nil {
		return nil, err
	}
	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		return nil, &APIError{Body: errorMessage(resp.Error)}
	}
	return &resp, nil
}

// FetchLastMatch returns the most recently started game, or ErrNoGames.
func (c *AOE4WorldClient) FetchLastMatch(ctx context.Context, playerID string) (*models.Match, error) {
	resp, err := c.FetchRecentMatches(ctx, playerID, 1)
	if err != nil {
		return nil, err
	}
	m, ok := LatestMatch(resp.Games)
	if !ok {
		return nil, ErrNoGames
	}
	return m, nil
}

// LatestMatch picks the max started_at; the first of equal starts wins.
func LatestMatch(games []models.Match) (*models.Match, bool) {
	if len(games) == 0 {
		return nil, false
	}
	best := 0
	for i := 1; i < len(games); i++ {
		if startedAfter(games[i].StartedAt, games[best].StartedAt) {
			best = i
		}
	}
	return &games[best], true
}

func startedAfter(a, b string) bool {
	ta, errA := parseStartedAt(a)
	tb, errB := parseStartedAt(b)
	if errA != nil || errB != nil {
		return a > b
	}
	return ta.After(tb)
}

func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (c *AOE4WorldClient) getJSON(ctx context.Context, u string, v any) error {
	// basic retry for 429/5xx
	var last error
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		res, err := c.httpc.Do(req)
		if err != nil {
			return fmt.Errorf("aoe4world request: %w", err)
		}
		body, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
		res.Body.Close()
		if err != nil {
			return fmt.Errorf("aoe4world read body: %w", err)
		}

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			if err := json.Unmarshal(body, v); err != nil {
				return fmt.Errorf("aoe4world decode: %w", err)
			}
			return nil
		}

		last = &APIError{Status: res.StatusCode, Body: summarizeBody(body)}
		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			if attempt < 2 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.backoff * time.Duration(attempt+1)):
				}
			}
			continue
		}
		break
	}
	return last
}

// summarizeBody prefers the API's error/message field over raw bytes.
func summarizeBody(body []byte) string {
	var msg struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &msg); err == nil {
		if msg.Error != "" {
			return msg.Error
		}
		if msg.Message != "" {
			return msg.Message
		}
	}
	body = bytes.TrimSpace(body)
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
