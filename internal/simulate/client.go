package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrDuplicate is returned when the server rejects a replayed submission.
var ErrDuplicate = errors.New("duplicate submission")

// Client talks to the duelwall HTTP API.
type Client struct {
	baseURL    string
	adminToken string
	http       *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL, adminToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
		http:       &http.Client{Timeout: timeout},
	}
}

// Ticket is the subset of a matchup the voters need.
type Ticket struct {
	Ticket string `json:"ticket"`
	Pair   struct {
		A struct {
			ID int64 `json:"id"`
		} `json:"a"`
		B struct {
			ID int64 `json:"id"`
		} `json:"b"`
	} `json:"pair"`
}

type seeded struct {
	Inserted    int `json:"inserted"`
	Contestants []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"contestants"`
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

// Seed imports the roster and returns the ids keyed by name.
func (c *Client) Seed(ctx context.Context, csv string) (map[string]int64, error) {
	var out seeded
	if err := c.do(ctx, http.MethodPost, "/api/admin/roster", "text/csv", strings.NewReader(csv), &out); err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(out.Contestants))
	for _, e := range out.Contestants {
		ids[e.Name] = e.ID
	}
	return ids, nil
}

// Next fetches a matchup.
func (c *Client) Next(ctx context.Context) (Ticket, error) {
	var t Ticket
	err := c.do(ctx, http.MethodGet, "/api/duels/next", "", nil, &t)
	return t, err
}

// Submit records a vote on t.
func (c *Client) Submit(ctx context.Context, t Ticket, winner string) error {
	body, err := json.Marshal(map[string]any{
		"submission_id": t.Ticket,
		"a_id":          t.Pair.A.ID,
		"b_id":          t.Pair.B.ID,
		"winner":        winner,
	})
	if err != nil {
		return fmt.Errorf("marshal vote: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/api/duels", "application/json", bytes.NewReader(body), nil)
}

// Leaderboard fetches the top n entries.
func (c *Client) Leaderboard(ctx context.Context, n int) ([]Entry, error) {
	var out []Entry
	err := c.do(ctx, http.MethodGet, "/api/leaderboard?limit="+strconv.Itoa(n), "", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.adminToken != "" && strings.HasPrefix(path, "/api/admin/") {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusConflict && strings.Contains(string(data), "duplicate_submission"):
		return ErrDuplicate
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
