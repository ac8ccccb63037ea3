// Package correction fills in missing goalie handedness from a people-lookup
// service.
package correction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pable/go-goalie-metrics/internal/model"
)

// DefaultBaseURL is the public NHL stats people endpoint.
const DefaultBaseURL = "https://statsapi.web.nhl.com/api/v1"

// Outcome classifies one lookup.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeFound
	OutcomeAbsent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeAbsent:
		return "absent"
	default:
		return "failed"
	}
}

// Result is the outcome of one lookup. Hand is set only when Outcome is
// OutcomeFound; Err and Transient only when it is OutcomeFailed.
type Result struct {
	Outcome   Outcome
	Hand      model.Handedness
	Err       error
	Transient bool
}

// Lookuper resolves a player's handedness.
type Lookuper interface {
	LookupHandedness(ctx context.Context, playerID string) Result
}

// Client is a rate-limited HTTP client for the people endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient returns a Client for baseURL allowing requestsPerMinute requests.
// An empty baseURL means DefaultBaseURL; requestsPerMinute <= 0 disables rate
// limiting.
func NewClient(baseURL string, requestsPerMinute int, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

type peopleResponse struct {
	People []struct {
		ShootsCatches *string `json:"shootsCatches"`
	} `json:"people"`
}

// LookupHandedness fetches /people/{id} and reads people[0].shootsCatches.
// Network errors, 429 and 5xx are transient failures; other non-200 statuses
// are permanent failures; 404, an empty people list or an unrecognised value
// are Absent.
func (c *Client) LookupHandedness(ctx context.Context, playerID string) Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("rate limit wait: %w", err), Transient: true}
	}

	path := "/people/" + url.PathEscape(playerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("GET %s: %w", path, err), Transient: true}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return Result{Outcome: OutcomeAbsent}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode), Transient: true}
	default:
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("read response body: %w", err), Transient: true}
	}
	var pr peopleResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	if len(pr.People) == 0 || pr.People[0].ShootsCatches == nil {
		return Result{Outcome: OutcomeAbsent}
	}
	hand := model.ParseHandedness(*pr.People[0].ShootsCatches)
	if hand == model.HandUnknown {
		return Result{Outcome: OutcomeAbsent}
	}
	return Result{Outcome: OutcomeFound, Hand: hand}
}
