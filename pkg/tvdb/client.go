package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultBaseURL = "https://api4.thetvdb.com/v4"
	maxPages       = 100
)

// Sentinel errors for TVDB API responses.
var (
	ErrNotFound     = errors.New("series not found")
	ErrUnauthorized = errors.New("unauthorized: invalid or expired API key")
	ErrRateLimited  = errors.New("rate limited: too many requests")
)

// Client is a TVDB API v4 client with JWT authentication.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	newBackOff func() backoff.BackOff

	// JWT token management (thread-safe)
	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log.With("component", "tvdb")
		}
	}
}

// WithBackOff sets the retry policy for rate-limited requests.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = f
	}
}

// New creates a new TVDB API v4 client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.Default().With("component", "tvdb"),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxElapsedTime = time.Minute
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// login authenticates with TVDB and stores the JWT token.
func (c *Client) login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"apikey": c.apiKey})
	if err != nil {
		return fmt.Errorf("marshal login body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute login request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %s", resp.Status)
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if loginResp.Data.Token == "" {
		return errors.New("login response missing token")
	}

	c.mu.Lock()
	c.token = loginResp.Data.Token
	c.mu.Unlock()

	c.log.Debug("authenticated with TVDB")
	return nil
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// get fetches endpoint into result. A missing or expired token triggers
// one login; rate-limited responses are retried with backoff.
func (c *Client) get(ctx context.Context, endpoint string, result any) error {
	op := func() error {
		err := c.getOnce(ctx, endpoint, result)
		if errors.Is(err, ErrUnauthorized) {
			c.mu.Lock()
			c.token = ""
			c.mu.Unlock()
			c.log.Debug("token expired, refreshing")
			err = c.getOnce(ctx, endpoint, result)
		}
		if err != nil && !errors.Is(err, ErrRateLimited) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.log.Debug("request throttled, retrying", "endpoint", endpoint, "wait", wait)
	}
	return backoff.RetryNotify(op, backoff.WithContext(c.newBackOff(), ctx), notify)
}

func (c *Client) getOnce(ctx context.Context, endpoint string, result any) error {
	if c.currentToken() == "" {
		if err := c.login(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.currentToken())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// GetSeries fetches series metadata by TVDB ID.
func (c *Client) GetSeries(ctx context.Context, id int) (*Series, error) {
	var resp seriesResponse
	if err := c.get(ctx, fmt.Sprintf("/series/%d", id), &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.log.Debug("series not found", "id", id)
		}
		return nil, err
	}

	// Extract year from firstAired (format: YYYY-MM-DD)
	var year int
	if len(resp.Data.FirstAired) >= 4 {
		year, _ = strconv.Atoi(resp.Data.FirstAired[:4])
	}

	return &Series{
		ID:     resp.Data.ID,
		Name:   resp.Data.Name,
		Year:   year,
		Status: resp.Data.Status.Name,
	}, nil
}

// GetEpisodes fetches all episodes for a series in aired order, handling
// pagination automatically.
func (c *Client) GetEpisodes(ctx context.Context, seriesID int) ([]Episode, error) {
	start := time.Now()

	var episodes []Episode
	page := 0
	for ; page < maxPages; page++ {
		var resp episodesResponse
		endpoint := fmt.Sprintf("/series/%d/episodes/default?page=%d", seriesID, page)
		if err := c.get(ctx, endpoint, &resp); err != nil {
			return nil, err
		}

		for _, ep := range resp.Data.Episodes {
			episodes = append(episodes, ep.toEpisode())
		}
		if resp.Links.Next == "" {
			break
		}
	}
	if page == maxPages {
		c.log.Warn("hit pagination limit", "series_id", seriesID, "pages", page)
	}

	c.log.Debug("fetched episodes", "series_id", seriesID, "count", len(episodes), "duration_ms", time.Since(start).Milliseconds())
	return episodes, nil
}

func (r episodeRecord) toEpisode() Episode {
	// Parse air date (format: YYYY-MM-DD)
	var aired time.Time
	if r.Aired != "" {
		aired, _ = time.Parse(time.DateOnly, r.Aired)
	}
	return Episode{
		ID:         r.ID,
		Season:     r.SeasonNumber,
		Episode:    r.Number,
		Absolute:   r.AbsoluteNumber,
		Name:       r.Name,
		AirDate:    aired,
		FinaleType: r.FinaleType,
	}
}

// checkResponse maps HTTP error statuses to sentinel errors.
func checkResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("TVDB API error: %s", resp.Status)
	}
}
