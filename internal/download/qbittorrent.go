package download

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"
)

// QBittorrentClient lists torrents held by qBittorrent through its Web API.
type QBittorrentClient struct {
	info       ClientInfo
	baseURL    string
	username   string
	password   string
	category   string
	httpClient *http.Client
	log        *slog.Logger

	mu       sync.Mutex
	loggedIn bool
}

// NewQBittorrentClient creates a new qBittorrent client. A non-empty
// category limits listings to that category.
func NewQBittorrentClient(info ClientInfo, baseURL, username, password, category string, log *slog.Logger) *QBittorrentClient {
	if log == nil {
		log = slog.Default()
	}
	info.Protocol = ProtocolTorrent
	if info.Name == "" {
		info.Name = "qBittorrent"
	}
	jar, _ := cookiejar.New(nil)
	return &QBittorrentClient{
		info:     info,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		category: category,
		log:      log.With("component", "qbittorrent", "client", info.Name),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// Info identifies the client.
func (c *QBittorrentClient) Info() ClientInfo {
	return c.info
}

// List returns every torrent in the configured category.
func (c *QBittorrentClient) List(ctx context.Context) ([]*ClientItem, error) {
	params := url.Values{}
	if c.category != "" {
		params.Set("category", c.category)
	}

	var torrents []torrentInfo
	if err := c.get(ctx, "/api/v2/torrents/info", params, &torrents); err != nil {
		return nil, err
	}

	items := make([]*ClientItem, 0, len(torrents))
	for _, t := range torrents {
		status := mapTorrentState(t.State)
		outputPath := t.ContentPath
		if outputPath == "" && t.SavePath != "" {
			outputPath = path.Join(t.SavePath, t.Name)
		}
		// Seeding torrents still hold their files open; only a stopped
		// torrent may be moved or removed.
		stopped := status == StatusCompleted && isStoppedState(t.State)
		items = append(items, &ClientItem{
			DownloadID:    strings.ToUpper(t.Hash),
			Title:         t.Name,
			Status:        status,
			OutputPath:    outputPath,
			TotalSize:     t.Size,
			RemainingSize: t.AmountLeft,
			CanMoveFiles:  stopped,
			CanBeRemoved:  stopped,
			Client:        c.info,
		})
	}
	return items, nil
}

// get performs an authenticated GET, logging in first when needed and
// once more if the session expired.
func (c *QBittorrentClient) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := c.ensureLogin(ctx, false); err != nil {
		return err
	}

	status, err := c.doGet(ctx, endpoint, params, result)
	if status == http.StatusForbidden {
		c.log.Debug("session expired, logging in again")
		if err := c.ensureLogin(ctx, true); err != nil {
			return err
		}
		_, err = c.doGet(ctx, endpoint, params, result)
	}
	return err
}

func (c *QBittorrentClient) doGet(ctx context.Context, endpoint string, params url.Values, result any) (int, error) {
	start := time.Now()
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "endpoint", endpoint, "error", err)
		return 0, ErrClientUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.log.Debug("api unexpected status", "endpoint", endpoint, "status", resp.StatusCode)
		return resp.StatusCode, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}

	c.log.Debug("api request complete", "endpoint", endpoint, "duration_ms", time.Since(start).Milliseconds())
	return resp.StatusCode, nil
}

func (c *QBittorrentClient) ensureLogin(ctx context.Context, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn && !force {
		return nil
	}
	c.loggedIn = false

	form := url.Values{"username": {c.username}, "password": {c.password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("login request failed", "error", err)
		return ErrClientUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode != http.StatusOK || !strings.EqualFold(strings.TrimSpace(string(body)), "ok.") {
		c.log.Warn("login rejected", "status", resp.StatusCode)
		return ErrAuthFailed
	}

	c.loggedIn = true
	return nil
}

type torrentInfo struct {
	Hash        string `json:"hash"`
	Name        string `json:"name"`
	State       string `json:"state"`
	Size        int64  `json:"size"`
	AmountLeft  int64  `json:"amount_left"`
	ContentPath string `json:"content_path"`
	SavePath    string `json:"save_path"`
	Category    string `json:"category"`
}

// mapTorrentState maps a qBittorrent torrent state to our Status type.
func mapTorrentState(state string) Status {
	switch state {
	case "error", "missingFiles":
		return StatusFailed
	case "uploading", "stalledUP", "queuedUP", "forcedUP", "checkingUP", "pausedUP", "stoppedUP":
		return StatusCompleted
	case "pausedDL", "stoppedDL":
		return StatusPaused
	case "queuedDL":
		return StatusQueued
	default:
		return StatusDownloading
	}
}

func isStoppedState(state string) bool {
	return state == "pausedUP" || state == "stoppedUP"
}
