package download

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SABnzbdClient lists downloads held by SABnzbd.
type SABnzbdClient struct {
	info       ClientInfo
	baseURL    string
	apiKey     string
	category   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewSABnzbdClient creates a new SABnzbd client. A non-empty category
// limits listings to that category.
func NewSABnzbdClient(info ClientInfo, baseURL, apiKey, category string, log *slog.Logger) *SABnzbdClient {
	if log == nil {
		log = slog.Default()
	}
	info.Protocol = ProtocolUsenet
	if info.Name == "" {
		info.Name = "SABnzbd"
	}
	return &SABnzbdClient{
		info:     info,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		category: category,
		log:      log.With("component", "sabnzbd", "client", info.Name),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Info identifies the client.
func (c *SABnzbdClient) Info() ClientInfo {
	return c.info
}

// List returns queue items followed by history items.
func (c *SABnzbdClient) List(ctx context.Context) ([]*ClientItem, error) {
	queueItems, err := c.getQueue(ctx)
	if err != nil {
		return nil, err
	}

	historyItems, err := c.getHistory(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*ClientItem, 0, len(queueItems)+len(historyItems))
	result = append(result, queueItems...)
	result = append(result, historyItems...)

	return result, nil
}

func (c *SABnzbdClient) params(mode string) url.Values {
	params := url.Values{
		"apikey": {c.apiKey},
		"output": {"json"},
		"mode":   {mode},
	}
	if c.category != "" {
		params.Set("category", c.category)
	}
	return params
}

// getQueue fetches the current download queue.
func (c *SABnzbdClient) getQueue(ctx context.Context) ([]*ClientItem, error) {
	var resp queueResponse
	if err := c.doRequest(ctx, "queue", c.params("queue"), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, apiError(resp.Error)
	}

	items := make([]*ClientItem, 0, len(resp.Queue.Slots))
	for i := range resp.Queue.Slots {
		slot := &resp.Queue.Slots[i]
		items = append(items, &ClientItem{
			DownloadID:    slot.NzoID,
			Title:         slot.Filename,
			Status:        mapQueueStatus(slot.Status),
			TotalSize:     megabytes(slot.MB),
			RemainingSize: megabytes(slot.MBLeft),
			Client:        c.info,
		})
	}

	return items, nil
}

// getHistory fetches the download history.
func (c *SABnzbdClient) getHistory(ctx context.Context) ([]*ClientItem, error) {
	var resp historyResponse
	if err := c.doRequest(ctx, "history", c.params("history"), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, apiError(resp.Error)
	}

	items := make([]*ClientItem, 0, len(resp.History.Slots))
	for _, slot := range resp.History.Slots {
		status := mapHistoryStatus(slot.Status)
		items = append(items, &ClientItem{
			DownloadID:   slot.NzoID,
			Title:        slot.Name,
			Status:       status,
			OutputPath:   slot.Storage,
			TotalSize:    slot.Bytes,
			CanMoveFiles: status == StatusCompleted,
			CanBeRemoved: status.IsFinished(),
			Client:       c.info,
		})
	}

	return items, nil
}

// doRequest performs an HTTP request to the SABnzbd API.
func (c *SABnzbdClient) doRequest(ctx context.Context, mode string, params url.Values, result any) error {
	start := time.Now()
	reqURL := c.baseURL + "/api?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "mode", mode, "error", err)
		return ErrClientUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.log.Debug("api unexpected status", "mode", mode, "status", resp.StatusCode)
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.log.Debug("api request complete", "mode", mode, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Response types for SABnzbd API

type queueResponse struct {
	Error string `json:"error"`
	Queue struct {
		Slots []queueSlot `json:"slots"`
	} `json:"queue"`
}

type queueSlot struct {
	NzoID    string `json:"nzo_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	MB       string `json:"mb"`
	MBLeft   string `json:"mbleft"`
}

type historyResponse struct {
	Error   string `json:"error"`
	History struct {
		Slots []historySlot `json:"slots"`
	} `json:"history"`
}

type historySlot struct {
	NzoID   string `json:"nzo_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Bytes   int64  `json:"bytes"`
	Storage string `json:"storage"`
}

// mapQueueStatus maps SABnzbd queue status to our Status type.
func mapQueueStatus(sabStatus string) Status {
	switch sabStatus {
	case "Downloading", "Fetching", "Grabbing", "Checking":
		return StatusDownloading
	case "Paused":
		return StatusPaused
	case "Queued", "Propagating":
		return StatusQueued
	default:
		return StatusDownloading // fallback for unknown statuses
	}
}

// mapHistoryStatus maps SABnzbd history status to our Status type.
func mapHistoryStatus(sabStatus string) Status {
	switch sabStatus {
	case "Completed":
		return StatusCompleted
	case "Failed":
		return StatusFailed
	default:
		// Post-processing (Verifying, Repairing, Extracting, Moving)
		return StatusDownloading
	}
}

// isAPIKeyError checks if the error message indicates an invalid API key.
func isAPIKeyError(errMsg string) bool {
	lower := strings.ToLower(errMsg)
	return strings.Contains(lower, "api key") || strings.Contains(lower, "apikey")
}

// parseFloat parses a string to float64, returning 0 on error.
func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// megabytes converts a SABnzbd "mb" field to bytes.
func megabytes(s string) int64 {
	return int64(parseFloat(s) * 1024 * 1024)
}

func apiError(msg string) error {
	if isAPIKeyError(msg) {
		return ErrInvalidAPIKey
	}
	return fmt.Errorf("sabnzbd: %s", msg)
}
