// Package download talks to download clients and reports the items they hold.
package download

import (
	"context"
)

// Protocol is the transfer protocol of a download client.
type Protocol string

const (
	ProtocolUsenet  Protocol = "usenet"
	ProtocolTorrent Protocol = "torrent"
)

// Status is the state a client reports for one item.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusPaused      Status = "paused"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusWarning     Status = "warning"
)

// ClientInfo identifies a configured download client.
type ClientInfo struct {
	ID       int64
	Name     string
	Protocol Protocol
}

// ClientItem is one download as reported by its client.
type ClientItem struct {
	DownloadID    string // Client-side id (nzo_id, torrent hash)
	Title         string
	Status        Status
	OutputPath    string // Completed file or folder, empty while queued
	TotalSize     int64
	RemainingSize int64
	CanMoveFiles  bool
	CanBeRemoved  bool
	Client        ClientInfo
}

// Clone returns a copy the caller may mutate.
func (i *ClientItem) Clone() *ClientItem {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// Client lists the items held by a download client.
type Client interface {
	// Info identifies the client.
	Info() ClientInfo
	// List returns every queued, active and finished item.
	List(ctx context.Context) ([]*ClientItem, error)
}
