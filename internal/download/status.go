package download

// IsFinished reports whether the client is done with the item, successfully or not.
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsActive reports whether the item still has data to transfer.
func (s Status) IsActive() bool {
	switch s {
	case StatusQueued, StatusPaused, StatusDownloading:
		return true
	default:
		return false
	}
}
