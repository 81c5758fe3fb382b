package tracking

import "errors"

var (
	// ErrSourceMissing indicates the file or folder to rename is gone.
	ErrSourceMissing = errors.New("source does not exist")

	// ErrDestinationExists indicates the rename target is already taken.
	ErrDestinationExists = errors.New("destination already exists")

	// ErrMoveFailed indicates the rename itself failed.
	ErrMoveFailed = errors.New("failed to move")
)
