// Package migrations provides embedded SQL migration files.
package migrations

import (
	_ "embed"
)

// InitialSQL creates the catalog, history and event log tables.
//
//go:embed sql/001_initial.sql
var InitialSQL string
