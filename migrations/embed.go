// Package migrations embeds SQL migration files into the binary.
//
// The files are applied by database.DB.Migrate at startup when the audit
// store is enabled, so the service runs without the SQL files on disk.
package migrations

import "embed"

// FS holds every *.sql file in this directory at the root of the filesystem.
//
//go:embed *.sql
var FS embed.FS
