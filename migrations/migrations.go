// Package migrations embeds the SQL schema for every supported driver.
package migrations

import "embed"

// FS holds one directory per driver name ("sqlite3", "postgres").
//
//go:embed sqlite3/*.sql postgres/*.sql
var FS embed.FS
