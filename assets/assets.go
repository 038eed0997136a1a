// Package assets embeds files shipped inside the binary.
package assets

import "embed"

// Migrations holds the PostgreSQL schema migrations under "migrations/".
//
//go:embed migrations/*.sql
var Migrations embed.FS
