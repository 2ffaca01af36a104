// Package migrations embeds the SQL schema for the meeting archive.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
