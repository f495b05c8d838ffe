package migrations

import "embed"

// FS contains the embedded session table migrations. Files are templates
// rendered with the table name.
//
//go:embed *.sql
var FS embed.FS
