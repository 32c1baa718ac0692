package appfs

import "embed"

// FS embeds runtime assets, goose migrations included.
//go:embed migrations
var FS embed.FS
