package reelshelf

import (
	"embed"
	"io/fs"
)

//go:embed all:web/dist
var staticFiles embed.FS

// GetDistFS returns the embedded web UI.
func GetDistFS() (fs.FS, error) {
	return fs.Sub(staticFiles, "web/dist")
}
