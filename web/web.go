package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var content embed.FS

// Static - the browser page served at the site root.
func Static() fs.FS {
	static, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}

	return static
}
