package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var StaticFS embed.FS

// FS returns the embedded assets rooted at the static directory.
func FS() http.FileSystem {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		// the embed path is fixed at compile time
		panic(err)
	}
	return http.FS(sub)
}
