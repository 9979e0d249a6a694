package httpcontroller

import (
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

// customFileServer serves fileSystem under /root/ with MIME types taken from
// the file extension.
func customFileServer(e *echo.Echo, fileSystem fs.FS, root string) {
	fileServer := http.FileServer(http.FS(fileSystem))

	e.GET("/"+root+"/*", echo.WrapHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = strings.TrimPrefix(r.URL.Path, "/"+root)
		setContentType(w, r.URL.Path)
		fileServer.ServeHTTP(w, r)
	})))
}

// imageServer serves /images/* from the embedded static/images directory and
// falls back to dir on disk, where the studio photos live.
func (s *Server) imageServer(dir string) {
	embedded, _ := fs.Sub(AssetsFs, "static/images")

	s.Echo.GET("/images/*", func(c echo.Context) error {
		name := path.Clean(strings.TrimPrefix(c.Param("*"), "/"))
		if name == "." || strings.HasPrefix(name, "..") {
			return echo.ErrNotFound
		}

		if embedded != nil {
			if info, err := fs.Stat(embedded, name); err == nil && !info.IsDir() {
				setContentType(c.Response(), name)
				return echo.StaticFileHandler(name, embedded)(c)
			}
		}

		if dir == "" {
			return echo.ErrNotFound
		}
		full := filepath.Join(dir, filepath.FromSlash(name))
		if info, err := os.Stat(full); err != nil || info.IsDir() {
			return echo.ErrNotFound
		}
		setContentType(c.Response(), name)
		return c.File(full)
	})
}

// setContentType sets the MIME type from the extension, defaulting to text/plain.
func setContentType(w http.ResponseWriter, name string) {
	if mimeType := mime.TypeByExtension(path.Ext(name)); mimeType != "" {
		w.Header().Set("Content-Type", mimeType)
	} else {
		w.Header().Set("Content-Type", "text/plain")
	}
}
