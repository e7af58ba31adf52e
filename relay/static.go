package relay

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
)

// staticFile is a front-end file served from the root of the static dir.
type staticFile struct {
	route   string
	name    string
	missing string
}

var staticFiles = []staticFile{
	{route: "/", name: "index.html", missing: "Index file not found"},
	{route: "/manifest.json", name: "manifest.json", missing: "Manifest not found"},
	{route: "/service-worker.js", name: "service-worker.js", missing: "Service worker not found"},
	{route: "/settings.html", name: "settings.html", missing: "Settings page not found"},
}

func (r *Relay) registerStatic(app *fiber.App) {
	for _, f := range staticFiles {
		app.Get(f.route, r.serveStaticFile(f))
	}

	assets := filepath.Join(r.staticDir, "assets")
	app.Get("/assets/*", adaptor.HTTPHandler(http.StripPrefix("/assets", assetsHandler(assets))))
}

func (r *Relay) serveStaticFile(f staticFile) fiber.Handler {
	full := filepath.Join(r.staticDir, f.name)
	return func(c *fiber.Ctx) error {
		if info, err := os.Stat(full); err != nil || info.IsDir() {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Detail: f.missing})
		}
		return c.SendFile(full)
	}
}

// assetsHandler serves regular files below root and answers 404 for missing
// paths and directories, so directory listings are never exposed.
func assetsHandler(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		name := path.Clean("/" + req.URL.Path)
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil || info.IsDir() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		files.ServeHTTP(w, req)
	})
}

// handleDebugPaths reports where the relay looks for front-end files.
func (r *Relay) handleDebugPaths(c *fiber.Ctx) error {
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(r.staticDir, name))
		return err == nil
	}

	var listing any = "static dir not found"
	if entries, err := os.ReadDir(r.staticDir); err == nil {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".") {
				continue
			}
			names = append(names, e.Name())
		}
		listing = names
	}

	return c.JSON(fiber.Map{
		"static_dir":          r.staticDir,
		"index_exists":        exists("index.html"),
		"assets_exists":       exists("assets"),
		"files_in_static_dir": listing,
	})
}
