package cli

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/mixprof/mixprof/pkg/viewer"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr string // listen address
	dir  string // results directory to serve
	open bool   // open the index in a browser
}

// serveCommand creates the serve command, which exposes a results
// directory over HTTP for browsing rendered call graphs.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Browse rendered profiling results over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.dir = args[0]
			}
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "localhost:8377", "listen address")
	cmd.Flags().BoolVar(&opts.open, "open", false, "open the index in a browser")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	dir := opts.dir
	if dir == "" {
		dir = c.Config.OutputDir
	}
	if _, err := os.Stat(dir); err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", c.handleIndex(dir))
	r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(dir))))

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	url := "http://" + opts.addr + "/"
	printSuccess("Serving %s on %s", dir, url)
	printDetail("press Ctrl+C to stop")

	if opts.open {
		if err := viewer.OpenURL(url); err != nil {
			c.Logger.Warn("could not open browser", "err", err)
		}
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// artifactEntry is one row in the served index page.
type artifactEntry struct {
	Name     string
	Size     string
	Modified string
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>mixprof results</title>
<style>
body { font-family: -apple-system, system-ui, sans-serif; margin: 2rem auto; max-width: 720px; color: #222; }
h1 { font-size: 1.3rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #e5e5e5; }
th { color: #888; font-weight: 500; font-size: 0.85rem; }
a { color: #0a7; text-decoration: none; }
a:hover { text-decoration: underline; }
.empty { color: #888; }
</style>
</head>
<body>
<h1>mixprof results</h1>
{{if .Entries}}
<table>
<tr><th>Artifact</th><th>Size</th><th>Modified</th></tr>
{{range .Entries}}
<tr><td><a href="/files/{{.Name}}">{{.Name}}</a></td><td>{{.Size}}</td><td>{{.Modified}}</td></tr>
{{end}}
</table>
{{else}}
<p class="empty">No artifacts yet. Run a profile first.</p>
{{end}}
</body>
</html>
`))

// handleIndex lists the renderable artifacts in the results directory.
func (c *CLI) handleIndex(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := listArtifacts(dir)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, map[string]any{"Entries": entries}); err != nil {
			c.Logger.Warn("index render failed", "err", err)
		}
	}
}

// listArtifacts collects viewable outputs (images, HTML, DOT) from the
// results directory, newest first.
func listArtifacts(dir string) ([]artifactEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type dated struct {
		entry artifactEntry
		mod   time.Time
	}
	var out []dated
	for _, de := range dirEntries {
		if de.IsDir() || !isViewable(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, dated{
			entry: artifactEntry{
				Name:     de.Name(),
				Size:     formatSize(info.Size()),
				Modified: info.ModTime().Format("2006-01-02 15:04"),
			},
			mod: info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].mod.After(out[j].mod) })

	entries := make([]artifactEntry, len(out))
	for i, d := range out {
		entries[i] = d.entry
	}
	return entries, nil
}

func isViewable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".svg", ".png", ".pdf", ".html", ".dot":
		return true
	}
	return false
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
