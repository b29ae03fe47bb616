package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/dverbeek/patchwork/pkg/cache"
	"github.com/dverbeek/patchwork/pkg/graph"
	"github.com/dverbeek/patchwork/pkg/render/dot"
	"github.com/dverbeek/patchwork/pkg/snapshot"
	"github.com/dverbeek/patchwork/pkg/store"
)

// serveCommand creates the serve command: a REST API over a snapshot store
// so embedding hosts can load, save and preview graphs.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		storeSpec string
		cacheDir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve snapshots over a REST API",
		Long: `Serve exposes a snapshot store over HTTP:

  GET    /api/v1/graphs             list stored snapshot names
  GET    /api/v1/graphs/{name}      fetch a snapshot
  PUT    /api/v1/graphs/{name}      store a snapshot (validated first)
  DELETE /api/v1/graphs/{name}      delete a snapshot
  GET    /api/v1/graphs/{name}/svg  render a snapshot as SVG`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context(), storeSpec)
			if err != nil {
				return err
			}
			defer st.Close()

			ca, err := c.newCache(cacheDir)
			if err != nil {
				return err
			}
			defer ca.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           c.newRouter(st, ca),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				c.Logger.Info("listening", "addr", addr)
				errc <- srv.ListenAndServe()
			}()

			select {
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				c.Logger.Info("shut down")
				return cmd.Context().Err()
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8420", "listen address")
	cmd.Flags().StringVar(&storeSpec, "store", "", `snapshot store: a directory, redis:// or mongodb:// URL, or "none" (default: XDG data dir)`)
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", `rendered SVG cache directory (default: XDG cache dir; "none" disables caching)`)

	return cmd
}

// newCache opens the rendered-artifact cache for the given directory.
// An empty dir falls back to the user cache directory; "none" disables
// caching entirely.
func (c *CLI) newCache(dir string) (cache.Cache, error) {
	if dir == "none" {
		return cache.NewNullCache(), nil
	}
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, appName)
	}
	return cache.NewFileCache(dir)
}

// newRouter builds the REST API over a snapshot store.
func (c *CLI) newRouter(st store.Store, ca cache.Cache) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1/graphs", func(r chi.Router) {
		r.Get("/", c.listGraphs(st))
		r.Get("/{name}", c.getGraph(st))
		r.Put("/{name}", c.putGraph(st))
		r.Delete("/{name}", c.deleteGraph(st))
		r.Get("/{name}/svg", c.getGraphSVG(st, ca))
	})

	return r
}

func (c *CLI) listGraphs(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := st.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"graphs": names})
	}
}

func (c *CLI) getGraph(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := st.Load(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (c *CLI) putGraph(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := snapshot.Read(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Reject snapshots the editor could not import.
		if _, err := snapshot.ToGraph(snap, nil, graph.IDSequential); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := st.Save(r.Context(), chi.URLParam(r, "name"), snap); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (c *CLI) deleteGraph(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (c *CLI) getGraphSVG(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := st.Load(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		opts := dot.Options{Module: r.URL.Query().Get("module"), Waypoints: true}

		// Snapshot content plus render options fully determine the SVG.
		body, err := snapshot.Marshal(snap)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		key := cache.Key("svg", opts, body)

		svg, hit, err := ca.Get(r.Context(), key)
		if err != nil {
			c.Logger.Warn("cache read failed", "err", err)
		}
		if !hit {
			src, ok := dot.ToDOT(snap, opts)
			if !ok {
				writeError(w, http.StatusNotFound, "module not found")
				return
			}
			svg, err = dot.RenderSVG(src)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if err := ca.Set(r.Context(), key, svg, 24*time.Hour); err != nil {
				c.Logger.Warn("cache write failed", "err", err)
			}
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(svg)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrBadName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
