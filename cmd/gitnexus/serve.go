package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/gitnexus/gitnexus/internal/ingest"
	"github.com/gitnexus/gitnexus/internal/query"
)

// httpAPI holds the state every handler closes over: one struct, one
// handler method per endpoint, registered on a stdlib http.ServeMux — the
// endpoint set is small enough that a router library buys nothing.
type httpAPI struct {
	surface *query.Surface
	result  *ingest.Result
	repo    string
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "expose the Query Surface over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address", Value: "127.0.0.1:7420"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			surface, result, err := buildSurface(c.Context, cfg)
			if err != nil {
				return err
			}
			api := &httpAPI{surface: surface, result: result, repo: cfg.Project.Root}

			mux := http.NewServeMux()
			mux.HandleFunc("/api/repos", api.handleRepos)
			mux.HandleFunc("/api/graph", api.handleGraph)
			mux.HandleFunc("/api/query", api.handleQuery)
			mux.HandleFunc("/api/search", api.handleSearch)
			mux.HandleFunc("/api/file", api.handleFile)
			mux.HandleFunc("/api/processes", api.handleProcesses)
			mux.HandleFunc("/api/process", api.handleProcess)
			mux.HandleFunc("/api/clusters", api.handleClusters)
			mux.HandleFunc("/api/cluster", api.handleCluster)

			addr := c.String("addr")
			fmt.Printf("gitnexus: serving on http://%s\n", addr)
			return http.ListenAndServe(addr, mux)
		},
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

type repoInfo struct {
	Path       string `json:"path"`
	LastCommit string `json:"lastCommit"`
	IndexedAt  string `json:"indexedAt"`
}

func (a *httpAPI) handleRepos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, []repoInfo{{Path: a.repo, LastCommit: a.result.Meta.LastCommit, IndexedAt: a.result.Meta.IndexedAt}})
}

func (a *httpAPI) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.result.Store.Stats())
}

type queryRequest struct {
	Cypher string `json:"cypher"`
	Repo   string `json:"repo"`
}

func (a *httpAPI) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := a.surface.Cypher(req.Cypher)
	if err != nil {
		writeJSON(w, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, map[string]interface{}{"result": result})
}

type searchRequest struct {
	Q string `json:"q"`
	K int    `json:"k"`
}

func (a *httpAPI) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, a.surface.HybridSearch(r.Context(), req.Q, req.K))
}

func (a *httpAPI) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	file, expanded, ok := a.surface.File(path)
	if !ok {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{"file": file, "relations": expanded})
}

func (a *httpAPI) handleProcesses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.surface.Overview().Processes)
}

func (a *httpAPI) handleProcess(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	report, err := a.surface.Explore(name, query.KindProcess)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, report)
}

func (a *httpAPI) handleClusters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.surface.Overview().Clusters)
}

func (a *httpAPI) handleCluster(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	report, err := a.surface.Explore(name, query.KindCluster)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, report)
}
