// Package httpapi exposes the State API's read-only query operations
// (spec.md §6: visible_nodes, visible_edges_unified, children_of, ...) as
// JSON over HTTP via github.com/go-chi/chi/v5, following chi's standard
// net/http-compatible router idiom.
//
// Wire format is not prescribed beyond shape (spec.md §6); this is one
// binding, intended for manual exploration and host integration, not a
// mutation surface — every route here is read-only.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hydro-project/flowviz/pkg/model"
	"github.com/hydro-project/flowviz/pkg/orchestrator"
)

// Server wraps an Orchestrator with a read-only introspection router.
type Server struct {
	orch *orchestrator.Orchestrator
}

// New returns an http.Handler exposing orch's state over JSON.
func New(orch *orchestrator.Orchestrator) http.Handler {
	s := &Server{orch: orch}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/phase", s.handlePhase)
	r.Get("/frame", s.handleFrame)
	r.Get("/nodes", s.handleVisibleNodes)
	r.Get("/edges", s.handleVisibleEdges)
	r.Get("/containers", s.handleVisibleContainers)
	r.Get("/containers/{id}/children", s.handleChildren)
	r.Get("/entities/{id}", s.handleEntity)

	return r
}

func (s *Server) handlePhase(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"phase": string(s.orch.Phase())})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.orch.LastReady())
}

func (s *Server) handleVisibleNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.orch.State().VisibleNodes())
}

func (s *Server) handleVisibleEdges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.orch.State().VisibleEdgesUnified())
}

func (s *Server) handleVisibleContainers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.orch.State().VisibleContainers())
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, s.orch.State().ChildrenOf(id))
}

// entityView is a best-effort union view: exactly one of Node/Edge/Container
// is non-nil depending on what id resolves to.
type entityView struct {
	Node      *model.Node      `json:"node,omitempty"`
	Edge      *model.Edge      `json:"edge,omitempty"`
	Container *model.Container `json:"container,omitempty"`
	HyperEdge *model.HyperEdge `json:"hyper_edge,omitempty"`
}

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st := s.orch.State()

	var view entityView
	if n, ok := st.GetNode(id); ok {
		view.Node = n
	} else if e, ok := st.GetEdge(id); ok {
		view.Edge = e
	} else if c, ok := st.GetContainer(id); ok {
		view.Container = c
	} else if h, ok := st.GetHyperEdge(id); ok {
		view.HyperEdge = h
	} else {
		http.Error(w, "unknown entity id", http.StatusNotFound)
		return
	}
	writeJSON(w, view)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
