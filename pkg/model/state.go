package model

// State is the visualization state core: nodes, edges, containers, and
// hyper-edges by id (the entity store, C1), the parent/child relation over
// containers (the hierarchy index, C2), the edge incidence index (C3), and
// the derived visibility sets (C4).
//
// State composes these concerns by ownership, not inheritance — it has-a
// hierarchy index and has-a incidence index; the visibility sets are
// computed on each query rather than stored. It is not
// safe for concurrent use without external synchronization; the single
// logical owner is expected to be an [github.com/hydro-project/flowviz/pkg/orchestrator.Orchestrator]
// (spec.md §5).
type State struct {
	nodes      map[string]*Node
	edges      map[string]*Edge
	containers map[string]*Container
	hyperEdges map[string]*HyperEdge

	hierarchy  *hierarchyIndex
	incidence  *incidenceIndex
}

// New creates an empty visualization state.
func New() *State {
	return &State{
		nodes:      make(map[string]*Node),
		edges:      make(map[string]*Edge),
		containers: make(map[string]*Container),
		hyperEdges: make(map[string]*HyperEdge),
		hierarchy:  newHierarchyIndex(),
		incidence:  newIncidenceIndex(),
	}
}

// Clear wipes all collections and indices.
func (s *State) Clear() {
	s.nodes = make(map[string]*Node)
	s.edges = make(map[string]*Edge)
	s.containers = make(map[string]*Container)
	s.hyperEdges = make(map[string]*HyperEdge)
	s.hierarchy = newHierarchyIndex()
	s.incidence = newIncidenceIndex()
}

// NodeCount, EdgeCount, ContainerCount, HyperEdgeCount report the size of
// each collection, mostly useful for tests and diagnostics.
func (s *State) NodeCount() int      { return len(s.nodes) }
func (s *State) EdgeCount() int      { return len(s.edges) }
func (s *State) ContainerCount() int { return len(s.containers) }
func (s *State) HyperEdgeCount() int { return len(s.hyperEdges) }

// exists reports whether id names any entity (node, edge, container, or
// hyper-edge) in the store, used for cross-collection id collision checks.
func (s *State) exists(id string) bool {
	if _, ok := s.nodes[id]; ok {
		return true
	}
	if _, ok := s.edges[id]; ok {
		return true
	}
	if _, ok := s.containers[id]; ok {
		return true
	}
	if _, ok := s.hyperEdges[id]; ok {
		return true
	}
	return false
}
