// Package pkg provides the core libraries for Flowviz, a visualization
// engine for hierarchical directed graphs: nodes, edges, containers, and
// engine-derived hyper-edges, with collapse/expand over the container
// hierarchy and a layout/render pipeline driven by an orchestrator.
//
// # Architecture
//
// The typical data flow through Flowviz:
//
//	JSON document (model.Doc)
//	         ↓
//	    [model] package (visualization state: nodes/edges/containers)
//	         ↓
//	    [engine] package (collapse/expand, hyper-edge aggregation)
//	         ↓
//	    [layout] package (build layout input, apply computed positions)
//	         ↓
//	    [layoutengine/graphviz] (the concrete layout engine adapter)
//	         ↓
//	    [render] package (flat render-node/render-edge frame)
//	         ↓
//	    host renderer (TUI, HTTP client, ...)
//
// [orchestrator] wires the above into a debounced, cached state machine
// for long-lived hosts; [cache] and [observability] are supporting
// infrastructure used throughout.
//
// # Main Packages
//
// [model] - The visualization state core: the node/edge/container/hyper-edge
// store, hierarchy and visibility queries, and JSON load/dump.
//
// [engine] - Collapse/expand operations over the container hierarchy, and
// the hyper-edge aggregation invariant those operations maintain.
//
// [layout] - The layout bridge: builds engine-agnostic layout input from
// a state and applies engine output back onto it.
//
// [layoutengine/graphviz] - A concrete layout engine adapter built on
// Graphviz's layered algorithm.
//
// [render] - The render bridge: turns a laid-out state into the flat
// frame a host renderer consumes.
//
// [orchestrator] - Debounced collapse/expand → layout → render pipeline
// for a long-lived host, with pluggable caching and observability.
//
// [cache] - Content-hash-keyed cache for layout/render output, with file
// and Redis backends.
//
// [observability] - Pluggable, no-op-by-default hooks for instrumenting
// collapse/expand/layout/render stage timings.
//
// [transport/httpapi] - A read-only HTTP surface over the state's query
// operations.
//
// [config] - TOML-backed configuration loading.
package pkg
