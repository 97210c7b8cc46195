// Package render implements the Render Bridge (C7): it turns a
// visualization state, after a layout pass has written positions onto it,
// into the flat render-node/render-edge lists a host renderer consumes
// (spec.md §4.7, §6).
//
//	frame := render.Bridge(state, render.DefaultTheme())
//	for _, n := range frame.Nodes { ... }
//
// [Bridge] performs parent linking, coordinate translation (absolute for
// roots, parent-relative for children — invertible via [Absolute]), and
// style-to-theme mapping for every element of the unified edge view.
package render
