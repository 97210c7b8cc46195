// Package engine implements the collapse/expand state machine (C5): the
// only component allowed to create or destroy hyper-edges, flip
// collapsed/hidden on containers and their descendants, and adjust
// aggregated-edge mappings.
//
// Collapse and Expand are free-standing functions over a *model.State
// rather than methods on a type this package owns — they borrow the state
// mutably for the duration of one step, in keeping with the rest of the
// core's has-a composition rather than inheritance. Both operations are
// atomic: a snapshot of the state is taken up front and restored verbatim
// if the step produces an invariant violation.
package engine
