// Package store implements the multi-attribute ranked index: a primary-key
// keyed collection of user records with several secondary order-statistic
// views that answer rank-by-value queries in O(log n).
package store

import "math"

// Record is the user value object. Score attributes are plain uint32 fields;
// derived scores are pure functions of them, recomputed on demand so a
// RankedIndex keyed by a derived score always sees the current value.
type Record struct {
	UID     uint32
	Name    string
	ExpPers uint32
	Active  uint32
	ExpGang uint32
}

// Clone returns a value copy of the record. Callers receive copies so that
// mutating a returned Record can never desynchronize an index from the
// record it was built from.
func (r *Record) Clone() *Record {
	cp := *r
	return &cp
}

// HybridA computes 0.7*exp_pers + 0.3*activity, truncated toward zero on
// conversion to uint32 (not rounded) to match assignment-to-unsigned-integer
// semantics.
func (r *Record) HybridA() uint32 {
	return uint32(math.Trunc(0.7*float64(r.ExpPers) + 0.3*float64(r.Active)))
}

// HybridB computes 0.3*exp_pers + 0.3*activity + 0.4*exp_gang, with the same
// truncate-toward-zero semantics as HybridA.
func (r *Record) HybridB() uint32 {
	return uint32(math.Trunc(0.3*float64(r.ExpPers) + 0.3*float64(r.Active) + 0.4*float64(r.ExpGang)))
}

// View names a ranked secondary ordering and the pure projector that
// computes its sort key from a record. Projectors must be deterministic:
// changing one after records have been inserted would desynchronize the
// index from the records it ranks.
type View struct {
	Name    string
	Project func(*Record) uint32
}

// ExpPersView, ActiveView and ExpGangView are the three views present in
// every revision of the schema; HybridAView/HybridBView correspond to the
// two later schema revisions and are wired in only when configured.
var (
	ExpPersView = View{Name: "exp_pers", Project: func(r *Record) uint32 { return r.ExpPers }}
	ActiveView  = View{Name: "active", Project: func(r *Record) uint32 { return r.Active }}
	ExpGangView = View{Name: "exp_gang", Project: func(r *Record) uint32 { return r.ExpGang }}
	HybridAView = View{Name: "hybrid_a", Project: func(r *Record) uint32 { return r.HybridA() }}
	HybridBView = View{Name: "hybrid_b", Project: func(r *Record) uint32 { return r.HybridB() }}
)
