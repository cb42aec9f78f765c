package mzident

import "strconv"

// Registry assigns stable string ids to document entities. Ids are scoped to
// an entity type: resolving the same (type, key) pair always returns the same
// id, distinct keys of one type never collide, and ids are never shared
// between types. This is what makes forward references work - a
// SpectrumIdentificationItem can resolve "Peptide"/"P1" before (or without)
// the Peptide element being written.
//
// A Registry lives exactly as long as its document session and never forgets
// a binding.
type Registry struct {
	counters map[string]int
	assigned map[string]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: map[string]int{},
		assigned: map[string]string{},
	}
}

// Resolve returns the id bound to (entityType, key), creating the binding on
// first use. An empty key mints a fresh monotonically increasing ordinal
// scoped to entityType. Generated ids are type-qualified: "Peptide_P1",
// "AnalysisSoftware_1".
func (r *Registry) Resolve(entityType, key string) string {
	if key == "" {
		// Skip ordinals the caller has already claimed as explicit keys so
		// a minted id is always fresh.
		for {
			r.counters[entityType]++
			key = strconv.Itoa(r.counters[entityType])
			if _, taken := r.assigned[entityType+"\x00"+key]; !taken {
				break
			}
		}
	}
	mapKey := entityType + "\x00" + key
	if id, ok := r.assigned[mapKey]; ok {
		return id
	}
	id := entityType + "_" + key
	r.assigned[mapKey] = id
	return id
}
