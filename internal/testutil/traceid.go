package testutil

// FixedTraceIDs returns the same trace id on every call.
//
// The CLI and HTTP envelopes stamp every response with a fresh UUIDv7; a
// fixed id keeps their output byte-identical across runs so it can be
// compared against golden files.
//
// Thread-safety: FixedTraceIDs is stateless and safe for concurrent use.
type FixedTraceIDs struct {
	id string
}

// NewFixedTraceIDs creates a generator for id. If id is empty, Generate
// returns "00000000-0000-7000-8000-000000000000".
func NewFixedTraceIDs(id string) *FixedTraceIDs {
	if id == "" {
		id = "00000000-0000-7000-8000-000000000000"
	}
	return &FixedTraceIDs{id: id}
}

// Generate returns the fixed id.
func (g *FixedTraceIDs) Generate() string {
	return g.id
}
