package cli

import "github.com/google/uuid"

// TraceIDGenerator produces the trace_id attached to CLI responses and
// recorded on compiled-query cache rows.
type TraceIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 trace ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (o *RootOptions) traceID() string {
	if o.TraceIDs == nil {
		return UUIDv7Generator{}.Generate()
	}
	return o.TraceIDs.Generate()
}
