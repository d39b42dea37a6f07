package services

// Optional tracks tri-state PATCH semantics (RFC 7396) without tying services to JSON.
// Handlers map from httputil.OptionalString / httputil.OptionalTime.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value!=nil: set
type Optional[T any] struct {
	Present bool
	Value   *T
}

// Set builds a present Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: &v}
}
