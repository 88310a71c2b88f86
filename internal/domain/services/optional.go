package services

// OptionalField tracks tri-state semantics for nullable fields in partial updates (RFC 7396).
// This is transport-agnostic - handlers map it from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"x": field has value
type OptionalField struct {
	Present bool
	Value   *string
}

// Apply returns the updated value for current.
func (o OptionalField) Apply(current *string) *string {
	if !o.Present {
		return current
	}
	return o.Value
}
