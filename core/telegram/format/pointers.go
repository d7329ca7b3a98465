package format

// Or returns *s, or fallback when s is nil or points to an empty string.
func Or(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
