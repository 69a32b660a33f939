package incremark

// Option configures a Session during creation.
type Option func(*Session)

// WithSessionID sets the session's identifier instead of generating
// one.
func WithSessionID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithoutMemoization disables the memoization table, forcing every
// parse to run from scratch. Parses produce identical trees either
// way; this exists for testing and for measuring the incremental
// speedup.
func WithoutMemoization() Option {
	return func(s *Session) {
		s.tab = nil
	}
}
