package livereload

// Clients returns the number of browsers connected to the running server.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hub == nil {
		return 0
	}
	return s.hub.Clients()
}

// StylesheetURL exposes stylesheetURL for testing.
var StylesheetURL = stylesheetURL
