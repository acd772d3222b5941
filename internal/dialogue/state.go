package dialogue

// State is the serializable form of a session.
type State struct {
	ID          string             `json:"id"`
	Context     Context            `json:"context"`
	Preferences DrivingPreferences `json:"preferences"`
}

func (s *Session) State() State {
	return State{ID: s.id, Context: s.ctx, Preferences: s.prefs}
}

// Restore rebuilds a session from a saved state. A state with an unknown
// stage comes back idle.
func Restore(st State, opts ...Option) *Session {
	s := New(st.ID, opts...)
	if !st.Context.Stage.Valid() {
		return s
	}
	s.ctx = st.Context
	s.prefs = st.Preferences
	if s.prefs.WeatherPreference == "" {
		s.prefs.WeatherPreference = WeatherAny
	}
	return s
}
