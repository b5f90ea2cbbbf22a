package search

// State is the mutable record of the current search.
//
// A State has a single owner (the sync controller) which is the only writer.
// Views read it after each controller event. State is not safe for
// concurrent use; all access happens on the UI goroutine.
type State struct {
	// Params are the current search parameters.
	Params Params

	// Results holds the output of the last applied lookup, or nil when no
	// lookup has completed for the current parameters.
	Results *Results

	// ResultsFor are the parameters Results were looked up with. They lag
	// behind Params while a lookup is outstanding.
	ResultsFor Params

	// Pending is the sequence number of the outstanding lookup, 0 if none.
	Pending uint64
}

// NewState creates a state with default parameters.
func NewState(t SearchType) *State {
	return &State{Params: Params{Type: t}.Normalize()}
}

// SetParams replaces the current parameters. Results are left untouched;
// the controller decides whether they are replaced or cleared.
func (s *State) SetParams(p Params) {
	s.Params = p.Normalize()
}

// SetResults stores the results of a completed lookup for params.
func (s *State) SetResults(params Params, r *Results) {
	s.Results = r
	s.ResultsFor = params
}

// ClearResults drops any results and marks nothing as pending.
func (s *State) ClearResults() {
	s.Results = nil
	s.ResultsFor = Params{}
	s.Pending = 0
}

// HasResults reports whether results are present.
func (s *State) HasResults() bool {
	return s.Results != nil
}

// Stale reports whether present results were looked up with parameters other
// than the current ones.
func (s *State) Stale() bool {
	return s.Results != nil && s.ResultsFor != s.Params
}
