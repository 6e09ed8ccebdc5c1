package geo

import "context"

// StateProvider serves the state/LGA address feed used by registration
// forms. Failure is non-fatal for callers; they degrade to an empty list.
type StateProvider interface {
	ListStates(ctx context.Context) ([]*State, error)
}

type State struct {
	Name string   `json:"name"`
	LGAs []string `json:"lgas"`
}
