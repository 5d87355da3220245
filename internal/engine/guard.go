package engine

// Guard is the two-flag confirmation gate in front of destructive bulk
// operations. Both flags must be true for the gate to pass; it holds no
// state between requests and never auto-approves from prior calls.
//
// ScopeConfirmed means the caller acknowledged the selection ("yes, all N of
// these"): the updateAll/deleteAll flag on broadcast selections, implied by
// enumeration for explicit identifier lists. ActionConfirmed is the explicit
// confirm flag.
type Guard struct {
	ScopeConfirmed  bool
	ActionConfirmed bool
}

// Allow passes only when both confirmations are present; otherwise it fails
// with the affected count so the caller can surface it.
func (g Guard) Allow(matched int) error {
	if g.ScopeConfirmed && g.ActionConfirmed {
		return nil
	}
	return &ConfirmationError{Matched: matched}
}
