package moderation

import "homelinks-backend/internal/domain"

// TransitionPolicy decides which moderation transitions are allowed.
type TransitionPolicy interface {
	Allowed(from, to domain.PropertyStatus) bool
}

// PermissivePolicy allows approving or rejecting a listing from any state.
type PermissivePolicy struct{}

func (PermissivePolicy) Allowed(from, to domain.PropertyStatus) bool {
	return to == domain.StatusApproved || to == domain.StatusRejected
}

// StrictPolicy only moves pending listings.
type StrictPolicy struct{}

func (StrictPolicy) Allowed(from, to domain.PropertyStatus) bool {
	return from == domain.StatusPending && (to == domain.StatusApproved || to == domain.StatusRejected)
}

// PolicyFor maps a config name to a policy. Unknown names fall back to permissive.
func PolicyFor(name string) TransitionPolicy {
	if name == "strict" {
		return StrictPolicy{}
	}
	return PermissivePolicy{}
}
