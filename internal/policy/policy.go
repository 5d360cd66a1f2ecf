// Package policy decides which identities may mutate which projects. The
// core planning logic never consults it; mutation paths in the calling
// layer (store, CLI) do, receiving the policy by injection so permission
// rules stay testable in isolation.
package policy

// WritePolicy authorizes mutations of a project's tasks.
type WritePolicy interface {
	CanWrite(identity, projectID string) bool
}

// AllowAll permits every identity. The default for single-user workspaces.
type AllowAll struct{}

func (AllowAll) CanWrite(identity, projectID string) bool { return true }

// Allowlist permits only a fixed identity set, any project.
type Allowlist struct {
	identities map[string]struct{}
}

// NewAllowlist builds an allowlist policy. An empty list allows no one.
func NewAllowlist(identities []string) *Allowlist {
	set := make(map[string]struct{}, len(identities))
	for _, id := range identities {
		set[id] = struct{}{}
	}
	return &Allowlist{identities: set}
}

func (a *Allowlist) CanWrite(identity, projectID string) bool {
	_, ok := a.identities[identity]
	return ok
}

// FromIdentities returns the policy implied by a configured identity list:
// empty means AllowAll, anything else means Allowlist.
func FromIdentities(identities []string) WritePolicy {
	if len(identities) == 0 {
		return AllowAll{}
	}
	return NewAllowlist(identities)
}
