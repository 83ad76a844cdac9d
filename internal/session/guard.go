package session

import "github.com/localchefbazaar/bazaar/internal/api"

// Decision is the route guard's verdict for one evaluation.
type Decision int

const (
	// DecisionLoading: the initial auth determination is still in flight;
	// render a loading affordance, never a redirect.
	DecisionLoading Decision = iota
	// DecisionDenied: unauthenticated; redirect to login preserving the
	// requested location.
	DecisionDenied
	// DecisionForbidden: authenticated but the effective role is outside the
	// permitted set; redirect to the default landing page.
	DecisionForbidden
	// DecisionAllowed: render.
	DecisionAllowed
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionDenied:
		return "denied"
	case DecisionForbidden:
		return "forbidden"
	case DecisionAllowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// GuardInput is everything one guard evaluation consults.
type GuardInput struct {
	Snapshot Snapshot
	// Token is the bearer credential as currently stored; its lifetime is
	// independent of the identity, and its absence denies even a present
	// identity.
	Token string
	// AllowedRoles is the optional permitted-role set for the route. Empty
	// means any authenticated user.
	AllowedRoles []api.Role
}

// Evaluate applies the guard policy in its fixed order: loading, then
// authentication, then role. The unresolved-record role defaults to user via
// Snapshot.EffectiveRole, so an unknown role can deny chef/admin routes but
// never grant them.
func Evaluate(in GuardInput) Decision {
	if !in.Snapshot.Resolved {
		return DecisionLoading
	}

	if in.Token == "" || in.Snapshot.Identity == nil {
		return DecisionDenied
	}

	if len(in.AllowedRoles) > 0 {
		role := in.Snapshot.EffectiveRole()
		allowed := false
		for _, r := range in.AllowedRoles {
			if r == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return DecisionForbidden
		}
	}

	return DecisionAllowed
}

// Check evaluates the guard against the store's current state and performs
// the DENIED side effect: the cached identity and record are invalidated so a
// vanished credential cannot leave a trusted-looking identity behind.
func (s *Store) Check(allowedRoles ...api.Role) Decision {
	token, _ := s.tokens.Load()
	decision := Evaluate(GuardInput{
		Snapshot:     s.Snapshot(),
		Token:        token,
		AllowedRoles: allowedRoles,
	})
	if decision == DecisionDenied {
		s.Invalidate()
	}
	return decision
}
