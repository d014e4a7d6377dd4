package sdk

import "strings"

type AddressDomain string

const (
	AddressDomainUser     AddressDomain = "user"
	AddressDomainTreasury AddressDomain = "treasury"
	AddressDomainVote     AddressDomain = "vote"
	AddressDomainPool     AddressDomain = "pool"
)

type Address string

// String returns the literal representation (like user:alice) of the address.
func (a Address) String() string {
	return string(a)
}

// Domain checks the prefix to tell user accounts from engine-derived ones.
func (a Address) Domain() AddressDomain {
	switch {
	case strings.HasPrefix(a.String(), "dao:"):
		return AddressDomainTreasury
	case strings.HasPrefix(a.String(), "vote:"):
		return AddressDomainVote
	case strings.HasPrefix(a.String(), "pool:"):
		return AddressDomainPool
	default:
		return AddressDomainUser
	}
}

// IsDerived reports whether the address was minted by the engine itself
// rather than supplied by a caller.
func (a Address) IsDerived() bool {
	return a.Domain() != AddressDomainUser
}

// IsValid is a light sanity check used at payload boundaries.
func (a Address) IsValid() bool {
	return len(a) > 0 && !strings.ContainsAny(a.String(), " \t\n")
}
