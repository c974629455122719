package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/commercesync/backend/internal/domain/integration"
)

// Resolution is the outcome of an existence check.
type Resolution struct {
	Exists   bool
	TargetID int64
	// Adopted is set when the id came from a natural-key match rather than
	// the entity metadata.
	Adopted bool
}

// CustomerFinder looks up TARGET customers by email.
type CustomerFinder interface {
	FindCustomersByEmail(ctx context.Context, email string) ([]integration.TargetCustomer, error)
}

// IdentityMapper decides whether a SOURCE entity has a TARGET counterpart.
// It never writes.
type IdentityMapper struct{}

// Resolve uses the metadata link only.
func (IdentityMapper) Resolve(md integration.Metadata) Resolution {
	if md.HasTargetID() {
		return Resolution{Exists: true, TargetID: md.TargetIDValue()}
	}
	return Resolution{}
}

// ResolveCustomer falls back to an exact, case-sensitive email match when
// the metadata carries no link. More than one match is reported as
// ErrAmbiguousMatch.
func (m IdentityMapper) ResolveCustomer(ctx context.Context, finder CustomerFinder, c *integration.SourceCustomer) (Resolution, error) {
	if r := m.Resolve(c.Metadata); r.Exists {
		return r, nil
	}
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return Resolution{}, nil
	}

	found, err := finder.FindCustomersByEmail(ctx, email)
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup customer by email: %w", err)
	}

	var matches []integration.TargetCustomer
	for _, tc := range found {
		if tc.Email == email && tc.ID > 0 {
			matches = append(matches, tc)
		}
	}
	switch len(matches) {
	case 0:
		return Resolution{}, nil
	case 1:
		return Resolution{Exists: true, TargetID: matches[0].ID, Adopted: true}, nil
	default:
		return Resolution{}, fmt.Errorf("%w: %d customers with email %s", integration.ErrAmbiguousMatch, len(matches), email)
	}
}
