package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/commercesync/backend/internal/domain/integration"
)

// customerStrategy reconciles SOURCE customers, using the email as the
// natural key when no link is recorded.
type customerStrategy struct {
	source integration.SourceCatalog
	target integration.CustomerStore
	mapper IdentityMapper
}

var _ Strategy[*integration.SourceCustomer] = (*customerStrategy)(nil)

func (s *customerStrategy) Module() integration.SyncModule { return integration.SyncModuleCustomers }

func (s *customerStrategy) SubjectID(c *integration.SourceCustomer) string { return c.ID }

func (s *customerStrategy) Metadata(c *integration.SourceCustomer) integration.Metadata {
	return c.Metadata
}

func (s *customerStrategy) Resolve(ctx context.Context, c *integration.SourceCustomer) (Resolution, error) {
	if c.ID == "" {
		return Resolution{}, fmt.Errorf("%w: customer without id", integration.ErrInvalidEntity)
	}
	return s.mapper.ResolveCustomer(ctx, s.target, c)
}

func (s *customerStrategy) Create(ctx context.Context, c *integration.SourceCustomer) (int64, error) {
	if strings.TrimSpace(c.Email) == "" {
		return 0, fmt.Errorf("%w: customer %s has no email", integration.ErrInvalidEntity, c.ID)
	}
	created, err := s.target.CreateCustomer(ctx, ToTargetCustomer(c))
	if err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	if created == nil || created.ID <= 0 {
		return 0, integration.ErrMissingTargetID
	}
	return created.ID, nil
}

func (s *customerStrategy) Update(ctx context.Context, c *integration.SourceCustomer, targetID int64) error {
	if _, err := s.target.UpdateCustomer(ctx, targetID, ToTargetCustomer(c)); err != nil {
		return fmt.Errorf("update customer %d: %w", targetID, err)
	}
	return nil
}

func (s *customerStrategy) Delete(ctx context.Context, targetID int64) error {
	return s.target.DeleteCustomer(ctx, targetID)
}

func (s *customerStrategy) WriteBack(ctx context.Context, c *integration.SourceCustomer, md integration.Metadata) error {
	return s.source.WriteBack(ctx, integration.SyncModuleCustomers, c, md)
}
