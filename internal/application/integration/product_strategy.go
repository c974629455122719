package integration

import (
	"context"
	"fmt"

	"github.com/commercesync/backend/internal/domain/integration"
)

// productStrategy reconciles SOURCE products, their attributes and
// variations.
type productStrategy struct {
	source integration.SourceCatalog
	target integration.ProductStore
	mapper IdentityMapper

	// attributes resolved during this run, by slug
	attributes map[string]integration.TargetAttribute
}

func newProductStrategy(source integration.SourceCatalog, target integration.ProductStore) *productStrategy {
	return &productStrategy{
		source:     source,
		target:     target,
		attributes: make(map[string]integration.TargetAttribute),
	}
}

var (
	_ Strategy[*integration.SourceProduct]    = (*productStrategy)(nil)
	_ ChildSyncer[*integration.SourceProduct] = (*productStrategy)(nil)
)

func (s *productStrategy) Module() integration.SyncModule { return integration.SyncModuleProducts }

func (s *productStrategy) SubjectID(p *integration.SourceProduct) string { return p.ID }

func (s *productStrategy) Metadata(p *integration.SourceProduct) integration.Metadata {
	return p.Metadata
}

func (s *productStrategy) Resolve(_ context.Context, p *integration.SourceProduct) (Resolution, error) {
	if p.ID == "" {
		return Resolution{}, fmt.Errorf("%w: product without id", integration.ErrInvalidEntity)
	}
	return s.mapper.Resolve(p.Metadata), nil
}

func (s *productStrategy) Create(ctx context.Context, p *integration.SourceProduct) (int64, error) {
	attrs, err := s.resolveAttributes(ctx, p)
	if err != nil {
		return 0, err
	}
	created, err := s.target.CreateProduct(ctx, ToTargetProduct(p, attrs))
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	if created == nil || created.ID <= 0 {
		return 0, integration.ErrMissingTargetID
	}
	return created.ID, nil
}

func (s *productStrategy) Update(ctx context.Context, p *integration.SourceProduct, targetID int64) error {
	attrs, err := s.resolveAttributes(ctx, p)
	if err != nil {
		return err
	}
	if _, err := s.target.UpdateProduct(ctx, targetID, ToTargetProduct(p, attrs)); err != nil {
		return fmt.Errorf("update product %d: %w", targetID, err)
	}
	return nil
}

func (s *productStrategy) Delete(ctx context.Context, targetID int64) error {
	return s.target.DeleteProduct(ctx, targetID)
}

func (s *productStrategy) WriteBack(ctx context.Context, p *integration.SourceProduct, md integration.Metadata) error {
	return s.source.WriteBack(ctx, integration.SyncModuleProducts, p, md)
}

// SyncChildren creates or updates one variation per SOURCE variant,
// matching existing variations on their source variant tag.
func (s *productStrategy) SyncChildren(ctx context.Context, p *integration.SourceProduct, targetID int64, created bool) error {
	if !p.IsVariable() {
		return nil
	}
	attrs, err := s.resolveAttributes(ctx, p)
	if err != nil {
		return err
	}

	var existing []integration.TargetVariation
	if !created {
		existing, err = s.target.ListVariations(ctx, targetID)
		if err != nil {
			return fmt.Errorf("list variations of %d: %w", targetID, err)
		}
	}

	for _, v := range p.Variants {
		body := ToTargetVariation(p, v, attrs)
		if match, ok := FindVariationBySourceID(existing, v.ID); ok {
			if _, err := s.target.UpdateVariation(ctx, targetID, match.ID, body); err != nil {
				return fmt.Errorf("update variation %s: %w", v.ID, err)
			}
			continue
		}
		if _, err := s.target.CreateVariation(ctx, targetID, body); err != nil {
			return fmt.Errorf("create variation %s: %w", v.ID, err)
		}
	}
	return nil
}

// resolveAttributes looks up or creates the TARGET attribute of every
// option. Simple products need none.
func (s *productStrategy) resolveAttributes(ctx context.Context, p *integration.SourceProduct) ([]ResolvedAttribute, error) {
	if !p.IsVariable() {
		return nil, nil
	}
	out := make([]ResolvedAttribute, 0, len(p.Options))
	for i, opt := range p.Options {
		ra := ResolvedAttribute{Name: opt.Title, Position: i, Options: opt.Values}
		slug := AttributeSlug(opt.Title)
		if slug == "" {
			out = append(out, ra)
			continue
		}

		attr, ok := s.attributes[slug]
		if !ok {
			found, err := s.target.FindAttributeBySlug(ctx, slug)
			if err != nil {
				return nil, fmt.Errorf("find attribute %q: %w", slug, err)
			}
			if found == nil {
				found, err = s.target.CreateAttribute(ctx, integration.TargetAttribute{
					Name:        opt.Title,
					Slug:        slug,
					Type:        "select",
					OrderBy:     "menu_order",
					HasArchives: false,
				})
				if err != nil {
					return nil, fmt.Errorf("create attribute %q: %w", slug, err)
				}
			}
			attr = *found
			s.attributes[slug] = attr
		}
		ra.ID = attr.ID
		out = append(out, ra)
	}
	return out, nil
}
