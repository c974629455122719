package integration

import (
	"context"
	"fmt"

	"github.com/commercesync/backend/internal/domain/integration"
)

// orderStrategy reconciles SOURCE orders. Products referenced by an order
// are resolved, or created through the product reconciler, before the
// order itself.
type orderStrategy struct {
	source   integration.SourceCatalog
	target   integration.TargetStore
	products *Reconciler[*integration.SourceProduct]
	mapper   IdentityMapper

	// TARGET ids of products linked during this run, by SOURCE id
	linked map[string]int64
}

func newOrderStrategy(
	source integration.SourceCatalog,
	target integration.TargetStore,
	products *Reconciler[*integration.SourceProduct],
) *orderStrategy {
	return &orderStrategy{
		source:   source,
		target:   target,
		products: products,
		linked:   make(map[string]int64),
	}
}

var _ Strategy[*integration.SourceOrder] = (*orderStrategy)(nil)

func (s *orderStrategy) Module() integration.SyncModule { return integration.SyncModuleOrders }

func (s *orderStrategy) SubjectID(o *integration.SourceOrder) string { return o.ID }

func (s *orderStrategy) Metadata(o *integration.SourceOrder) integration.Metadata {
	return o.Metadata
}

func (s *orderStrategy) Resolve(_ context.Context, o *integration.SourceOrder) (Resolution, error) {
	if o.ID == "" {
		return Resolution{}, fmt.Errorf("%w: order without id", integration.ErrInvalidEntity)
	}
	return s.mapper.Resolve(o.Metadata), nil
}

func (s *orderStrategy) Create(ctx context.Context, o *integration.SourceOrder) (int64, error) {
	items, err := s.lineItems(ctx, o)
	if err != nil {
		return 0, err
	}
	body := ToTargetOrder(o, items, []integration.TargetShippingLine{DesiredShippingLine(o)})
	created, err := s.target.CreateOrder(ctx, body)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	if created == nil || created.ID <= 0 {
		return 0, integration.ErrMissingTargetID
	}
	return created.ID, nil
}

// Update merges the fresh line items and shipping line into the current
// TARGET order.
func (s *orderStrategy) Update(ctx context.Context, o *integration.SourceOrder, targetID int64) error {
	current, err := s.target.GetOrder(ctx, targetID)
	if err != nil {
		return fmt.Errorf("get order %d: %w", targetID, err)
	}
	items, err := s.lineItems(ctx, o)
	if err != nil {
		return err
	}
	body := ToTargetOrder(o,
		MergeLineItems(current.LineItems, items),
		MergeShippingLines(current.ShippingLines, DesiredShippingLine(o)),
	)
	if _, err := s.target.UpdateOrder(ctx, targetID, body); err != nil {
		return fmt.Errorf("update order %d: %w", targetID, err)
	}
	return nil
}

func (s *orderStrategy) Delete(ctx context.Context, targetID int64) error {
	return s.target.DeleteOrder(ctx, targetID)
}

func (s *orderStrategy) WriteBack(ctx context.Context, o *integration.SourceOrder, md integration.Metadata) error {
	return s.source.WriteBack(ctx, integration.SyncModuleOrders, o, md)
}

// lineItems builds one line per order product. The quantity is the pivot
// quantity; the variation is resolved from the pivot variant id.
func (s *orderStrategy) lineItems(ctx context.Context, o *integration.SourceOrder) ([]integration.TargetLineItem, error) {
	items := make([]integration.TargetLineItem, 0, len(o.Products))
	for i := range o.Products {
		p := &o.Products[i]

		productID, err := s.productTargetID(ctx, p)
		if err != nil {
			return nil, err
		}

		item := integration.TargetLineItem{ProductID: productID, Quantity: 1}
		if p.Pivot != nil {
			item.Quantity = p.Pivot.LineQuantity()
			if p.Pivot.VariantID != "" {
				variations, err := s.target.ListVariations(ctx, productID)
				if err != nil {
					return nil, fmt.Errorf("list variations of %d: %w", productID, err)
				}
				if v, ok := FindVariationBySourceID(variations, p.Pivot.VariantID); ok {
					item.VariationID = v.ID
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// productTargetID returns the TARGET id of an order product. An unlinked
// product is reloaded from SOURCE, since orders embed a partial copy, and
// reconciled once; later references in the same run reuse that link.
func (s *orderStrategy) productTargetID(ctx context.Context, p *integration.SourceProduct) (int64, error) {
	if p.Metadata.HasTargetID() {
		return p.Metadata.TargetIDValue(), nil
	}
	if id, ok := s.linked[p.ID]; ok {
		return id, nil
	}

	full, err := s.source.GetProduct(ctx, p.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: product %s: %w", integration.ErrChildSyncFailed, p.ID, err)
	}
	if full.Metadata.HasTargetID() {
		s.linked[p.ID] = full.Metadata.TargetIDValue()
		return s.linked[p.ID], nil
	}

	out := s.products.Reconcile(ctx, full)
	if !out.Succeeded() {
		return 0, fmt.Errorf("%w: product %s: %w", integration.ErrChildSyncFailed, p.ID, out.Err)
	}
	s.linked[p.ID] = out.TargetID
	return out.TargetID, nil
}
