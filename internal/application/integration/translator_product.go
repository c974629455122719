package integration

import (
	"strings"
	"unicode"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PlaceholderImageURL is used when a product has no media.
const PlaceholderImageURL = "https://genuka.com/favicon.ico"

var hundred = decimal.NewFromInt(100)

// FormatMinorUnits converts an amount in minor currency units to the
// two-decimal string TARGET expects: 1999 becomes "19.99".
func FormatMinorUnits(amount decimal.Decimal) string {
	return amount.Div(hundred).StringFixed(2)
}

// AttributeSlug derives the TARGET attribute slug from an option title:
// accents are folded, letters lower-cased, and every run of other
// characters collapsed to a single underscore.
func AttributeSlug(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// ResolvedAttribute is a SOURCE option bound to its TARGET attribute id.
type ResolvedAttribute struct {
	ID       int64
	Name     string
	Position int
	Options  []string
}

// ToTargetProduct builds the create/update body of a product. attrs is only
// used for variable products.
func ToTargetProduct(p *integration.SourceProduct, attrs []ResolvedAttribute) integration.TargetProduct {
	out := integration.TargetProduct{
		Name:             p.Title,
		Type:             integration.TargetProductTypeSimple,
		Description:      p.Content,
		ShortDescription: p.Content,
		RegularPrice:     FormatMinorUnits(firstVariantPrice(p)),
		Categories:       []integration.TargetCategoryRef{},
		Images:           productImages(p),
		MetaData: []integration.TargetMetaData{
			{Key: integration.MetaKeySourceProductID, Value: p.ID},
		},
	}
	if p.Published != nil {
		if *p.Published {
			out.Status = "publish"
		} else {
			out.Status = "draft"
		}
	}
	if len(p.Variants) == 1 {
		out.SKU = p.Variants[0].SKU
	}

	if p.IsVariable() {
		out.Type = integration.TargetProductTypeVariable
		out.Attributes = make([]integration.TargetProductAttribute, 0, len(attrs))
		for _, a := range attrs {
			out.Attributes = append(out.Attributes, integration.TargetProductAttribute{
				ID:        a.ID,
				Name:      a.Name,
				Position:  a.Position,
				Visible:   true,
				Variation: true,
				Options:   append([]string{}, a.Options...),
			})
		}
	}
	return out
}

func firstVariantPrice(p *integration.SourceProduct) decimal.Decimal {
	if len(p.Variants) == 0 {
		return decimal.Zero
	}
	return p.Variants[0].Price
}

func productImages(p *integration.SourceProduct) []integration.TargetImage {
	images := make([]integration.TargetImage, 0, len(p.Medias))
	for _, m := range p.Medias {
		if u := m.URL(); u != "" {
			images = append(images, integration.TargetImage{Src: u, Alt: p.Title})
		}
	}
	if len(images) == 0 {
		images = append(images, integration.TargetImage{Src: PlaceholderImageURL, Alt: p.Title})
	}
	return images
}

// ToTargetVariation builds the body of one variation. For every product
// option the variant selects the value at its own position.
func ToTargetVariation(p *integration.SourceProduct, v integration.SourceVariant, attrs []ResolvedAttribute) integration.TargetVariation {
	qty := v.StockQuantity()
	out := integration.TargetVariation{
		RegularPrice:  FormatMinorUnits(v.Price),
		SKU:           v.SKU,
		StockQuantity: &qty,
		ManageStock:   true,
		Attributes:    []integration.TargetVariationAttribute{},
		MetaData: []integration.TargetMetaData{
			{Key: integration.MetaKeySourceVariantID, Value: v.ID},
		},
	}

	ids := make(map[string]int64, len(attrs))
	for _, a := range attrs {
		ids[a.Name] = a.ID
	}
	for _, opt := range p.Options {
		idx := v.Position - 1
		if idx < 0 || idx >= len(opt.Values) {
			continue
		}
		out.Attributes = append(out.Attributes, integration.TargetVariationAttribute{
			ID:     ids[opt.Title],
			Name:   opt.Title,
			Option: opt.Values[idx],
		})
	}
	return out
}

// FindVariationBySourceID returns the variation tagged with sourceVariantID.
func FindVariationBySourceID(existing []integration.TargetVariation, sourceVariantID string) (integration.TargetVariation, bool) {
	for _, v := range existing {
		if sourceVariantID != "" && v.SourceVariantID() == sourceVariantID {
			return v, true
		}
	}
	return integration.TargetVariation{}, false
}
