package product

import (
	"github.com/feriaverde/catalog-backend/internal/pricing"
	"github.com/feriaverde/catalog-backend/pkg/db/models"
)

// repairDefaults returns a corrected copy of the variant set that satisfies
// the default-variant invariants: no inactive variant keeps the default flag,
// at most one active variant carries it, and when at least one active variant
// exists exactly one of them is the default (the first active by sort_order
// ascending, id ascending, when none was flagged).
func repairDefaults(variants []models.ProductVariant) []models.ProductVariant {
	repaired := append([]models.ProductVariant(nil), variants...)

	seenDefault := false
	for i := range repaired {
		v := &repaired[i]
		if !v.IsDefault {
			continue
		}
		if !v.IsActive || seenDefault {
			v.IsDefault = false
			continue
		}
		seenDefault = true
	}
	if seenDefault {
		return repaired
	}

	if promoted := pricing.DefaultVariant(repaired); promoted != nil {
		promoted.IsDefault = true
	}
	return repaired
}
