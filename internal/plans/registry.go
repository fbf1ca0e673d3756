package plans

import (
	"embed"
	"fmt"

	"formzen/internal/domain/models"

	"gopkg.in/yaml.v3"
)

//go:embed config/plans.yaml
var configFiles embed.FS

// DefaultFreeFormLimit applies when plans.yaml gives FREE no ceiling
const DefaultFreeFormLimit = 8

// Registry holds the subscription plans. It is read-only after construction.
type Registry struct {
	plans     []Plan
	byTier    map[models.Tier]*Plan
	byProduct map[string]models.Tier
}

// NewRegistry loads the embedded plans.yaml
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/plans.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read plans.yaml: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from plans YAML
func Parse(data []byte) (*Registry, error) {
	var f planFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plans: %w", err)
	}

	r := &Registry{
		plans:     f.Plans,
		byTier:    make(map[models.Tier]*Plan, len(f.Plans)),
		byProduct: make(map[string]models.Tier),
	}
	for i := range r.plans {
		p := &r.plans[i]
		r.byTier[p.Tier] = p
		for _, id := range p.ProductIDs {
			if other, ok := r.byProduct[id]; ok {
				return nil, fmt.Errorf("product %s mapped to both %s and %s", id, other, p.Tier)
			}
			r.byProduct[id] = p.Tier
		}
	}
	if _, ok := r.byTier[models.TierFree]; !ok {
		return nil, fmt.Errorf("plans must define %s", models.TierFree)
	}

	return r, nil
}

// List returns all plans in display order
func (r *Registry) List() []Plan {
	return r.plans
}

// Get returns the plan for tier
func (r *Registry) Get(tier models.Tier) (*Plan, bool) {
	p, ok := r.byTier[tier]
	return p, ok
}

// FreeFormLimit is the generation ceiling for non-upgraded identities
func (r *Registry) FreeFormLimit() int {
	if p, ok := r.byTier[models.TierFree]; ok && p.FormLimit != nil {
		return *p.FormLimit
	}
	return DefaultFreeFormLimit
}

// TierForProduct maps a billing product id to its tier. Unknown products
// resolve to PRO.
func (r *Registry) TierForProduct(productID string) models.Tier {
	if tier, ok := r.byProduct[productID]; ok {
		return tier
	}
	return models.TierPro
}
