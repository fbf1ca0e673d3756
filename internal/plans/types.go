package plans

import (
	"fmt"

	"formzen/internal/domain/models"

	"gopkg.in/yaml.v3"
)

// Plan describes one subscription tier
type Plan struct {
	// Tier identifier (set during YAML unmarshaling)
	Tier models.Tier `yaml:"-" json:"tier"`

	DisplayName  string   `yaml:"display_name" json:"display_name"`
	Description  string   `yaml:"description" json:"description"`
	PriceMonthly float64  `yaml:"price_monthly" json:"price_monthly"`
	FormLimit    *int     `yaml:"form_limit" json:"form_limit"` // null = unlimited
	ProductIDs   []string `yaml:"product_ids" json:"-"`
	Features     []string `yaml:"features" json:"features"`
}

// Unlimited reports whether the plan has no form ceiling
func (p *Plan) Unlimited() bool {
	return p.FormLimit == nil
}

// planFile is the on-disk layout of plans.yaml
type planFile struct {
	Plans []Plan `yaml:"-"`
}

// UnmarshalYAML preserves plan order from the YAML mapping
func (f *planFile) UnmarshalYAML(node *yaml.Node) error {
	type plansOnly struct {
		Plans map[string]Plan `yaml:"plans"`
	}
	var m plansOnly
	if err := node.Decode(&m); err != nil {
		return err
	}

	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value != "plans" {
			continue
		}
		plansNode := node.Content[i+1]
		for j := 0; j < len(plansNode.Content); j += 2 {
			key := plansNode.Content[j].Value
			tier := models.Tier(key)
			if !tier.Valid() {
				return fmt.Errorf("unknown tier %q", key)
			}
			plan := m.Plans[key]
			plan.Tier = tier
			f.Plans = append(f.Plans, plan)
		}
		break
	}

	return nil
}
