package plans

import (
	"testing"

	"formzen/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Embedded(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, models.TierFree, list[0].Tier)
	assert.Equal(t, models.TierPro, list[1].Tier)
	assert.Equal(t, models.TierEnterprise, list[2].Tier)

	assert.Equal(t, 8, r.FreeFormLimit())

	pro, ok := r.Get(models.TierPro)
	require.True(t, ok)
	assert.True(t, pro.Unlimited())
	assert.Equal(t, float64(9), pro.PriceMonthly)
}

func TestRegistry_TierForProduct(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		name      string
		productID string
		want      models.Tier
	}{
		{"pro checkout product", "c24ea16e-2ac8-42b4-945c-86ec7df65357", models.TierPro},
		{"enterprise checkout product", "6181ba61-ba3d-473b-9334-c32a9a68438f", models.TierEnterprise},
		{"enterprise webhook product", "f8cf99ba-d481-40a2-9605-d97192640cb8", models.TierEnterprise},
		{"unknown product defaults to pro", "something-else", models.TierPro},
		{"empty product defaults to pro", "", models.TierPro},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.TierForProduct(tt.productID))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantErr   bool
		wantLimit int
	}{
		{
			name:      "free without limit falls back to default",
			yaml:      "plans:\n  FREE:\n    display_name: Free\n",
			wantLimit: DefaultFreeFormLimit,
		},
		{
			name:      "custom free limit",
			yaml:      "plans:\n  FREE:\n    form_limit: 3\n",
			wantLimit: 3,
		},
		{
			name:    "missing free plan",
			yaml:    "plans:\n  PRO:\n    form_limit: null\n",
			wantErr: true,
		},
		{
			name:    "unknown tier",
			yaml:    "plans:\n  FREE: {}\n  GOLD: {}\n",
			wantErr: true,
		},
		{
			name:    "product mapped twice",
			yaml:    "plans:\n  FREE: {}\n  PRO:\n    product_ids: [a]\n  ENTERPRISE:\n    product_ids: [a]\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, r.FreeFormLimit())
		})
	}
}
