package sale_test

import (
	"math/big"
	"testing"

	"github.com/meridianlabs/mrd-sale-contract/sale"
	"github.com/meridianlabs/mrd-sale-contract/token"
	"github.com/stretchr/testify/require"
)

func baseUnits(tokens uint64) *big.Int {
	amount, _ := new(big.Int).SetString(token.ConvertToBaseUnits(tokens), 10)
	return amount
}

func TestCalculateBonus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		contribution uint64
		soldBefore   uint64
		want         uint64
	}{
		{
			// 5M at 35% + 25M at 30% across the first boundary, plus a
			// 15% bulk bonus on the whole 30M purchase.
			name:         "straddles first tier boundary",
			contribution: 30000000,
			soldBefore:   35000000,
			want:         13750000,
		},
		{
			name:         "small purchase inside first tier",
			contribution: 1000000,
			soldBefore:   0,
			want:         350000,
		},
		{
			name:         "exactly fills the first tier",
			contribution: 5000000,
			soldBefore:   35000000,
			want:         2000000,
		},
		{
			name:         "last tier with mid bulk bonus",
			contribution: 10000000,
			soldBefore:   300000000,
			want:         2000000,
		},
		{
			name:         "bulk floor boundary",
			contribution: 20000000,
			soldBefore:   100000000,
			want:         8000000,
		},
		{
			name:         "spans three tiers",
			contribution: 150000000,
			soldBefore:   30000000,
			want:         64000000,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			bonus, err := sale.CalculateBonus(baseUnits(test.contribution), baseUnits(test.soldBefore))
			require.NoError(t, err)
			require.Equal(t, baseUnits(test.want).String(), bonus.String())
		})
	}
}

func TestCalculateBonusZeroContribution(t *testing.T) {
	t.Parallel()

	bonus, err := sale.CalculateBonus(big.NewInt(0), baseUnits(50000000))
	require.NoError(t, err)
	require.Equal(t, "0", bonus.String())
}

func TestCalculateBonusCapacityExhausted(t *testing.T) {
	t.Parallel()

	_, err := sale.CalculateBonus(baseUnits(1000000), baseUnits(400000000))
	require.ErrorIs(t, err, sale.ErrSaleCapacityExhausted)
}

func TestCalculateBonusContributionOverflowsSchedule(t *testing.T) {
	t.Parallel()

	_, err := sale.CalculateBonus(baseUnits(10000000), baseUnits(395000000))
	require.ErrorIs(t, err, sale.ErrSaleCapacityExhausted)
}

func TestBonusTiersShape(t *testing.T) {
	t.Parallel()

	tiers := sale.BonusTiers()
	require.Len(t, tiers, 5)
	for i := 1; i < len(tiers); i++ {
		require.Positive(t, tiers[i].Ceiling.Cmp(tiers[i-1].Ceiling))
		require.Less(t, tiers[i].Percent, tiers[i-1].Percent)
	}
	require.Equal(t, baseUnits(400000000).String(), tiers[len(tiers)-1].Ceiling.String())
}

func TestBulkTiersShape(t *testing.T) {
	t.Parallel()

	tiers := sale.BulkTiers()
	require.Len(t, tiers, 3)
	for i := 1; i < len(tiers); i++ {
		require.Negative(t, tiers[i].Floor.Cmp(tiers[i-1].Floor))
		require.Less(t, tiers[i].Percent, tiers[i-1].Percent)
	}
}
