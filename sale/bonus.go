package sale

import (
	"math/big"

	"github.com/meridianlabs/mrd-sale-contract/safemath"
	"github.com/meridianlabs/mrd-sale-contract/token"
)

// BonusTier is one cumulative-sold range: contribution slices landing below
// Ceiling earn Percent.
type BonusTier struct {
	Ceiling *big.Int `json:"ceiling"`
	Percent uint64   `json:"percent"`
}

// BulkTier is one single-purchase-size threshold: contributions of at least
// Floor tokens earn Percent on the whole purchase.
type BulkTier struct {
	Floor   *big.Int `json:"floor"`
	Percent uint64   `json:"percent"`
}

// BonusTiers returns the fixed tier schedule in base units, ceilings
// strictly increasing, percents strictly decreasing by construction.
func BonusTiers() []BonusTier {
	tiers := make([]BonusTier, len(bonusTierCeilingsTokens))
	for i := range bonusTierCeilingsTokens {
		ceiling, _ := new(big.Int).SetString(token.ConvertToBaseUnits(bonusTierCeilingsTokens[i]), 10)
		tiers[i] = BonusTier{
			Ceiling: ceiling,
			Percent: bonusTierPercents[i],
		}
	}

	return tiers
}

// BulkTiers returns the fixed bulk-bonus table in base units, floors
// strictly decreasing.
func BulkTiers() []BulkTier {
	tiers := make([]BulkTier, len(bulkBonusFloorsTokens))
	for i := range bulkBonusFloorsTokens {
		floor, _ := new(big.Int).SetString(token.ConvertToBaseUnits(bulkBonusFloorsTokens[i]), 10)
		tiers[i] = BulkTier{
			Floor:   floor,
			Percent: bulkBonusPercents[i],
		}
	}

	return tiers
}

// bulkPercent is a step function of the contribution size alone.
func bulkPercent(contribution *big.Int) uint64 {
	for _, tier := range BulkTiers() {
		if contribution.Cmp(tier.Floor) >= 0 {
			return tier.Percent
		}
	}

	return 0
}

// percentOf computes floor(amount/100) * percent, the truncating percentage
// arithmetic the bonus schedule is defined in.
func percentOf(amount *big.Int, percent uint64) (*big.Int, error) {
	hundredth := new(big.Int).Div(amount, big.NewInt(100))
	return safemath.Mul(hundredth, new(big.Int).SetUint64(percent))
}

// CalculateBonus computes the bonus for a contribution of contribution
// tokens arriving when soldBefore tokens have already been sold. The bonus
// is the sum of a flat bulk bonus on the whole purchase and per-tier
// bonuses on the slices of the contribution falling inside each
// cumulative-sold range; a contribution straddling a tier boundary is split
// pro-rata so neither side of the boundary is mispriced.
//
// Pure computation: no state is read or written.
func CalculateBonus(contribution, soldBefore *big.Int) (*big.Int, error) {
	tiers := BonusTiers()

	tierIndex := 0
	for ; tierIndex < len(tiers); tierIndex++ {
		if soldBefore.Cmp(tiers[tierIndex].Ceiling) < 0 {
			break
		}
	}
	if tierIndex == len(tiers) {
		return nil, ErrSaleCapacityExhausted
	}

	bonus, err := percentOf(contribution, bulkPercent(contribution))
	if err != nil {
		return nil, err
	}

	remaining := new(big.Int).Set(contribution)
	position := new(big.Int).Set(soldBefore)

	for ; tierIndex < len(tiers) && remaining.Sign() > 0; tierIndex++ {
		capacity, err := safemath.Sub(tiers[tierIndex].Ceiling, position)
		if err != nil {
			return nil, err
		}

		slice := remaining
		if slice.Cmp(capacity) > 0 {
			slice = capacity
		}

		tierBonus, err := percentOf(slice, tiers[tierIndex].Percent)
		if err != nil {
			return nil, err
		}

		bonus, err = safemath.Add(bonus, tierBonus)
		if err != nil {
			return nil, err
		}

		position, err = safemath.Add(position, slice)
		if err != nil {
			return nil, err
		}

		remaining, err = safemath.Sub(remaining, slice)
		if err != nil {
			return nil, err
		}
	}

	if remaining.Sign() > 0 {
		return nil, ErrSaleCapacityExhausted
	}

	return bonus, nil
}
