package sale

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/meridianlabs/mrd-sale-contract/safemath"
	"github.com/meridianlabs/mrd-sale-contract/token"
)

func capInBaseUnits(tokens uint64) *big.Int {
	amount, _ := new(big.Int).SetString(token.ConvertToBaseUnits(tokens), 10)
	return amount
}

// bumpCounter adds amount to a monotonic counter with checked arithmetic.
func bumpCounter(ctx contractapi.TransactionContextInterface, counterKey string, amount *big.Int) error {
	counter, err := GetCounter(ctx, counterKey)
	if err != nil {
		return err
	}

	counter, err = safemath.Add(counter, amount)
	if err != nil {
		return err
	}

	return SetCounter(ctx, counterKey, counter)
}

// recordSaleAllocation bumps the sold and total-allocated counters for one
// processed contribution. Capacity is enforced upstream against the hard
// cap before tokens move, so no cap check happens here.
func recordSaleAllocation(ctx contractapi.TransactionContextInterface, amount *big.Int) error {
	err := bumpCounter(ctx, totalSoldKey, amount)
	if err != nil {
		return err
	}

	return bumpCounter(ctx, totalAllocatedKey, amount)
}

// recordBonusAllocation credits bonus tokens out of the pool after
// validating the bonus-pool cap and that the recipient already holds a
// balance. The balance requirement keeps the bonus pool from being drained
// by addresses that never received a base purchase.
func recordBonusAllocation(ctx contractapi.TransactionContextInterface, recipient string, bonus *big.Int) error {
	if bonus.Sign() == 0 {
		return nil
	}

	distributed, err := GetCounter(ctx, bonusDistributedKey)
	if err != nil {
		return err
	}

	newDistributed, err := safemath.Add(distributed, bonus)
	if err != nil {
		return err
	}

	if newDistributed.Cmp(capInBaseUnits(bonusPoolCapTokens)) > 0 {
		return NewCustomError(http.StatusBadRequest, "bonus pool cap exceeded", ErrPolicyViolation)
	}

	recipientBalance, err := token.GetBalance(ctx, recipient)
	if err != nil {
		return err
	}
	if recipientBalance.Sign() == 0 {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("bonus recipient %s holds no balance", recipient), ErrPolicyViolation)
	}

	err = SetCounter(ctx, bonusDistributedKey, newDistributed)
	if err != nil {
		return err
	}

	err = bumpCounter(ctx, totalAllocatedKey, bonus)
	if err != nil {
		return err
	}

	return token.CreditFromPool(ctx, recipient, bonus)
}

// ReleaseTeamTranche credits one team tranche to the team account. The
// first tranche unlocks three tranche periods after the release epoch and
// one more per elapsed period after that; at most one release per window.
func (s *SmartContract) ReleaseTeamTranche(ctx contractapi.TransactionContextInterface) error {
	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	config, err := requireSaleConfig(ctx)
	if err != nil {
		return err
	}

	now, err := token.TxTimestamp(ctx)
	if err != nil {
		return err
	}

	if now < config.ReleaseEpoch+firstTranchePeriods*tranchePeriodSeconds {
		return NewCustomError(http.StatusBadRequest, "team release cliff has not elapsed", ErrPolicyViolation)
	}

	teamAllocated, err := GetCounter(ctx, teamAllocatedKey)
	if err != nil {
		return err
	}

	teamCap := capInBaseUnits(teamCapTokens)
	if teamAllocated.Cmp(teamCap) >= 0 {
		return NewCustomError(http.StatusBadRequest, "team allocation cap reached", ErrPolicyViolation)
	}

	tranche, err := GetTrancheState(ctx)
	if err != nil {
		return err
	}

	if tranche.ReleasedCount >= maxTranches {
		return NewCustomError(http.StatusBadRequest, "all team tranches released", ErrPolicyViolation)
	}

	// Releasable windows open one per period past the cliff; calling a
	// second time inside the same window fails.
	elapsedPeriods := (now - config.ReleaseEpoch) / tranchePeriodSeconds
	releasable := elapsedPeriods - (firstTranchePeriods - 1)
	if releasable > maxTranches {
		releasable = maxTranches
	}
	if tranche.ReleasedCount >= releasable {
		return NewCustomError(http.StatusBadRequest, "tranche for the current window already released", ErrPolicyViolation)
	}

	trancheAmount := new(big.Int).Div(teamCap, big.NewInt(maxTranches))

	tranche.ReleasedCount++
	err = SetTrancheState(ctx, tranche)
	if err != nil {
		return err
	}

	err = bumpCounter(ctx, teamAllocatedKey, trancheAmount)
	if err != nil {
		return err
	}

	err = bumpCounter(ctx, totalAllocatedKey, trancheAmount)
	if err != nil {
		return err
	}

	err = token.CreditFromPool(ctx, config.TeamAccount, trancheAmount)
	if err != nil {
		return err
	}

	return EmitTeamTrancheReleased(ctx, tranche.ReleasedCount, trancheAmount.String(), config.TeamAccount)
}

// ConfigureAdvisors stores the advisor shares released later as a single
// one-shot event. The share sum is validated against the advisors cap here,
// at configuration time.
func (s *SmartContract) ConfigureAdvisors(ctx contractapi.TransactionContextInterface, addresses []string, amounts []string) error {
	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	if len(addresses) == 0 {
		return ErrNoAdvisors
	}
	if len(addresses) != len(amounts) {
		return NewCustomError(http.StatusBadRequest, ArraysLengthMismatchError(len(addresses), len(amounts)).Error(), nil)
	}

	released, err := GetCounter(ctx, advisorsAllocatedKey)
	if err != nil {
		return err
	}
	if released.Sign() != 0 {
		return NewCustomError(http.StatusBadRequest, "advisor allocation already released", ErrAlreadyReleased)
	}

	totalShares := big.NewInt(0)
	advisors := make([]AdvisorShare, len(addresses))
	for i := range addresses {
		if !token.IsUserAddressValid(addresses[i]) {
			return fmt.Errorf("%w: %s", ErrInvalidUserAddress, addresses[i])
		}

		amount, ok := new(big.Int).SetString(amounts[i], 10)
		if !ok || amount.Sign() <= 0 {
			return InvalidAmountError("advisor", amounts[i])
		}

		totalShares, err = safemath.Add(totalShares, amount)
		if err != nil {
			return err
		}

		advisors[i] = AdvisorShare{
			Address: addresses[i],
			Amount:  amounts[i],
		}
	}

	if totalShares.Cmp(capInBaseUnits(advisorsCapTokens)) > 0 {
		return NewCustomError(http.StatusBadRequest, "advisor shares exceed the advisors cap", ErrPolicyViolation)
	}

	err = SetAdvisorConfig(ctx, advisors)
	if err != nil {
		return err
	}

	return EmitAdvisorsConfigured(ctx, totalShares.String(), len(advisors))
}

// ReleaseAdvisorAllocation credits every configured advisor its share once
// the advisor delay has elapsed; the portion of the cap not assigned to a
// named advisor goes to the foundation account. The whole cap is consumed
// in one shot, so the advisors counter doubles as the already-released
// guard.
func (s *SmartContract) ReleaseAdvisorAllocation(ctx contractapi.TransactionContextInterface) error {
	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	config, err := requireSaleConfig(ctx)
	if err != nil {
		return err
	}

	now, err := token.TxTimestamp(ctx)
	if err != nil {
		return err
	}
	if now < config.ReleaseEpoch+advisorDelaySeconds {
		return NewCustomError(http.StatusBadRequest, "advisor release delay has not elapsed", ErrPolicyViolation)
	}

	released, err := GetCounter(ctx, advisorsAllocatedKey)
	if err != nil {
		return err
	}
	if released.Sign() != 0 {
		return NewCustomError(http.StatusBadRequest, "advisor allocation already released", ErrAlreadyReleased)
	}

	advisors, err := GetAdvisorConfig(ctx)
	if err != nil {
		return err
	}

	advisorsCap := capInBaseUnits(advisorsCapTokens)
	assigned := big.NewInt(0)

	for _, advisor := range advisors {
		amount, ok := new(big.Int).SetString(advisor.Amount, 10)
		if !ok {
			return InvalidAmountError("advisor", advisor.Amount)
		}

		err = token.CreditFromPool(ctx, advisor.Address, amount)
		if err != nil {
			return err
		}

		assigned, err = safemath.Add(assigned, amount)
		if err != nil {
			return err
		}
	}

	remainder, err := safemath.Sub(advisorsCap, assigned)
	if err != nil {
		return err
	}

	if remainder.Sign() > 0 {
		err = token.CreditFromPool(ctx, config.FoundationAccount, remainder)
		if err != nil {
			return err
		}
	}

	err = bumpCounter(ctx, advisorsAllocatedKey, advisorsCap)
	if err != nil {
		return err
	}

	err = bumpCounter(ctx, totalAllocatedKey, advisorsCap)
	if err != nil {
		return err
	}

	return EmitCohortReleased(ctx, advisorsReleasedEvent, "advisors", advisorsCap.String())
}

// ReleaseFoundationPreallocation credits the foundation pre-allocation.
// One-shot, callable any time.
func (s *SmartContract) ReleaseFoundationPreallocation(ctx contractapi.TransactionContextInterface) error {
	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	config, err := requireSaleConfig(ctx)
	if err != nil {
		return err
	}

	preAllocated, err := GetCounter(ctx, foundationPreKey)
	if err != nil {
		return err
	}
	if preAllocated.Sign() != 0 {
		return NewCustomError(http.StatusBadRequest, "foundation pre-allocation already released", ErrAlreadyReleased)
	}

	preCap := capInBaseUnits(foundationPreCapTokens)

	err = SetCounter(ctx, foundationPreKey, preCap)
	if err != nil {
		return err
	}

	err = bumpCounter(ctx, totalAllocatedKey, preCap)
	if err != nil {
		return err
	}

	err = token.CreditFromPool(ctx, config.FoundationAccount, preCap)
	if err != nil {
		return err
	}

	return EmitCohortReleased(ctx, foundationPreEvent, "foundation-pre", preCap.String())
}

// ReleaseFoundationFinal settles the foundation after the sale: the fixed
// final share plus the unsold remainder of the hard cap, minus the bonus
// tokens already carved out of the foundation's share.
func (s *SmartContract) ReleaseFoundationFinal(ctx contractapi.TransactionContextInterface) error {
	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	config, err := requireSaleConfig(ctx)
	if err != nil {
		return err
	}

	now, err := token.TxTimestamp(ctx)
	if err != nil {
		return err
	}
	if now < config.EndTimestamp {
		return NewCustomError(http.StatusBadRequest, "sale has not ended", ErrPolicyViolation)
	}

	finalized, err := GetCounter(ctx, foundationFinalKey)
	if err != nil {
		return err
	}
	if finalized.Sign() != 0 {
		return NewCustomError(http.StatusBadRequest, "foundation final allocation already released", ErrAlreadyReleased)
	}

	preAllocated, err := GetCounter(ctx, foundationPreKey)
	if err != nil {
		return err
	}
	if preAllocated.Sign() == 0 {
		return NewCustomError(http.StatusBadRequest, "foundation pre-allocation has not been released", ErrPolicyViolation)
	}

	sold, err := GetCounter(ctx, totalSoldKey)
	if err != nil {
		return err
	}

	unsold, err := safemath.Sub(capInBaseUnits(hardCapTokens), sold)
	if err != nil {
		return err
	}

	distributed, err := GetCounter(ctx, bonusDistributedKey)
	if err != nil {
		return err
	}

	credit, err := safemath.Add(capInBaseUnits(foundationFinalCapTokens), unsold)
	if err != nil {
		return err
	}

	credit, err = safemath.Sub(credit, distributed)
	if err != nil {
		return err
	}

	err = SetCounter(ctx, foundationFinalKey, credit)
	if err != nil {
		return err
	}

	err = bumpCounter(ctx, totalAllocatedKey, credit)
	if err != nil {
		return err
	}

	err = token.CreditFromPool(ctx, config.FoundationAccount, credit)
	if err != nil {
		return err
	}

	return EmitCohortReleased(ctx, foundationFinalEvent, "foundation-final", credit.String())
}
