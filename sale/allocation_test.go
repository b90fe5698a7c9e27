package sale_test

import (
	"testing"

	"github.com/meridianlabs/mrd-sale-contract/sale"
	"github.com/stretchr/testify/require"
)

func TestReleaseTeamTrancheSchedule(t *testing.T) {
	t.Parallel()

	saleContract, tokenContract, transactionContext, chaincodeStub := setupSale(t)

	SetUserID(transactionContext, adminAddress)

	// Nothing is releasable before the three-period cliff.
	setTxTime(chaincodeStub, releaseEpoch+3*tranchePeriod-1)
	err := saleContract.ReleaseTeamTranche(transactionContext)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cliff has not elapsed")

	// The first tranche unlocks exactly at the cliff.
	setTxTime(chaincodeStub, releaseEpoch+3*tranchePeriod)
	require.NoError(t, saleContract.ReleaseTeamTranche(transactionContext))

	balance, err := tokenContract.BalanceOf(transactionContext, teamAddress)
	require.NoError(t, err)
	require.Equal(t, baseUnits(12500000).String(), balance)

	// A second call inside the same window fails.
	err = saleContract.ReleaseTeamTranche(transactionContext)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already released")

	// The next window opens one period later.
	setTxTime(chaincodeStub, releaseEpoch+4*tranchePeriod)
	require.NoError(t, saleContract.ReleaseTeamTranche(transactionContext))

	info, err := saleContract.GetTrancheInfo(transactionContext)
	require.NoError(t, err)
	require.Equal(t, uint64(2), info.ReleasedCount)
	require.Equal(t, uint64(12), info.MaxTranches)
}

func TestReleaseTeamTrancheExhaustsAtTwelve(t *testing.T) {
	t.Parallel()

	saleContract, tokenContract, transactionContext, chaincodeStub := setupSale(t)

	SetUserID(transactionContext, adminAddress)

	// Far past the schedule every remaining tranche is releasable, but
	// still one call each.
	setTxTime(chaincodeStub, releaseEpoch+40*tranchePeriod)
	for i := 0; i < 12; i++ {
		require.NoError(t, saleContract.ReleaseTeamTranche(transactionContext))
	}

	err := saleContract.ReleaseTeamTranche(transactionContext)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cap reached")

	balance, err := tokenContract.BalanceOf(transactionContext, teamAddress)
	require.NoError(t, err)
	require.Equal(t, baseUnits(150000000).String(), balance)

	counters, err := saleContract.GetAllocationCounters(transactionContext)
	require.NoError(t, err)
	require.Equal(t, baseUnits(150000000).String(), counters.TeamAllocated)
}

func TestReleaseTeamTrancheNotAdmin(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, chaincodeStub := setupSale(t)

	setTxTime(chaincodeStub, releaseEpoch+3*tranchePeriod)
	SetUserID(transactionContext, contributorAddress)

	err := saleContract.ReleaseTeamTranche(transactionContext)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unauthorized")
}

func TestConfigureAdvisorsValidation(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, _ := setupSale(t)

	SetUserID(transactionContext, adminAddress)

	err := saleContract.ConfigureAdvisors(transactionContext, nil, nil)
	require.ErrorIs(t, err, sale.ErrNoAdvisors)

	err = saleContract.ConfigureAdvisors(transactionContext, []string{advisor1Address, advisor2Address}, []string{baseUnits(1000).String()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ArraysLengthMismatch")

	err = saleContract.ConfigureAdvisors(transactionContext, []string{"bad"}, []string{baseUnits(1000).String()})
	require.ErrorIs(t, err, sale.ErrInvalidUserAddress)

	err = saleContract.ConfigureAdvisors(transactionContext, []string{advisor1Address}, []string{"0"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidAmount")

	err = saleContract.ConfigureAdvisors(transactionContext, []string{advisor1Address}, []string{baseUnits(60000001).String()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceed the advisors cap")

	SetUserID(transactionContext, contributorAddress)
	err = saleContract.ConfigureAdvisors(transactionContext, []string{advisor1Address}, []string{baseUnits(1000).String()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unauthorized")
}

func TestReleaseAdvisorAllocation(t *testing.T) {
	t.Parallel()

	saleContract, tokenContract, transactionContext, chaincodeStub := setupSale(t)

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, saleContract.ConfigureAdvisors(transactionContext,
		[]string{advisor1Address, advisor2Address},
		[]string{baseUnits(20000000).String(), baseUnits(15000000).String()},
	))

	advisors, err := saleContract.GetAdvisors(transactionContext)
	require.NoError(t, err)
	require.Len(t, advisors, 2)

	err = saleContract.ReleaseAdvisorAllocation(transactionContext)
	require.Error(t, err)
	require.Contains(t, err.Error(), "delay has not elapsed")

	setTxTime(chaincodeStub, releaseEpoch+advisorDelay)
	require.NoError(t, saleContract.ReleaseAdvisorAllocation(transactionContext))

	balance, err := tokenContract.BalanceOf(transactionContext, advisor1Address)
	require.NoError(t, err)
	require.Equal(t, baseUnits(20000000).String(), balance)

	balance, err = tokenContract.BalanceOf(transactionContext, advisor2Address)
	require.NoError(t, err)
	require.Equal(t, baseUnits(15000000).String(), balance)

	// The unassigned remainder of the 60M cap goes to the foundation.
	balance, err = tokenContract.BalanceOf(transactionContext, foundationAddress)
	require.NoError(t, err)
	require.Equal(t, baseUnits(25000000).String(), balance)

	err = saleContract.ReleaseAdvisorAllocation(transactionContext)
	require.ErrorIs(t, err, sale.ErrAlreadyReleased)

	err = saleContract.ConfigureAdvisors(transactionContext, []string{advisor1Address}, []string{baseUnits(1000).String()})
	require.ErrorIs(t, err, sale.ErrAlreadyReleased)

	counters, err := saleContract.GetAllocationCounters(transactionContext)
	require.NoError(t, err)
	require.Equal(t, baseUnits(60000000).String(), counters.AdvisorsAllocated)
}

func TestReleaseFoundationPreallocation(t *testing.T) {
	t.Parallel()

	saleContract, tokenContract, transactionContext, _ := setupSale(t)

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, saleContract.ReleaseFoundationPreallocation(transactionContext))

	balance, err := tokenContract.BalanceOf(transactionContext, foundationAddress)
	require.NoError(t, err)
	require.Equal(t, baseUnits(90000000).String(), balance)

	err = saleContract.ReleaseFoundationPreallocation(transactionContext)
	require.ErrorIs(t, err, sale.ErrAlreadyReleased)
}

func TestReleaseFoundationFinal(t *testing.T) {
	t.Parallel()

	saleContract, tokenContract, transactionContext, chaincodeStub := setupSale(t)

	// 100M tokens sold earns 47M in bonuses, so the final settlement is
	// 300M fixed plus 300M unsold minus the 47M already carved out.
	require.NoError(t, contribute(t, saleContract, transactionContext, recipientAddress, 100000000))

	SetUserID(transactionContext, adminAddress)

	err := saleContract.ReleaseFoundationFinal(transactionContext)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sale has not ended")

	setTxTime(chaincodeStub, saleEndTs)

	err = saleContract.ReleaseFoundationFinal(transactionContext)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pre-allocation has not been released")

	require.NoError(t, saleContract.ReleaseFoundationPreallocation(transactionContext))
	require.NoError(t, saleContract.ReleaseFoundationFinal(transactionContext))

	balance, err := tokenContract.BalanceOf(transactionContext, foundationAddress)
	require.NoError(t, err)
	require.Equal(t, baseUnits(90000000+553000000).String(), balance)

	err = saleContract.ReleaseFoundationFinal(transactionContext)
	require.ErrorIs(t, err, sale.ErrAlreadyReleased)
}

func TestFullDistributionDrainsPool(t *testing.T) {
	t.Parallel()

	saleContract, tokenContract, transactionContext, chaincodeStub := setupSale(t)

	require.NoError(t, contribute(t, saleContract, transactionContext, recipientAddress, 100000000))

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, saleContract.ConfigureAdvisors(transactionContext,
		[]string{advisor1Address}, []string{baseUnits(40000000).String()}))
	require.NoError(t, saleContract.ReleaseFoundationPreallocation(transactionContext))

	// 14 periods past the epoch every tranche window is open and the
	// advisor delay has elapsed.
	setTxTime(chaincodeStub, releaseEpoch+14*tranchePeriod)
	require.NoError(t, saleContract.ReleaseAdvisorAllocation(transactionContext))
	for i := 0; i < 12; i++ {
		require.NoError(t, saleContract.ReleaseTeamTranche(transactionContext))
	}
	require.NoError(t, saleContract.ReleaseFoundationFinal(transactionContext))

	// Every cohort released and the sale settled: the supply pool is
	// empty and the allocation counter accounts for the whole supply.
	balance, err := tokenContract.BalanceOf(transactionContext, "0000000000000000000000000000000000000001")
	require.NoError(t, err)
	require.Equal(t, "0", balance)

	counters, err := saleContract.GetAllocationCounters(transactionContext)
	require.NoError(t, err)
	require.Equal(t, baseUnits(1000000000).String(), counters.TotalAllocated)
}
