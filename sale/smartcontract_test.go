package sale_test

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/meridianlabs/mrd-sale-contract/mocks"
	"github.com/meridianlabs/mrd-sale-contract/sale"
	"github.com/meridianlabs/mrd-sale-contract/token"
	"github.com/stretchr/testify/require"
)

const (
	adminAddress       = "4f1b9a2c7e8d3f60a5b4c1d2e3f4a5b6c7d8e9f0"
	contributorAddress = "a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0"
	recipientAddress   = "b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0a1"
	teamAddress        = "c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0a1b2"
	foundationAddress  = "d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0a1b2c3"
	beneficiaryAddress = "e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0a1b2c3d4"
	advisor1Address    = "f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5"
	advisor2Address    = "a7b8c9d0a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6"

	saleStart    = uint64(1000000)
	saleEndTs    = uint64(2000000)
	releaseEpoch = uint64(2000000)

	tranchePeriod = uint64(30 * 24 * 60 * 60)
	advisorDelay  = uint64(180 * 24 * 60 * 60)
)

func newMockContext() (*mocks.TransactionContext, *mocks.ChaincodeStub) {
	worldState := map[string][]byte{}

	chaincodeStub := &mocks.ChaincodeStub{}
	chaincodeStub.GetStateStub = func(key string) ([]byte, error) {
		data, found := worldState[key]
		if found {
			return data, nil
		}
		return nil, nil
	}
	chaincodeStub.PutStateStub = func(key string, value []byte) error {
		worldState[key] = value
		return nil
	}
	chaincodeStub.DelStateStub = func(key string) error {
		delete(worldState, key)
		return nil
	}
	chaincodeStub.GetTxTimestampReturns(&timestamp.Timestamp{Seconds: int64(saleStart + 100)}, nil)

	transactionContext := &mocks.TransactionContext{}
	transactionContext.GetStubReturns(chaincodeStub)

	return transactionContext, chaincodeStub
}

func SetUserID(transactionContext *mocks.TransactionContext, userID string) {
	completeID := fmt.Sprintf("x509::CN=%s,O=Organization,L=City,ST=State,C=Country", userID)
	b64ID := base64.StdEncoding.EncodeToString([]byte(completeID))

	clientIdentity := &mocks.ClientIdentity{}
	clientIdentity.GetIDReturns(b64ID, nil)
	transactionContext.GetClientIdentityReturns(clientIdentity)
}

func setTxTime(chaincodeStub *mocks.ChaincodeStub, seconds uint64) {
	chaincodeStub.GetTxTimestampReturns(&timestamp.Timestamp{Seconds: int64(seconds)}, nil)
}

// setupSale initializes the token ledger and the sale on one shared world
// state, wires the token contract address and whitelists the contributor and
// recipient.
func setupSale(t *testing.T) (*sale.SmartContract, *token.SmartContract, *mocks.TransactionContext, *mocks.ChaincodeStub) {
	t.Helper()

	transactionContext, chaincodeStub := newMockContext()
	saleContract := &sale.SmartContract{}
	tokenContract := &token.SmartContract{}

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.Initialize(transactionContext, saleEndTs))
	require.NoError(t, saleContract.Initialize(transactionContext, saleStart, saleEndTs, releaseEpoch, teamAddress, foundationAddress, beneficiaryAddress))
	require.NoError(t, saleContract.SetTokenContract(transactionContext, "MeridianToken"))
	require.NoError(t, saleContract.AddToWhitelist(transactionContext, []string{contributorAddress, recipientAddress}))

	return saleContract, tokenContract, transactionContext, chaincodeStub
}

// contribute converts tokens to the native value that buys them at the
// default rate of 10000 tokens per native unit and submits the contribution.
func contribute(t *testing.T, saleContract *sale.SmartContract, transactionContext *mocks.TransactionContext, recipient string, tokens uint64) error {
	t.Helper()

	value := baseUnits(tokens / 10000)
	SetUserID(transactionContext, contributorAddress)
	return saleContract.Contribute(transactionContext, recipient, value.String())
}

func TestSaleInitialize(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, _ := setupSale(t)

	config, err := saleContract.GetSaleWindow(transactionContext)
	require.NoError(t, err)
	require.Equal(t, saleStart, config.StartTimestamp)
	require.Equal(t, saleEndTs, config.EndTimestamp)
	require.Equal(t, releaseEpoch, config.ReleaseEpoch)
	require.Equal(t, teamAddress, config.TeamAccount)
	require.Equal(t, foundationAddress, config.FoundationAccount)
	require.Equal(t, beneficiaryAddress, config.Beneficiary)

	rate, err := saleContract.GetConversionRate(transactionContext)
	require.NoError(t, err)
	require.Equal(t, uint64(10000), rate)

	SetUserID(transactionContext, adminAddress)
	err = saleContract.Initialize(transactionContext, saleStart, saleEndTs, releaseEpoch, teamAddress, foundationAddress, beneficiaryAddress)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already initialized")
}

func TestSaleInitializeValidation(t *testing.T) {
	t.Parallel()

	transactionContext, _ := newMockContext()
	saleContract := &sale.SmartContract{}

	SetUserID(transactionContext, adminAddress)

	err := saleContract.Initialize(transactionContext, 0, saleEndTs, releaseEpoch, teamAddress, foundationAddress, beneficiaryAddress)
	require.ErrorIs(t, err, sale.ErrCannotBeZero)

	err = saleContract.Initialize(transactionContext, saleEndTs, saleStart, releaseEpoch, teamAddress, foundationAddress, beneficiaryAddress)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sale end must come after sale start")

	err = saleContract.Initialize(transactionContext, saleStart, saleEndTs, releaseEpoch, "not-an-address", foundationAddress, beneficiaryAddress)
	require.ErrorIs(t, err, sale.ErrInvalidUserAddress)

	SetUserID(transactionContext, contributorAddress)
	err = saleContract.Initialize(transactionContext, saleStart, saleEndTs, releaseEpoch, teamAddress, foundationAddress, beneficiaryAddress)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unauthorized")
}

func TestSetTokenContractWriteOnce(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, _ := setupSale(t)

	SetUserID(transactionContext, adminAddress)
	err := saleContract.SetTokenContract(transactionContext, "AnotherToken")
	require.Error(t, err)
	require.Contains(t, err.Error(), "TokenAlreadySet")
}

func TestSetConversionRate(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, _ := setupSale(t)

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, saleContract.SetConversionRate(transactionContext, 25000))

	rate, err := saleContract.GetConversionRate(transactionContext)
	require.NoError(t, err)
	require.Equal(t, uint64(25000), rate)

	err = saleContract.SetConversionRate(transactionContext, 0)
	require.ErrorIs(t, err, sale.ErrCannotBeZero)

	SetUserID(transactionContext, contributorAddress)
	err = saleContract.SetConversionRate(transactionContext, 30000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unauthorized")
}

func TestWhitelistLifecycle(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, _ := setupSale(t)

	listed, err := saleContract.IsWhitelisted(transactionContext, contributorAddress)
	require.NoError(t, err)
	require.True(t, listed)

	listed, err = saleContract.IsWhitelisted(transactionContext, advisor1Address)
	require.NoError(t, err)
	require.False(t, listed)

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, saleContract.RemoveFromWhitelist(transactionContext, contributorAddress))

	listed, err = saleContract.IsWhitelisted(transactionContext, contributorAddress)
	require.NoError(t, err)
	require.False(t, listed)

	SetUserID(transactionContext, contributorAddress)
	err = saleContract.AddToWhitelist(transactionContext, []string{advisor1Address})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unauthorized")
}

func TestContribute(t *testing.T) {
	t.Parallel()

	saleContract, tokenContract, transactionContext, _ := setupSale(t)

	// 3000 native units at 10000 tokens each buy 30M tokens. From zero
	// sold that earns 10.5M in tier bonus and 4.5M in bulk bonus.
	require.NoError(t, contribute(t, saleContract, transactionContext, recipientAddress, 30000000))

	balance, err := tokenContract.BalanceOf(transactionContext, recipientAddress)
	require.NoError(t, err)
	require.Equal(t, baseUnits(45000000).String(), balance)

	counters, err := saleContract.GetAllocationCounters(transactionContext)
	require.NoError(t, err)
	require.Equal(t, baseUnits(30000000).String(), counters.TotalSold)
	require.Equal(t, baseUnits(15000000).String(), counters.BonusDistributed)
	require.Equal(t, baseUnits(45000000).String(), counters.TotalAllocated)
}

func TestContributeBonusUsesSoldBefore(t *testing.T) {
	t.Parallel()

	saleContract, tokenContract, transactionContext, _ := setupSale(t)

	// First purchase moves the sold counter to 35M so the second one
	// straddles the 40M tier boundary: 5M at 35% plus 25M at 30%, plus
	// the 15% bulk bonus on 30M.
	require.NoError(t, contribute(t, saleContract, transactionContext, recipientAddress, 35000000))
	require.NoError(t, contribute(t, saleContract, transactionContext, contributorAddress, 30000000))

	balance, err := tokenContract.BalanceOf(transactionContext, contributorAddress)
	require.NoError(t, err)
	require.Equal(t, baseUnits(30000000+13750000).String(), balance)

	counters, err := saleContract.GetAllocationCounters(transactionContext)
	require.NoError(t, err)
	require.Equal(t, baseUnits(65000000).String(), counters.TotalSold)
}

func TestContributeHardCapRejected(t *testing.T) {
	t.Parallel()

	saleContract, tokenContract, transactionContext, _ := setupSale(t)

	require.NoError(t, contribute(t, saleContract, transactionContext, recipientAddress, 100000000))

	countersBefore, err := saleContract.GetAllocationCounters(transactionContext)
	require.NoError(t, err)
	balanceBefore, err := tokenContract.BalanceOf(transactionContext, recipientAddress)
	require.NoError(t, err)

	err = contribute(t, saleContract, transactionContext, recipientAddress, 301000000)
	require.ErrorIs(t, err, sale.ErrSaleCapacityExhausted)

	countersAfter, err := saleContract.GetAllocationCounters(transactionContext)
	require.NoError(t, err)
	require.Equal(t, countersBefore, countersAfter)

	balanceAfter, err := tokenContract.BalanceOf(transactionContext, recipientAddress)
	require.NoError(t, err)
	require.Equal(t, balanceBefore, balanceAfter)
}

func TestContributeNotWhitelisted(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, _ := setupSale(t)

	err := contribute(t, saleContract, transactionContext, advisor1Address, 1000000)
	require.ErrorIs(t, err, sale.ErrNotWhitelisted)

	SetUserID(transactionContext, advisor1Address)
	err = saleContract.Contribute(transactionContext, recipientAddress, baseUnits(1).String())
	require.ErrorIs(t, err, sale.ErrNotWhitelisted)
}

func TestContributeOutsideWindow(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, chaincodeStub := setupSale(t)

	setTxTime(chaincodeStub, saleStart-1)
	err := contribute(t, saleContract, transactionContext, recipientAddress, 1000000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "outside the sale window")

	setTxTime(chaincodeStub, saleEndTs)
	err = contribute(t, saleContract, transactionContext, recipientAddress, 1000000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "outside the sale window")
}

func TestContributeWithoutTokenContract(t *testing.T) {
	t.Parallel()

	transactionContext, _ := newMockContext()
	saleContract := &sale.SmartContract{}
	tokenContract := &token.SmartContract{}

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.Initialize(transactionContext, saleEndTs))
	require.NoError(t, saleContract.Initialize(transactionContext, saleStart, saleEndTs, releaseEpoch, teamAddress, foundationAddress, beneficiaryAddress))
	require.NoError(t, saleContract.AddToWhitelist(transactionContext, []string{contributorAddress, recipientAddress}))

	err := contribute(t, saleContract, transactionContext, recipientAddress, 1000000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "token contract address is not set")
}

func TestContributeInvalidValue(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, _ := setupSale(t)

	SetUserID(transactionContext, contributorAddress)

	err := saleContract.Contribute(transactionContext, recipientAddress, "0")
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidAmount")

	err = saleContract.Contribute(transactionContext, recipientAddress, "-5")
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidAmount")

	err = saleContract.Contribute(transactionContext, "short", baseUnits(1).String())
	require.ErrorIs(t, err, sale.ErrInvalidUserAddress)
}

func TestGetBonusSchedule(t *testing.T) {
	t.Parallel()

	saleContract, _, transactionContext, _ := setupSale(t)

	schedule, err := saleContract.GetBonusSchedule(transactionContext)
	require.NoError(t, err)
	require.Len(t, schedule.Tiers, 5)
	require.Len(t, schedule.Bulk, 3)
}
