package token_test

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"testing"

	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/meridianlabs/mrd-sale-contract/mocks"
	"github.com/meridianlabs/mrd-sale-contract/token"
	"github.com/stretchr/testify/require"
)

const (
	adminAddress = "4f1b9a2c7e8d3f60a5b4c1d2e3f4a5b6c7d8e9f0"
	userAddress  = "a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0"
	user2Address = "b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0a1"

	supplyPoolAddress = "0000000000000000000000000000000000000001"

	saleEnd = uint64(1700000000)
)

//go:generate counterfeiter -o ../mocks/transaction.go -fake-name TransactionContext . transactionContext
type transactionContext interface {
	contractapi.TransactionContextInterface
}

//go:generate counterfeiter -o ../mocks/chaincodestub.go -fake-name ChaincodeStub . chaincodeStub
type chaincodeStub interface {
	shim.ChaincodeStubInterface
}

//go:generate counterfeiter -o ../mocks/clientidentity.go -fake-name ClientIdentity . clientIdentity
type clientIdentity interface {
	cid.ClientIdentity
}

// newMockContext wires a transaction context over an in-memory world state.
func newMockContext() (*mocks.TransactionContext, *mocks.ChaincodeStub, map[string][]byte) {
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
	chaincodeStub.GetTxTimestampReturns(&timestamp.Timestamp{Seconds: int64(saleEnd - 1000)}, nil)

	transactionContext := &mocks.TransactionContext{}
	transactionContext.GetStubReturns(chaincodeStub)

	return transactionContext, chaincodeStub, worldState
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

func initializedToken(t *testing.T) (*token.SmartContract, *mocks.TransactionContext, *mocks.ChaincodeStub) {
	t.Helper()

	transactionContext, chaincodeStub, _ := newMockContext()
	tokenContract := &token.SmartContract{}

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.Initialize(transactionContext, saleEnd))

	return tokenContract, transactionContext, chaincodeStub
}

func totalSupplyBase() *big.Int {
	supply, _ := new(big.Int).SetString(token.ConvertToBaseUnits(1000000000), 10)
	return supply
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	transactionContext, _, _ := newMockContext()
	tokenContract := &token.SmartContract{}

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.Initialize(transactionContext, saleEnd))

	balance, err := tokenContract.BalanceOf(transactionContext, supplyPoolAddress)
	require.NoError(t, err)
	require.Equal(t, totalSupplyBase().String(), balance)

	supply, err := tokenContract.TotalSupply(transactionContext)
	require.NoError(t, err)
	require.Equal(t, totalSupplyBase().String(), supply)

	name, err := tokenContract.Name(transactionContext)
	require.NoError(t, err)
	require.Equal(t, "Meridian", name)

	symbol, err := tokenContract.Symbol(transactionContext)
	require.NoError(t, err)
	require.Equal(t, "MRD", symbol)
}

func TestInitializeZeroSaleEnd(t *testing.T) {
	t.Parallel()

	transactionContext, _, _ := newMockContext()
	tokenContract := &token.SmartContract{}

	SetUserID(transactionContext, adminAddress)
	err := tokenContract.Initialize(transactionContext, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CannotBeZero")
}

func TestInitializeNotAdmin(t *testing.T) {
	t.Parallel()

	transactionContext, _, _ := newMockContext()
	tokenContract := &token.SmartContract{}

	SetUserID(transactionContext, userAddress)
	err := tokenContract.Initialize(transactionContext, saleEnd)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unauthorized")
}

func TestInitializeTwice(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	err := tokenContract.Initialize(transactionContext, saleEnd)
	require.Error(t, err)
	require.Contains(t, err.Error(), "TokenAlreadySet")
}

func TestTransferBlockedBeforeSaleEnd(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	// Fund the user through the gate-exempt path first.
	require.NoError(t, token.CreditFromPool(transactionContext, userAddress, big.NewInt(1000)))

	SetUserID(transactionContext, userAddress)
	err := tokenContract.Transfer(transactionContext, user2Address, "100")
	require.Error(t, err)
	require.Contains(t, err.Error(), "TransfersDisabled")

	// State must be untouched by the failed transfer.
	balance, err := tokenContract.BalanceOf(transactionContext, user2Address)
	require.NoError(t, err)
	require.Equal(t, "0", balance)
}

func TestTransferAfterPublicRelease(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	require.NoError(t, token.CreditFromPool(transactionContext, userAddress, big.NewInt(1000)))

	SetUserID(transactionContext, userAddress)
	err := tokenContract.Transfer(transactionContext, user2Address, "100")
	require.Error(t, err)
	require.Contains(t, err.Error(), "TransfersDisabled")

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.ReleasePublic(transactionContext))

	SetUserID(transactionContext, userAddress)
	require.NoError(t, tokenContract.Transfer(transactionContext, user2Address, "100"))

	balance, err := tokenContract.BalanceOf(transactionContext, user2Address)
	require.NoError(t, err)
	require.Equal(t, "100", balance)

	balance, err = tokenContract.BalanceOf(transactionContext, userAddress)
	require.NoError(t, err)
	require.Equal(t, "900", balance)
}

func TestTransferAfterSaleEnd(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, chaincodeStub := initializedToken(t)

	require.NoError(t, token.CreditFromPool(transactionContext, userAddress, big.NewInt(1000)))

	setTxTime(chaincodeStub, saleEnd)

	SetUserID(transactionContext, userAddress)
	require.NoError(t, tokenContract.Transfer(transactionContext, user2Address, "400"))

	balance, err := tokenContract.BalanceOf(transactionContext, user2Address)
	require.NoError(t, err)
	require.Equal(t, "400", balance)
}

func TestEarlyReleaseRespectsLockList(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	require.NoError(t, token.CreditFromPool(transactionContext, userAddress, big.NewInt(1000)))
	require.NoError(t, token.CreditFromPool(transactionContext, user2Address, big.NewInt(1000)))

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.EnableEarlyRelease(transactionContext))
	require.NoError(t, tokenContract.LockAccount(transactionContext, user2Address))

	SetUserID(transactionContext, userAddress)
	require.NoError(t, tokenContract.Transfer(transactionContext, user2Address, "50"))

	SetUserID(transactionContext, user2Address)
	err := tokenContract.Transfer(transactionContext, userAddress, "50")
	require.Error(t, err)
	require.Contains(t, err.Error(), "TransfersDisabled")

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.UnlockAccount(transactionContext, user2Address))

	SetUserID(transactionContext, user2Address)
	require.NoError(t, tokenContract.Transfer(transactionContext, userAddress, "50"))
}

func TestSaleAccountExemptFromGate(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	require.NoError(t, token.CreditFromPool(transactionContext, userAddress, big.NewInt(1000)))

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.RegisterSaleAccount(transactionContext, userAddress))

	SetUserID(transactionContext, userAddress)
	require.NoError(t, tokenContract.Transfer(transactionContext, user2Address, "100"))
}

func TestTransferInsufficientBalance(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	require.NoError(t, token.CreditFromPool(transactionContext, userAddress, big.NewInt(10)))

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.ReleasePublic(transactionContext))

	SetUserID(transactionContext, userAddress)
	err := tokenContract.Transfer(transactionContext, user2Address, "100")
	require.Error(t, err)
	require.Contains(t, err.Error(), "InsufficientBalance")
}

func TestApproveAndTransferFrom(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	require.NoError(t, token.CreditFromPool(transactionContext, userAddress, big.NewInt(1000)))

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.ReleasePublic(transactionContext))

	SetUserID(transactionContext, userAddress)
	require.NoError(t, tokenContract.Approve(transactionContext, user2Address, "300"))

	allowance, err := tokenContract.Allowance(transactionContext, userAddress, user2Address)
	require.NoError(t, err)
	require.Equal(t, "300", allowance)

	SetUserID(transactionContext, user2Address)
	require.NoError(t, tokenContract.TransferFrom(transactionContext, userAddress, user2Address, "200"))

	allowance, err = tokenContract.Allowance(transactionContext, userAddress, user2Address)
	require.NoError(t, err)
	require.Equal(t, "100", allowance)

	balance, err := tokenContract.BalanceOf(transactionContext, user2Address)
	require.NoError(t, err)
	require.Equal(t, "200", balance)

	err = tokenContract.TransferFrom(transactionContext, userAddress, user2Address, "200")
	require.Error(t, err)
	require.Contains(t, err.Error(), "InsufficientAllowance")
}

func TestApproveRequiresZeroReset(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	SetUserID(transactionContext, userAddress)
	require.NoError(t, tokenContract.Approve(transactionContext, user2Address, "300"))

	err := tokenContract.Approve(transactionContext, user2Address, "500")
	require.Error(t, err)
	require.Contains(t, err.Error(), "PolicyViolation")

	require.NoError(t, tokenContract.Approve(transactionContext, user2Address, "0"))
	require.NoError(t, tokenContract.Approve(transactionContext, user2Address, "500"))
}

func TestSupplyConservation(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	require.NoError(t, token.CreditFromPool(transactionContext, userAddress, big.NewInt(12345)))
	require.NoError(t, token.CreditFromPool(transactionContext, user2Address, big.NewInt(54321)))

	SetUserID(transactionContext, adminAddress)
	require.NoError(t, tokenContract.ReleasePublic(transactionContext))

	SetUserID(transactionContext, userAddress)
	require.NoError(t, tokenContract.Transfer(transactionContext, user2Address, "45"))

	accounts := []string{supplyPoolAddress, userAddress, user2Address}
	sum := big.NewInt(0)
	for _, account := range accounts {
		balance, err := token.GetBalance(transactionContext, account)
		require.NoError(t, err)
		sum.Add(sum, balance)
	}

	require.Zero(t, sum.Cmp(totalSupplyBase()))
}

func TestTransferAllowedGetter(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, chaincodeStub := initializedToken(t)

	allowed, err := tokenContract.TransferAllowed(transactionContext, userAddress)
	require.NoError(t, err)
	require.False(t, allowed)

	setTxTime(chaincodeStub, saleEnd+1)

	allowed, err = tokenContract.TransferAllowed(transactionContext, userAddress)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestGateOperationsRequireAdmin(t *testing.T) {
	t.Parallel()

	tokenContract, transactionContext, _ := initializedToken(t)

	SetUserID(transactionContext, userAddress)

	require.Error(t, tokenContract.EnableEarlyRelease(transactionContext))
	require.Error(t, tokenContract.ReleasePublic(transactionContext))
	require.Error(t, tokenContract.LockAccount(transactionContext, user2Address))
	require.Error(t, tokenContract.RegisterSaleAccount(transactionContext, user2Address))
}
