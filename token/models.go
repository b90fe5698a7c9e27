package token

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// Metadata describes the fixed token parameters written once at
// initialization.
type Metadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint64 `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
}

// GateState is the transfer-gate state machine. Both booleans are sticky:
// once set they are never cleared.
type GateState struct {
	EarlyReleaseEnabled bool   `json:"earlyReleaseEnabled"`
	PublicRelease       bool   `json:"publicRelease"`
	SaleEndTimestamp    uint64 `json:"saleEndTimestamp"`
}

func GetMetadata(ctx contractapi.TransactionContextInterface) (*Metadata, error) {
	metadataAsBytes, err := ctx.GetStub().GetState(metadataKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to get token metadata", err)
	}
	if metadataAsBytes == nil {
		return nil, nil
	}

	var metadata Metadata
	err = json.Unmarshal(metadataAsBytes, &metadata)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal token metadata", err)
	}

	return &metadata, nil
}

func SetMetadata(ctx contractapi.TransactionContextInterface, metadata *Metadata) error {
	metadataAsBytes, err := json.Marshal(metadata)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal token metadata", err)
	}

	err = ctx.GetStub().PutState(metadataKey, metadataAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set token metadata", err)
	}

	return nil
}

func GetGateState(ctx contractapi.TransactionContextInterface) (*GateState, error) {
	gateAsBytes, err := ctx.GetStub().GetState(gateKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to get transfer gate state", err)
	}
	if gateAsBytes == nil {
		return nil, NewCustomError(http.StatusInternalServerError, "transfer gate state does not exist", nil)
	}

	var gate GateState
	err = json.Unmarshal(gateAsBytes, &gate)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal transfer gate state", err)
	}

	return &gate, nil
}

func SetGateState(ctx contractapi.TransactionContextInterface, gate *GateState) error {
	gateAsBytes, err := json.Marshal(gate)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal transfer gate state", err)
	}

	err = ctx.GetStub().PutState(gateKey, gateAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set transfer gate state", err)
	}

	return nil
}

// GetBalance reads an account balance; accounts with no state entry hold
// zero.
func GetBalance(ctx contractapi.TransactionContextInterface, account string) (*big.Int, error) {
	balanceKey := fmt.Sprintf("%s%s", balanceKeyPrefix, account)
	balanceAsBytes, err := ctx.GetStub().GetState(balanceKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get balance with Key %s", balanceKey), err)
	}

	balance := big.NewInt(0)
	if balanceAsBytes != nil {
		_, success := balance.SetString(string(balanceAsBytes), 10)
		if !success {
			return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to parse balance for account %s", account), nil)
		}
	}

	return balance, nil
}

func SetBalance(ctx contractapi.TransactionContextInterface, account string, balance *big.Int) error {
	balanceKey := fmt.Sprintf("%s%s", balanceKeyPrefix, account)

	err := ctx.GetStub().PutState(balanceKey, []byte(balance.String()))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set balance with Key %s", balanceKey), err)
	}

	return nil
}

func GetAllowance(ctx contractapi.TransactionContextInterface, owner, spender string) (*big.Int, error) {
	allowanceKey := fmt.Sprintf("%s%s_%s", allowanceKeyPrefix, owner, spender)
	allowanceAsBytes, err := ctx.GetStub().GetState(allowanceKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get allowance with Key %s", allowanceKey), err)
	}

	allowance := big.NewInt(0)
	if allowanceAsBytes != nil {
		_, success := allowance.SetString(string(allowanceAsBytes), 10)
		if !success {
			return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to parse allowance for owner %s and spender %s", owner, spender), nil)
		}
	}

	return allowance, nil
}

func SetAllowanceState(ctx contractapi.TransactionContextInterface, owner, spender string, allowance *big.Int) error {
	allowanceKey := fmt.Sprintf("%s%s_%s", allowanceKeyPrefix, owner, spender)

	err := ctx.GetStub().PutState(allowanceKey, []byte(allowance.String()))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set allowance with Key %s", allowanceKey), err)
	}

	return nil
}

func isAccountLocked(ctx contractapi.TransactionContextInterface, account string) (bool, error) {
	lockKey := fmt.Sprintf("%s%s", lockKeyPrefix, account)
	lockAsBytes, err := ctx.GetStub().GetState(lockKey)
	if err != nil {
		return false, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get lock with Key %s", lockKey), err)
	}

	return lockAsBytes != nil, nil
}

func isSaleAccount(ctx contractapi.TransactionContextInterface, account string) (bool, error) {
	saleAccountKey := fmt.Sprintf("%s%s", saleAccountKeyPrefix, account)
	saleAccountAsBytes, err := ctx.GetStub().GetState(saleAccountKey)
	if err != nil {
		return false, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get sale account with Key %s", saleAccountKey), err)
	}

	return saleAccountAsBytes != nil, nil
}
