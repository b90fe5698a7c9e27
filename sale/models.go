package sale

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// SaleConfig holds the sale window, the release epoch for cohort vesting
// and the fixed recipient accounts. Written once at initialization; the
// conversion rate lives under its own key because it stays adjustable.
type SaleConfig struct {
	StartTimestamp    uint64 `json:"startTimestamp"`
	EndTimestamp      uint64 `json:"endTimestamp"`
	ReleaseEpoch      uint64 `json:"releaseEpoch"`
	TeamAccount       string `json:"teamAccount"`
	FoundationAccount string `json:"foundationAccount"`
	Beneficiary       string `json:"beneficiary"`
}

// TrancheState tracks how many team tranches have been released.
type TrancheState struct {
	ReleasedCount uint64 `json:"releasedCount"`
}

// AdvisorShare is one configured advisor allocation. Shares are validated
// against the advisors cap when the configuration is stored.
type AdvisorShare struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func GetSaleConfig(ctx contractapi.TransactionContextInterface) (*SaleConfig, error) {
	configAsBytes, err := ctx.GetStub().GetState(saleConfigKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to get sale config", err)
	}
	if configAsBytes == nil {
		return nil, nil
	}

	var config SaleConfig
	err = json.Unmarshal(configAsBytes, &config)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal sale config", err)
	}

	return &config, nil
}

func SetSaleConfig(ctx contractapi.TransactionContextInterface, config *SaleConfig) error {
	configAsBytes, err := json.Marshal(config)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal sale config", err)
	}

	err = ctx.GetStub().PutState(saleConfigKey, configAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set sale config", err)
	}

	return nil
}

// requireSaleConfig fails when the sale has not been initialized.
func requireSaleConfig(ctx contractapi.TransactionContextInterface) (*SaleConfig, error) {
	config, err := GetSaleConfig(ctx)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, NewCustomError(http.StatusBadRequest, "sale is not initialized", ErrPolicyViolation)
	}

	return config, nil
}

func GetTrancheState(ctx contractapi.TransactionContextInterface) (*TrancheState, error) {
	trancheAsBytes, err := ctx.GetStub().GetState(trancheStateKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to get tranche state", err)
	}

	tranche := &TrancheState{}
	if trancheAsBytes != nil {
		err = json.Unmarshal(trancheAsBytes, tranche)
		if err != nil {
			return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal tranche state", err)
		}
	}

	return tranche, nil
}

func SetTrancheState(ctx contractapi.TransactionContextInterface, tranche *TrancheState) error {
	trancheAsBytes, err := json.Marshal(tranche)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal tranche state", err)
	}

	err = ctx.GetStub().PutState(trancheStateKey, trancheAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set tranche state", err)
	}

	return nil
}

func GetAdvisorConfig(ctx contractapi.TransactionContextInterface) ([]AdvisorShare, error) {
	advisorsAsBytes, err := ctx.GetStub().GetState(advisorConfigKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to get advisor config", err)
	}
	if advisorsAsBytes == nil {
		return nil, nil
	}

	var advisors []AdvisorShare
	err = json.Unmarshal(advisorsAsBytes, &advisors)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal advisor config", err)
	}

	return advisors, nil
}

func SetAdvisorConfig(ctx contractapi.TransactionContextInterface, advisors []AdvisorShare) error {
	advisorsAsBytes, err := json.Marshal(advisors)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal advisor config", err)
	}

	err = ctx.GetStub().PutState(advisorConfigKey, advisorsAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set advisor config", err)
	}

	return nil
}

// GetCounter reads one of the monotonic allocation counters; an absent key
// is zero.
func GetCounter(ctx contractapi.TransactionContextInterface, counterKey string) (*big.Int, error) {
	counterAsBytes, err := ctx.GetStub().GetState(counterKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get counter with Key %s", counterKey), err)
	}

	counter := big.NewInt(0)
	if counterAsBytes != nil {
		_, success := counter.SetString(string(counterAsBytes), 10)
		if !success {
			return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to parse counter with Key %s", counterKey), nil)
		}
	}

	return counter, nil
}

func SetCounter(ctx contractapi.TransactionContextInterface, counterKey string, counter *big.Int) error {
	err := ctx.GetStub().PutState(counterKey, []byte(counter.String()))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set counter with Key %s", counterKey), err)
	}

	return nil
}

func isWhitelisted(ctx contractapi.TransactionContextInterface, account string) (bool, error) {
	whitelistKey := fmt.Sprintf("%s%s", whitelistKeyPrefix, account)
	whitelistAsBytes, err := ctx.GetStub().GetState(whitelistKey)
	if err != nil {
		return false, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get whitelist entry with Key %s", whitelistKey), err)
	}

	return whitelistAsBytes != nil, nil
}
