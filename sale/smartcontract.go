package sale

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/meridianlabs/mrd-sale-contract/safemath"
	"github.com/meridianlabs/mrd-sale-contract/token"
)

// SmartContract carries the crowdsale: contribution processing, the bonus
// tier engine and the allocation/vesting controller.
type SmartContract struct {
	contractapi.Contract
}

// AllocationCounters is the queryable snapshot of every cohort counter.
type AllocationCounters struct {
	TotalAllocated         string `json:"totalAllocated"`
	TotalSold              string `json:"totalSold"`
	BonusDistributed       string `json:"bonusDistributed"`
	TeamAllocated          string `json:"teamAllocated"`
	AdvisorsAllocated      string `json:"advisorsAllocated"`
	FoundationPreAllocated string `json:"foundationPreAllocated"`
	FoundationFinalized    string `json:"foundationFinalized"`
}

// TrancheInfo is the queryable tranche state.
type TrancheInfo struct {
	ReleasedCount uint64 `json:"releasedCount"`
	MaxTranches   uint64 `json:"maxTranches"`
}

// BonusSchedule is the queryable immutable bonus configuration.
type BonusSchedule struct {
	Tiers []BonusTier `json:"tiers"`
	Bulk  []BulkTier  `json:"bulk"`
}

// Initialize stores the sale window, release epoch, recipient accounts and
// the default conversion rate. One-shot, admin-only.
func (s *SmartContract) Initialize(ctx contractapi.TransactionContextInterface, startTimestamp, endTimestamp, releaseEpoch uint64, teamAccount, foundationAccount, beneficiary string) error {
	if startTimestamp == 0 || endTimestamp == 0 || releaseEpoch == 0 {
		return ErrCannotBeZero
	}
	if endTimestamp <= startTimestamp {
		return NewCustomError(http.StatusBadRequest, "sale end must come after sale start", ErrPolicyViolation)
	}

	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	for _, account := range []string{teamAccount, foundationAccount, beneficiary} {
		if !token.IsUserAddressValid(account) {
			return fmt.Errorf("%w: %s", ErrInvalidUserAddress, account)
		}
	}

	existing, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return NewCustomError(http.StatusConflict, "sale is already initialized", ErrPolicyViolation)
	}

	err = SetSaleConfig(ctx, &SaleConfig{
		StartTimestamp:    startTimestamp,
		EndTimestamp:      endTimestamp,
		ReleaseEpoch:      releaseEpoch,
		TeamAccount:       teamAccount,
		FoundationAccount: foundationAccount,
		Beneficiary:       beneficiary,
	})
	if err != nil {
		return err
	}

	err = ctx.GetStub().PutState(conversionRateKey, []byte(strconv.FormatUint(defaultConversionRate, 10)))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set conversion rate", err)
	}

	return SetTrancheState(ctx, &TrancheState{ReleasedCount: 0})
}

// SetTokenContract records the ledger contract address the sale issues
// tokens through. Write-once, admin-only.
func (s *SmartContract) SetTokenContract(ctx contractapi.TransactionContextInterface, tokenAddress string) error {
	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	if tokenAddress == "" {
		return ErrCannotBeZero
	}

	existingAddress, err := ctx.GetStub().GetState(tokenContractKey)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to get token contract address", err)
	}
	if existingAddress != nil && string(existingAddress) != "" {
		return NewCustomError(http.StatusConflict, "token contract address is already set", ErrTokenAlreadySet)
	}

	err = ctx.GetStub().PutState(tokenContractKey, []byte(tokenAddress))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set token contract address", err)
	}

	return EmitWhitelistEvent(ctx, tokenContractSetEvent, tokenAddress)
}

// SetConversionRate adjusts how many tokens one native-currency unit buys.
func (s *SmartContract) SetConversionRate(ctx contractapi.TransactionContextInterface, rate uint64) error {
	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	if rate == 0 {
		return ErrCannotBeZero
	}

	err = ctx.GetStub().PutState(conversionRateKey, []byte(strconv.FormatUint(rate, 10)))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set conversion rate", err)
	}

	return EmitConversionRateChanged(ctx, rate)
}

// AddToWhitelist marks accounts as eligible contributors.
func (s *SmartContract) AddToWhitelist(ctx contractapi.TransactionContextInterface, accounts []string) error {
	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	if len(accounts) == 0 {
		return ErrCannotBeZero
	}

	for _, account := range accounts {
		if !token.IsUserAddressValid(account) {
			return fmt.Errorf("%w: %s", ErrInvalidUserAddress, account)
		}

		whitelistKey := fmt.Sprintf("%s%s", whitelistKeyPrefix, account)
		err = ctx.GetStub().PutState(whitelistKey, []byte("1"))
		if err != nil {
			return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set whitelist entry with Key %s", whitelistKey), err)
		}

		err = EmitWhitelistEvent(ctx, whitelistAddedEvent, account)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *SmartContract) RemoveFromWhitelist(ctx contractapi.TransactionContextInterface, account string) error {
	err := token.IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	whitelistKey := fmt.Sprintf("%s%s", whitelistKeyPrefix, account)
	err = ctx.GetStub().DelState(whitelistKey)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to delete whitelist entry with Key %s", whitelistKey), err)
	}

	return EmitWhitelistEvent(ctx, whitelistRemovedEvent, account)
}

func (s *SmartContract) IsWhitelisted(ctx contractapi.TransactionContextInterface, account string) (bool, error) {
	return isWhitelisted(ctx, account)
}

// Contribute processes one incoming contribution: converts the native
// amount to tokens at the configured rate, forwards the payment record,
// issues the base tokens, computes and issues the bonus, and bumps the
// cumulative-sold counters. The bonus is computed against the sold counter
// captured before this contribution is applied.
func (s *SmartContract) Contribute(ctx contractapi.TransactionContextInterface, recipient, value string) error {
	payer, err := token.GetUserID(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	if !token.IsUserAddressValid(recipient) {
		return fmt.Errorf("%w: %s", ErrInvalidUserAddress, recipient)
	}

	valueInInt, ok := new(big.Int).SetString(value, 10)
	if !ok || valueInInt.Sign() <= 0 {
		return InvalidAmountError("contribution", value)
	}

	config, err := requireSaleConfig(ctx)
	if err != nil {
		return err
	}

	tokenAddress, err := ctx.GetStub().GetState(tokenContractKey)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to get token contract address", err)
	}
	if tokenAddress == nil || string(tokenAddress) == "" {
		return NewCustomError(http.StatusBadRequest, "token contract address is not set", ErrPolicyViolation)
	}

	now, err := token.TxTimestamp(ctx)
	if err != nil {
		return err
	}
	if now < config.StartTimestamp || now >= config.EndTimestamp {
		return NewCustomError(http.StatusBadRequest, "contribution outside the sale window", ErrPolicyViolation)
	}

	for _, account := range []string{payer, recipient} {
		eligible, err := isWhitelisted(ctx, account)
		if err != nil {
			return err
		}
		if !eligible {
			return NewCustomError(http.StatusForbidden, fmt.Sprintf("account %s is not whitelisted", account), ErrNotWhitelisted)
		}
	}

	rate, err := getConversionRate(ctx)
	if err != nil {
		return err
	}

	tokenAmount, err := safemath.Mul(valueInInt, new(big.Int).SetUint64(rate))
	if err != nil {
		return err
	}

	soldBefore, err := GetCounter(ctx, totalSoldKey)
	if err != nil {
		return err
	}

	soldAfter, err := safemath.Add(soldBefore, tokenAmount)
	if err != nil {
		return err
	}
	if soldAfter.Cmp(capInBaseUnits(hardCapTokens)) > 0 {
		return NewCustomError(http.StatusBadRequest, "contribution exceeds the sale hard cap", ErrSaleCapacityExhausted)
	}

	err = EmitPaymentForwarded(ctx, payer, config.Beneficiary, value)
	if err != nil {
		return err
	}

	err = token.TransferRaw(ctx, token.SupplyPoolAccount(), recipient, tokenAmount)
	if err != nil {
		return err
	}

	bonus, err := CalculateBonus(tokenAmount, soldBefore)
	if err != nil {
		return err
	}

	err = recordSaleAllocation(ctx, tokenAmount)
	if err != nil {
		return err
	}

	err = recordBonusAllocation(ctx, recipient, bonus)
	if err != nil {
		return err
	}

	return EmitContribution(ctx, ContributionEvent{
		Contributor:          recipient,
		NativeAmount:         value,
		CumulativeSoldBefore: soldBefore.String(),
		TokenAmount:          tokenAmount.String(),
		BonusAmount:          bonus.String(),
	})
}

func (s *SmartContract) GetSaleWindow(ctx contractapi.TransactionContextInterface) (*SaleConfig, error) {
	return requireSaleConfig(ctx)
}

func (s *SmartContract) GetConversionRate(ctx contractapi.TransactionContextInterface) (uint64, error) {
	return getConversionRate(ctx)
}

func (s *SmartContract) GetAllocationCounters(ctx contractapi.TransactionContextInterface) (*AllocationCounters, error) {
	counters := &AllocationCounters{}

	fields := []struct {
		key  string
		dest *string
	}{
		{totalAllocatedKey, &counters.TotalAllocated},
		{totalSoldKey, &counters.TotalSold},
		{bonusDistributedKey, &counters.BonusDistributed},
		{teamAllocatedKey, &counters.TeamAllocated},
		{advisorsAllocatedKey, &counters.AdvisorsAllocated},
		{foundationPreKey, &counters.FoundationPreAllocated},
		{foundationFinalKey, &counters.FoundationFinalized},
	}

	for _, field := range fields {
		counter, err := GetCounter(ctx, field.key)
		if err != nil {
			return nil, err
		}
		*field.dest = counter.String()
	}

	return counters, nil
}

func (s *SmartContract) GetTrancheInfo(ctx contractapi.TransactionContextInterface) (*TrancheInfo, error) {
	tranche, err := GetTrancheState(ctx)
	if err != nil {
		return nil, err
	}

	return &TrancheInfo{
		ReleasedCount: tranche.ReleasedCount,
		MaxTranches:   maxTranches,
	}, nil
}

func (s *SmartContract) GetBonusSchedule(ctx contractapi.TransactionContextInterface) (*BonusSchedule, error) {
	return &BonusSchedule{
		Tiers: BonusTiers(),
		Bulk:  BulkTiers(),
	}, nil
}

func (s *SmartContract) GetAdvisors(ctx contractapi.TransactionContextInterface) ([]AdvisorShare, error) {
	return GetAdvisorConfig(ctx)
}

func getConversionRate(ctx contractapi.TransactionContextInterface) (uint64, error) {
	rateAsBytes, err := ctx.GetStub().GetState(conversionRateKey)
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, "failed to get conversion rate", err)
	}
	if rateAsBytes == nil {
		return 0, NewCustomError(http.StatusBadRequest, "conversion rate is not set", ErrPolicyViolation)
	}

	rate, err := strconv.ParseUint(string(rateAsBytes), 10, 64)
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, "failed to parse conversion rate", err)
	}

	return rate, nil
}
