package token

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/meridianlabs/mrd-sale-contract/safemath"
)

// SmartContract carries the fungible-token ledger and the transfer gate.
type SmartContract struct {
	contractapi.Contract
}

// Initialize mints the fixed supply to the supply pool and records the gate
// configuration. One-shot, admin-only.
func (s *SmartContract) Initialize(ctx contractapi.TransactionContextInterface, saleEndTimestamp uint64) error {
	if saleEndTimestamp == 0 {
		return ErrCannotBeZero
	}

	err := IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	existing, err := GetMetadata(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return NewCustomError(http.StatusConflict, "token is already initialized", ErrTokenAlreadySet)
	}

	totalSupply := ConvertToBaseUnits(totalSupplyTokens)
	err = SetMetadata(ctx, &Metadata{
		Name:        tokenName,
		Symbol:      tokenSymbol,
		Decimals:    tokenDecimals,
		TotalSupply: totalSupply,
	})
	if err != nil {
		return err
	}

	err = SetGateState(ctx, &GateState{
		EarlyReleaseEnabled: false,
		PublicRelease:       false,
		SaleEndTimestamp:    saleEndTimestamp,
	})
	if err != nil {
		return err
	}

	supply, _ := new(big.Int).SetString(totalSupply, 10)
	err = SetBalance(ctx, supplyPool, supply)
	if err != nil {
		return err
	}

	return EmitTransfer(ctx, zeroAddress, supplyPool, totalSupply)
}

// Transfer moves tokens from the signer to the recipient, provided the
// transfer gate allows the signer to move tokens.
func (s *SmartContract) Transfer(ctx contractapi.TransactionContextInterface, recipient, amount string) error {
	signer, err := GetUserID(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	if !IsUserAddressValid(recipient) {
		return fmt.Errorf("%w: %s", ErrInvalidUserAddress, recipient)
	}

	amountInInt, err := parseAmount("transfer", amount)
	if err != nil {
		return err
	}

	err = requireTransferAllowed(ctx, signer)
	if err != nil {
		return err
	}

	err = move(ctx, signer, recipient, amountInInt)
	if err != nil {
		return err
	}

	return EmitTransfer(ctx, signer, recipient, amount)
}

// TransferFrom spends the signer's allowance on the owner's balance. The
// gate is evaluated against the caller, matching Transfer.
func (s *SmartContract) TransferFrom(ctx contractapi.TransactionContextInterface, from, to, amount string) error {
	spender, err := GetUserID(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	if !IsUserAddressValid(from) {
		return fmt.Errorf("%w: %s", ErrInvalidUserAddress, from)
	}
	if !IsUserAddressValid(to) {
		return fmt.Errorf("%w: %s", ErrInvalidUserAddress, to)
	}

	amountInInt, err := parseAmount("transferFrom", amount)
	if err != nil {
		return err
	}

	err = requireTransferAllowed(ctx, spender)
	if err != nil {
		return err
	}

	allowance, err := GetAllowance(ctx, from, spender)
	if err != nil {
		return err
	}

	if allowance.Cmp(amountInInt) < 0 {
		return NewCustomError(http.StatusBadRequest, "allowance is lower than the transfer amount", ErrInsufficientAllowance)
	}

	newAllowance, err := safemath.Sub(allowance, amountInInt)
	if err != nil {
		return err
	}

	err = SetAllowanceState(ctx, from, spender, newAllowance)
	if err != nil {
		return err
	}

	err = move(ctx, from, to, amountInInt)
	if err != nil {
		return err
	}

	return EmitTransfer(ctx, from, to, amount)
}

// Approve sets the signer's allowance for a spender. A non-zero allowance
// can only be replaced after being reset to zero first, closing the
// double-spend race on allowance changes.
func (s *SmartContract) Approve(ctx contractapi.TransactionContextInterface, spender, amount string) error {
	owner, err := GetUserID(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	if !IsUserAddressValid(spender) {
		return fmt.Errorf("%w: %s", ErrInvalidUserAddress, spender)
	}

	amountInInt, err := parseAmount("approve", amount)
	if err != nil {
		return err
	}

	if amountInInt.Sign() != 0 {
		current, err := GetAllowance(ctx, owner, spender)
		if err != nil {
			return err
		}
		if current.Sign() != 0 {
			return NewCustomError(http.StatusBadRequest, "allowance must be reset to zero before a new approval", ErrPolicyViolation)
		}
	}

	err = SetAllowanceState(ctx, owner, spender, amountInInt)
	if err != nil {
		return err
	}

	return EmitApproval(ctx, owner, spender, amount)
}

func (s *SmartContract) BalanceOf(ctx contractapi.TransactionContextInterface, account string) (string, error) {
	balance, err := GetBalance(ctx, account)
	if err != nil {
		return "0", err
	}

	return balance.String(), nil
}

func (s *SmartContract) Allowance(ctx contractapi.TransactionContextInterface, owner, spender string) (string, error) {
	allowance, err := GetAllowance(ctx, owner, spender)
	if err != nil {
		return "0", err
	}

	return allowance.String(), nil
}

func (s *SmartContract) TotalSupply(ctx contractapi.TransactionContextInterface) (string, error) {
	metadata, err := GetMetadata(ctx)
	if err != nil {
		return "0", err
	}
	if metadata == nil {
		return "0", nil
	}

	return metadata.TotalSupply, nil
}

func (s *SmartContract) Name(ctx contractapi.TransactionContextInterface) (string, error) {
	metadata, err := GetMetadata(ctx)
	if err != nil {
		return "", err
	}
	if metadata == nil {
		return "", nil
	}

	return metadata.Name, nil
}

func (s *SmartContract) Symbol(ctx contractapi.TransactionContextInterface) (string, error) {
	metadata, err := GetMetadata(ctx)
	if err != nil {
		return "", err
	}
	if metadata == nil {
		return "", nil
	}

	return metadata.Symbol, nil
}

func (s *SmartContract) GetDecimals(ctx contractapi.TransactionContextInterface) (uint64, error) {
	return tokenDecimals, nil
}

// TransferAllowed reports whether the gate currently lets the account move
// tokens.
func (s *SmartContract) TransferAllowed(ctx contractapi.TransactionContextInterface, account string) (bool, error) {
	allowed, err := transferAllowed(ctx, account)
	if err != nil {
		return false, err
	}

	return allowed, nil
}

// EnableEarlyRelease opens transfers ahead of the sale end for every
// account not on the lock list. Sticky, admin-only.
func (s *SmartContract) EnableEarlyRelease(ctx contractapi.TransactionContextInterface) error {
	err := IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	gate, err := GetGateState(ctx)
	if err != nil {
		return err
	}

	gate.EarlyReleaseEnabled = true
	err = SetGateState(ctx, gate)
	if err != nil {
		return err
	}

	return emitGateEvent(ctx, earlyReleaseEnabledEvent)
}

// ReleasePublic permanently opens transfers for every account. Sticky,
// admin-only.
func (s *SmartContract) ReleasePublic(ctx contractapi.TransactionContextInterface) error {
	err := IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	gate, err := GetGateState(ctx)
	if err != nil {
		return err
	}

	gate.PublicRelease = true
	err = SetGateState(ctx, gate)
	if err != nil {
		return err
	}

	return emitGateEvent(ctx, publicReleaseEnabledEvent)
}

// LockAccount excludes an account from the early-release path. Locks have
// no effect once the public release happens or the sale ends.
func (s *SmartContract) LockAccount(ctx contractapi.TransactionContextInterface, account string) error {
	err := IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	if !IsUserAddressValid(account) {
		return fmt.Errorf("%w: %s", ErrInvalidUserAddress, account)
	}

	lockKey := fmt.Sprintf("%s%s", lockKeyPrefix, account)
	err = ctx.GetStub().PutState(lockKey, []byte("1"))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set lock with Key %s", lockKey), err)
	}

	return emitAccountEvent(ctx, accountLockedEvent, account)
}

func (s *SmartContract) UnlockAccount(ctx contractapi.TransactionContextInterface, account string) error {
	err := IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	lockKey := fmt.Sprintf("%s%s", lockKeyPrefix, account)
	err = ctx.GetStub().DelState(lockKey)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to delete lock with Key %s", lockKey), err)
	}

	return emitAccountEvent(ctx, accountUnlockedEvent, account)
}

// RegisterSaleAccount marks an account as a designated sale account, exempt
// from the transfer gate.
func (s *SmartContract) RegisterSaleAccount(ctx contractapi.TransactionContextInterface, account string) error {
	err := IsSignerAdmin(ctx)
	if err != nil {
		return err
	}

	if !IsUserAddressValid(account) {
		return fmt.Errorf("%w: %s", ErrInvalidUserAddress, account)
	}

	saleAccountKey := fmt.Sprintf("%s%s", saleAccountKeyPrefix, account)
	err = ctx.GetStub().PutState(saleAccountKey, []byte("1"))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set sale account with Key %s", saleAccountKey), err)
	}

	return emitAccountEvent(ctx, saleAccountAddedEvent, account)
}

func transferAllowed(ctx contractapi.TransactionContextInterface, account string) (bool, error) {
	gate, err := GetGateState(ctx)
	if err != nil {
		return false, err
	}

	if gate.PublicRelease {
		return true, nil
	}

	now, err := TxTimestamp(ctx)
	if err != nil {
		return false, err
	}
	if now >= gate.SaleEndTimestamp {
		return true, nil
	}

	if gate.EarlyReleaseEnabled {
		locked, err := isAccountLocked(ctx, account)
		if err != nil {
			return false, err
		}
		if !locked {
			return true, nil
		}
	}

	saleAccount, err := isSaleAccount(ctx, account)
	if err != nil {
		return false, err
	}

	return saleAccount, nil
}

// requireTransferAllowed aborts with ErrTransfersDisabled while the gate is
// closed for the account.
func requireTransferAllowed(ctx contractapi.TransactionContextInterface, account string) error {
	allowed, err := transferAllowed(ctx, account)
	if err != nil {
		return err
	}
	if !allowed {
		return NewCustomError(http.StatusForbidden, fmt.Sprintf("transfers are disabled for account %s", account), ErrTransfersDisabled)
	}

	return nil
}
