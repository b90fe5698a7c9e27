package token

import (
	"math/big"
	"net/http"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/meridianlabs/mrd-sale-contract/safemath"
)

// move debits from and credits to with checked arithmetic. Callers are
// responsible for gate and authorization checks.
func move(ctx contractapi.TransactionContextInterface, from, to string, amount *big.Int) error {
	fromBalance, err := GetBalance(ctx, from)
	if err != nil {
		return err
	}

	if fromBalance.Cmp(amount) < 0 {
		return NewCustomError(http.StatusBadRequest, "sender balance is lower than the transfer amount", ErrInsufficientBalance)
	}

	newFromBalance, err := safemath.Sub(fromBalance, amount)
	if err != nil {
		return err
	}

	toBalance, err := GetBalance(ctx, to)
	if err != nil {
		return err
	}

	newToBalance, err := safemath.Add(toBalance, amount)
	if err != nil {
		return err
	}

	err = SetBalance(ctx, from, newFromBalance)
	if err != nil {
		return err
	}

	err = SetBalance(ctx, to, newToBalance)
	if err != nil {
		return err
	}

	return nil
}

// TransferRaw moves tokens between accounts without consulting the transfer
// gate. It exists for the sale contract, which issues purchased tokens out
// of the supply pool while arbitrary transfers are still disabled.
func TransferRaw(ctx contractapi.TransactionContextInterface, from, to string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return ErrCannotBeZero
	}

	err := move(ctx, from, to, amount)
	if err != nil {
		return err
	}

	return EmitTransfer(ctx, from, to, amount.String())
}

// CreditFromPool debits the supply pool and credits the recipient, emitting
// a null-origin issuance record. Cohort releases and bonus payouts go
// through here so the audit trail shows them as issuance rather than a
// transfer from a holder.
func CreditFromPool(ctx contractapi.TransactionContextInterface, to string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return ErrCannotBeZero
	}

	err := move(ctx, supplyPool, to, amount)
	if err != nil {
		return err
	}

	return EmitTransfer(ctx, zeroAddress, to, amount.String())
}

// SupplyPoolAccount exposes the reserved pool address to the sale contract.
func SupplyPoolAccount() string {
	return supplyPool
}
