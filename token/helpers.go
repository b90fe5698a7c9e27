package token

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// GetUserID extracts the caller's address from the x509 client identity CN.
func GetUserID(ctx contractapi.TransactionContextInterface) (string, error) {
	b64ID, err := ctx.GetClientIdentity().GetID()
	if err != nil {
		return "", fmt.Errorf("failed to read clientID: %v", err)
	}

	decodeID, err := base64.StdEncoding.DecodeString(b64ID)
	if err != nil {
		return "", fmt.Errorf("failed to base64 decode clientID: %v", err)
	}

	completeID := string(decodeID)
	cnIndex := strings.Index(completeID, "x509::CN=")
	commaIndex := strings.Index(completeID, ",")
	if cnIndex == -1 || commaIndex == -1 || commaIndex < cnIndex+9 {
		return "", fmt.Errorf("%w: %s", ErrInvalidUserAddress, completeID)
	}

	userID := completeID[cnIndex+9 : commaIndex]
	if !IsUserAddressValid(userID) {
		return "", fmt.Errorf("%w: %s", ErrInvalidUserAddress, userID)
	}

	return userID, nil
}

func IsUserAddressValid(address string) bool {
	if address == "" {
		return false
	}

	isValid, _ := regexp.MatchString(hexAddressRegex, address)
	return isValid
}

// IsSignerAdmin fails unless the transaction signer is the foundation admin.
func IsSignerAdmin(ctx contractapi.TransactionContextInterface) error {
	signer, err := GetUserID(ctx)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to get client id", err)
	}

	if signer != foundationAdmin {
		return NewCustomError(http.StatusForbidden, "signer is not the foundation admin", ErrUnauthorized)
	}

	return nil
}

func Decimals() uint64 {
	return tokenDecimals
}

// ConvertToBaseUnits scales a whole-token amount to base units (10^18).
func ConvertToBaseUnits(tokenAmount uint64) string {
	amount := new(big.Int).SetUint64(tokenAmount)
	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(tokenDecimals)), nil)

	return new(big.Int).Mul(amount, multiplier).String()
}

// TxTimestamp returns the transaction timestamp in unix seconds. The tx
// timestamp, not wall-clock time, drives every time comparison so that
// endorsers agree on the outcome.
func TxTimestamp(ctx contractapi.TransactionContextInterface) (uint64, error) {
	timestamp, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, "failed to get transaction timestamp", err)
	}

	return uint64(timestamp.Seconds), nil
}

func parseAmount(entity, amount string) (*big.Int, error) {
	amountInInt, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, InvalidAmountError(entity, amount)
	}
	if amountInInt.Sign() < 0 {
		return nil, InvalidAmountError(entity, amount)
	}

	return amountInInt, nil
}
