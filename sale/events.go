package sale

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// ContributionEvent is the audit record for one processed contribution.
// CumulativeSoldBefore is the sold counter captured before the contribution
// was applied, which is the value the bonus computation used.
type ContributionEvent struct {
	Contributor          string `json:"contributor"`
	NativeAmount         string `json:"nativeAmount"`
	CumulativeSoldBefore string `json:"cumulativeSoldBefore"`
	TokenAmount          string `json:"tokenAmount"`
	BonusAmount          string `json:"bonusAmount"`
}

type PaymentForwardedEvent struct {
	Payer       string `json:"payer"`
	Beneficiary string `json:"beneficiary"`
	Amount      string `json:"amount"`
}

type TeamTrancheEvent struct {
	TrancheIndex uint64 `json:"trancheIndex"`
	Amount       string `json:"amount"`
	Recipient    string `json:"recipient"`
}

type CohortReleaseEvent struct {
	Cohort string `json:"cohort"`
	Amount string `json:"amount"`
}

type ConversionRateEvent struct {
	Rate uint64 `json:"rate"`
}

type WhitelistEvent struct {
	Account string `json:"account"`
}

type AdvisorsConfiguredEvent struct {
	TotalShares string `json:"totalShares"`
	Count       int    `json:"count"`
}

func EmitContribution(ctx contractapi.TransactionContextInterface, event ContributionEvent) error {
	return emitEvent(ctx, contributionEvent, event)
}

func EmitPaymentForwarded(ctx contractapi.TransactionContextInterface, payer, beneficiary, amount string) error {
	return emitEvent(ctx, paymentForwardedEvent, PaymentForwardedEvent{
		Payer:       payer,
		Beneficiary: beneficiary,
		Amount:      amount,
	})
}

func EmitTeamTrancheReleased(ctx contractapi.TransactionContextInterface, trancheIndex uint64, amount, recipient string) error {
	return emitEvent(ctx, teamTrancheEvent, TeamTrancheEvent{
		TrancheIndex: trancheIndex,
		Amount:       amount,
		Recipient:    recipient,
	})
}

func EmitCohortReleased(ctx contractapi.TransactionContextInterface, name, cohort, amount string) error {
	return emitEvent(ctx, name, CohortReleaseEvent{
		Cohort: cohort,
		Amount: amount,
	})
}

func EmitConversionRateChanged(ctx contractapi.TransactionContextInterface, rate uint64) error {
	return emitEvent(ctx, conversionRateEvent, ConversionRateEvent{Rate: rate})
}

func EmitWhitelistEvent(ctx contractapi.TransactionContextInterface, name, account string) error {
	return emitEvent(ctx, name, WhitelistEvent{Account: account})
}

func EmitAdvisorsConfigured(ctx contractapi.TransactionContextInterface, totalShares string, count int) error {
	return emitEvent(ctx, advisorsConfiguredEvent, AdvisorsConfiguredEvent{
		TotalShares: totalShares,
		Count:       count,
	})
}

func emitEvent(ctx contractapi.TransactionContextInterface, name string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to obtain JSON encoding: %v", err)
	}

	err = ctx.GetStub().SetEvent(name, payloadJSON)
	if err != nil {
		return fmt.Errorf("failed to set event: %v", err)
	}

	return nil
}
