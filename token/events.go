package token

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// TransferEvent is the append-only audit record for every credit and debit.
// Issuance out of the supply pool is reported with the zero address as From.
type TransferEvent struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

type ApprovalEvent struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Value   string `json:"value"`
}

type AccountEvent struct {
	Account string `json:"account"`
}

func EmitTransfer(ctx contractapi.TransactionContextInterface, from, to string, value string) error {
	transfer := TransferEvent{
		From:  from,
		To:    to,
		Value: value,
	}

	transferJSON, err := json.Marshal(transfer)
	if err != nil {
		return fmt.Errorf("failed to obtain JSON encoding: %v", err)
	}

	err = ctx.GetStub().SetEvent(transferEvent, transferJSON)
	if err != nil {
		return fmt.Errorf("failed to set event: %v", err)
	}

	return nil
}

func EmitApproval(ctx contractapi.TransactionContextInterface, owner, spender string, value string) error {
	approval := ApprovalEvent{
		Owner:   owner,
		Spender: spender,
		Value:   value,
	}

	approvalJSON, err := json.Marshal(approval)
	if err != nil {
		return fmt.Errorf("failed to obtain JSON encoding: %v", err)
	}

	err = ctx.GetStub().SetEvent(approvalEvent, approvalJSON)
	if err != nil {
		return fmt.Errorf("failed to set event: %v", err)
	}

	return nil
}

func emitGateEvent(ctx contractapi.TransactionContextInterface, name string) error {
	err := ctx.GetStub().SetEvent(name, []byte("{}"))
	if err != nil {
		return fmt.Errorf("failed to set event: %v", err)
	}

	return nil
}

func emitAccountEvent(ctx contractapi.TransactionContextInterface, name, account string) error {
	event := AccountEvent{Account: account}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to obtain JSON encoding: %v", err)
	}

	err = ctx.GetStub().SetEvent(name, eventJSON)
	if err != nil {
		return fmt.Errorf("failed to set event: %v", err)
	}

	return nil
}
