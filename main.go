/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"log"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/meridianlabs/mrd-sale-contract/sale"
	"github.com/meridianlabs/mrd-sale-contract/token"
)

func main() {
	tokenContract := &token.SmartContract{}
	tokenContract.Contract.Name = "MeridianToken"

	saleContract := &sale.SmartContract{}
	saleContract.Contract.Name = "MeridianSale"

	chaincode, err := contractapi.NewChaincode(tokenContract, saleContract)
	if err != nil {
		log.Panicf("Error creating mrd sale chaincode: %v", err)
	}

	if err := chaincode.Start(); err != nil {
		log.Panicf("Error starting mrd sale chaincode: %v", err)
	}
}
