package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusUnsigned TransactionStatus = "UNSIGNED"
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusExecuted TransactionStatus = "EXECUTED"
	TransactionStatusFailed   TransactionStatus = "FAILED"
)

// Transaction is an unsigned call plus, once sent, its on-chain outcome
type Transaction struct {
	To    *common.Address `json:"to"`
	Data  []byte          `json:"data"`
	Value *big.Int        `json:"value"`

	Status      TransactionStatus `json:"status"`
	Hash        common.Hash       `json:"hash,omitempty"`
	BlockNumber uint64            `json:"blockNumber,omitempty"`
	GasUsed     uint64            `json:"gasUsed,omitempty"`
}

// NewTransaction returns an unsigned call to `to`
func NewTransaction(to common.Address, data []byte, value *big.Int) *Transaction {
	if value == nil {
		value = new(big.Int)
	}
	return &Transaction{
		To:     &to,
		Data:   data,
		Value:  value,
		Status: TransactionStatusUnsigned,
	}
}

// Receipt is the outcome of a mined transaction
type Receipt struct {
	TxHash          common.Hash    `json:"txHash"`
	Status          uint64         `json:"status"`
	BlockNumber     uint64         `json:"blockNumber"`
	GasUsed         uint64         `json:"gasUsed"`
	ContractAddress common.Address `json:"contractAddress,omitempty"`
}

// Succeeded reports whether the transaction executed without reverting
func (r *Receipt) Succeeded() bool {
	return r.Status == 1
}
