package models

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/domain"
)

// DeploymentType represents what a deployment puts on chain
type DeploymentType string

const (
	MastercopyDeployment DeploymentType = "MASTERCOPY"
	ProxyDeployment      DeploymentType = "PROXY"
	FactoryDeployment    DeploymentType = "FACTORY"
)

// DeploymentState tracks one deployment attempt: planned -> checked -> submitted -> confirmed | rejected
type DeploymentState string

const (
	StatePlanned   DeploymentState = "PLANNED"
	StateChecked   DeploymentState = "CHECKED"
	StateSubmitted DeploymentState = "SUBMITTED"
	StateConfirmed DeploymentState = "CONFIRMED"
	StateRejected  DeploymentState = "REJECTED"
)

// Deployment represents a single planned CREATE2 deployment
type Deployment struct {
	Type    DeploymentType     `json:"type"`
	Variant domain.MechVariant `json:"variant,omitempty"`
	// Contract names the singleton for factory deployments
	Contract string          `json:"contract,omitempty"`
	State    DeploymentState `json:"state"`

	// Where the contract will land and how that address is derived
	Address      common.Address `json:"address"`
	Factory      common.Address `json:"factory"`
	Salt         common.Hash    `json:"salt"`
	InitCodeHash common.Hash    `json:"initCodeHash"`
	InitCode     []byte         `json:"-"`

	// Mastercopy the proxy delegates to (zero for mastercopy deployments)
	Mastercopy common.Address `json:"mastercopy,omitempty"`

	// RuntimeCode is the exact code expected at Address; empty when the
	// constructor decides it, as for mastercopies.
	RuntimeCode []byte `json:"-"`

	Transaction *Transaction `json:"transaction"`

	// Error is set when the deployment was rejected
	Error error `json:"-"`
}

// Transition moves the deployment to the next state, refusing to leave a final state
func (d *Deployment) Transition(next DeploymentState) error {
	if d.State == StateConfirmed || d.State == StateRejected {
		return fmt.Errorf("deployment at %s is already %s", d.Address.Hex(), d.State)
	}
	d.State = next
	return nil
}

// Reject marks the deployment rejected and returns err for convenient chaining
func (d *Deployment) Reject(err error) error {
	d.State = StateRejected
	d.Error = err
	return err
}

// Name returns a short human label, e.g. "erc721 proxy"
func (d *Deployment) Name() string {
	switch d.Type {
	case MastercopyDeployment:
		return fmt.Sprintf("%s mastercopy", d.Variant)
	case ProxyDeployment:
		return fmt.Sprintf("%s mech", d.Variant)
	default:
		if d.Contract != "" {
			return d.Contract
		}
		return "singleton factory"
	}
}

// Value returns the transaction value, never nil
func (d *Deployment) Value() *big.Int {
	if d.Transaction == nil || d.Transaction.Value == nil {
		return new(big.Int)
	}
	return d.Transaction.Value
}
