package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/gnosisguild/mech-go/internal/domain/models"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// DeploymentRenderer renders predicted and executed deployments
type DeploymentRenderer struct {
	out  io.Writer
	json bool
}

// NewDeploymentRenderer creates a new deployment renderer
func NewDeploymentRenderer(out io.Writer, json bool) *DeploymentRenderer {
	return &DeploymentRenderer{out: out, json: json}
}

type deploymentView struct {
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Variant         string          `json:"variant,omitempty"`
	State           string          `json:"state"`
	Address         common.Address  `json:"address"`
	Factory         common.Address  `json:"factory"`
	Salt            common.Hash     `json:"salt"`
	InitCodeHash    common.Hash     `json:"initCodeHash"`
	InitCode        hexutil.Bytes   `json:"initCode"`
	Mastercopy      *common.Address `json:"mastercopy,omitempty"`
	Calldata        hexutil.Bytes   `json:"calldata,omitempty"`
	TxHash          *common.Hash    `json:"txHash,omitempty"`
	BlockNumber     uint64          `json:"blockNumber,omitempty"`
	AlreadyDeployed bool            `json:"alreadyDeployed"`
}

func toView(d *models.Deployment, alreadyDeployed bool) deploymentView {
	v := deploymentView{
		Name:            d.Name(),
		Type:            string(d.Type),
		Variant:         string(d.Variant),
		State:           string(d.State),
		Address:         d.Address,
		Factory:         d.Factory,
		Salt:            d.Salt,
		InitCodeHash:    d.InitCodeHash,
		InitCode:        d.InitCode,
		AlreadyDeployed: alreadyDeployed,
	}
	if d.Mastercopy != (common.Address{}) {
		mc := d.Mastercopy
		v.Mastercopy = &mc
	}
	if d.Transaction != nil {
		v.Calldata = d.Transaction.Data
		if d.Transaction.Hash != (common.Hash{}) {
			h := d.Transaction.Hash
			v.TxHash = &h
			v.BlockNumber = d.Transaction.BlockNumber
		}
	}
	return v
}

// RenderPrediction renders where a single deployment will land
func (r *DeploymentRenderer) RenderPrediction(d *models.Deployment) error {
	if r.json {
		return writeJSON(r.out, toView(d, false))
	}

	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "%s\n", title(d.Name()))
	rows := [][2]string{
		{"Address", color.New(color.FgGreen, color.Bold).Sprint(d.Address.Hex())},
	}
	if d.Mastercopy != (common.Address{}) {
		rows = append(rows, [2]string{"Mastercopy", d.Mastercopy.Hex()})
	}
	rows = append(rows,
		[2]string{"Factory", d.Factory.Hex()},
		[2]string{"Salt", d.Salt.Hex()},
		[2]string{"Init code hash", d.InitCodeHash.Hex()},
	)
	fmt.Fprintln(r.out, keyValues(rows))
	return nil
}

// RenderPredictions renders a table of predicted singleton addresses
func (r *DeploymentRenderer) RenderPredictions(ds []*models.Deployment) error {
	if r.json {
		views := make([]deploymentView, len(ds))
		for i, d := range ds {
			views[i] = toView(d, false)
		}
		return writeJSON(r.out, views)
	}

	t := newTable(table.Row{"CONTRACT", "ADDRESS", "INIT CODE HASH"})
	for _, d := range ds {
		t.AppendRow(table.Row{d.Name(), d.Address.Hex(), d.InitCodeHash.Hex()})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderDeployResult renders the outcome of one deployment
func (r *DeploymentRenderer) RenderDeployResult(result *usecase.DeployResult) error {
	return r.RenderDeployResults([]*usecase.DeployResult{result})
}

// RenderDeployResults renders the outcome of several deployments
func (r *DeploymentRenderer) RenderDeployResults(results []*usecase.DeployResult) error {
	if r.json {
		views := make([]deploymentView, len(results))
		for i, res := range results {
			views[i] = toView(res.Deployment, res.AlreadyDeployed)
		}
		if len(views) == 1 {
			return writeJSON(r.out, views[0])
		}
		return writeJSON(r.out, views)
	}

	for _, res := range results {
		d := res.Deployment
		switch {
		case res.AlreadyDeployed:
			fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s already deployed at %s", d.Name(), d.Address.Hex())))
		case d.State == models.StateConfirmed:
			fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s deployed at %s", d.Name(), d.Address.Hex())))
			if d.Transaction != nil {
				fmt.Fprintln(r.out, keyValues([][2]string{
					{"Transaction", d.Transaction.Hash.Hex()},
					{"Block", fmt.Sprint(d.Transaction.BlockNumber)},
					{"Gas used", fmt.Sprint(d.Transaction.GasUsed)},
				}))
			}
		case d.State == models.StateChecked:
			fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("dry run: %s would be deployed at %s", d.Name(), d.Address.Hex())))
			if d.Transaction != nil && d.Transaction.To != nil {
				fmt.Fprintln(r.out, keyValues([][2]string{
					{"To", d.Transaction.To.Hex()},
					{"Value", d.Value().String()},
					{"Data", hexutil.Encode(d.Transaction.Data)},
				}))
			}
		default:
			fmt.Fprintln(r.out, FormatError(fmt.Sprintf("%s is %s", d.Name(), d.State)))
		}
	}
	return nil
}

// RenderBootstrap renders the ERC-2470 bootstrap outcome
func (r *DeploymentRenderer) RenderBootstrap(result *usecase.BootstrapSingletonFactoryResult) error {
	if r.json {
		type bootstrapView struct {
			deploymentView
			FundingTx *common.Hash `json:"fundingTx,omitempty"`
		}
		v := bootstrapView{deploymentView: toView(result.Deployment, result.AlreadyDeployed)}
		if result.Funding != nil {
			h := result.Funding.Hash
			v.FundingTx = &h
		}
		return writeJSON(r.out, v)
	}

	if result.Funding != nil {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("funded deployer with %s wei (tx %s)", result.Funding.Value, result.Funding.Hash.Hex())))
	}
	return r.RenderDeployResult(&usecase.DeployResult{
		Deployment:      result.Deployment,
		AlreadyDeployed: result.AlreadyDeployed,
	})
}
