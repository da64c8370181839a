package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// InspectRenderer renders mech classification results
type InspectRenderer struct {
	out  io.Writer
	json bool
}

// NewInspectRenderer creates a new inspect renderer
func NewInspectRenderer(out io.Writer, json bool) *InspectRenderer {
	return &InspectRenderer{out: out, json: json}
}

type inspectView struct {
	Target         string          `json:"target"`
	Address        *common.Address `json:"address,omitempty"`
	IsMech         bool            `json:"isMech"`
	Variant        string          `json:"variant,omitempty"`
	Layout         string          `json:"layout,omitempty"`
	Implementation *common.Address `json:"implementation,omitempty"`
	Context        hexutil.Bytes   `json:"context,omitempty"`
	TokenContract  *common.Address `json:"tokenContract,omitempty"`
	TokenID        string          `json:"tokenId,omitempty"`
	ChainID        string          `json:"chainId,omitempty"`
	Salt           string          `json:"salt,omitempty"`
}

func toInspectView(r usecase.InspectResult) inspectView {
	v := inspectView{Target: r.Target, Address: r.Address, IsMech: r.IsMech()}
	if p := r.Parsed; p != nil {
		impl := p.Implementation
		v.Variant = string(p.Variant)
		v.Layout = string(p.Layout)
		v.Implementation = &impl
		v.Context = p.Context
		v.TokenID = p.TokenID
		if p.TokenContract != (common.Address{}) {
			tc := p.TokenContract
			v.TokenContract = &tc
		}
		if p.ChainID != nil {
			v.ChainID = p.ChainID.String()
		}
		if p.Salt != nil {
			v.Salt = hexutil.EncodeBig(p.Salt)
		}
	}
	return v
}

// Render renders one row per target
func (r *InspectRenderer) Render(results []usecase.InspectResult) error {
	views := make([]inspectView, len(results))
	for i, res := range results {
		views[i] = toInspectView(res)
	}
	if r.json {
		return writeJSON(r.out, views)
	}

	t := newTable(table.Row{"TARGET", "MECH", "VARIANT", "MASTERCOPY", "TOKEN", "TOKEN ID"})
	for _, v := range views {
		target := v.Target
		if len(target) > 42 {
			target = target[:18] + "…" + target[len(target)-8:]
		}
		if !v.IsMech {
			t.AppendRow(table.Row{target, color.New(color.FgRed).Sprint("no"), "", "", "", ""})
			continue
		}
		variant := v.Variant
		if variant == "" {
			variant = "unknown (" + v.Layout + ")"
		}
		token := ""
		if v.TokenContract != nil {
			token = v.TokenContract.Hex()
		}
		t.AppendRow(table.Row{
			target,
			color.New(color.FgGreen).Sprint("yes"),
			variant,
			v.Implementation.Hex(),
			token,
			v.TokenID,
		})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}
