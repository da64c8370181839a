package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out  io.Writer
	json bool
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, json bool) *NetworksRenderer {
	return &NetworksRenderer{
		out:  out,
		json: json,
	}
}

// RenderNetworksList renders the configured networks and their support status
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if r.json {
		type networkView struct {
			Name      string `json:"name"`
			ChainID   uint64 `json:"chainId,omitempty"`
			Supported bool   `json:"supported"`
			Error     string `json:"error,omitempty"`
		}
		views := make([]networkView, len(result.Networks))
		for i, n := range result.Networks {
			views[i] = networkView{Name: n.Name, ChainID: n.ChainID, Supported: n.Supported}
			if n.Error != nil {
				views[i].Error = n.Error.Error()
			}
		}
		return writeJSON(r.out, views)
	}

	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in foundry.toml [rpc_endpoints]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := newTable(table.Row{"NETWORK", "CHAIN ID", "MECH"})
	for _, network := range result.Networks {
		switch {
		case network.Error != nil:
			t.AppendRow(table.Row{"❌ " + network.Name, "", color.New(color.FgRed).Sprintf("error: %v", network.Error)})
		case network.Supported:
			t.AppendRow(table.Row{"✅ " + network.Name, network.ChainID, color.New(color.FgGreen).Sprint("supported")})
		default:
			t.AppendRow(table.Row{"⚠️  " + network.Name, network.ChainID, color.New(color.FgYellow).Sprint("not supported")})
		}
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}
