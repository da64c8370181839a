package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/derive"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/introspect"
	"github.com/samber/lo"
)

// InspectMechsParams contains parameters for inspecting addresses or bytecode
type InspectMechsParams struct {
	// Targets are addresses to fetch code from or raw 0x bytecode
	Targets     []string
	Concurrency int
}

// InspectResult is the verdict for one target
type InspectResult struct {
	Target  string
	Address *common.Address
	Parsed  *domain.ParsedBytecode
}

// IsMech reports whether the target is a mech
func (r InspectResult) IsMech() bool {
	return r.Parsed != nil
}

// InspectMechs recognizes mechs among addresses and bytecode blobs
type InspectMechs struct {
	deriver *derive.Deriver
	client  ChainClient
}

// NewInspectMechs creates a new InspectMechs use case
func NewInspectMechs(deriver *derive.Deriver, client ChainClient) *InspectMechs {
	return &InspectMechs{
		deriver: deriver,
		client:  client,
	}
}

// Run executes the use case. Results keep the order of the targets.
func (uc *InspectMechs) Run(ctx context.Context, params InspectMechsParams) ([]InspectResult, error) {
	known, err := uc.deriver.KnownMastercopies()
	if err != nil {
		return nil, fmt.Errorf("failed to derive mastercopy addresses: %w", err)
	}
	in := introspect.NewIntrospector(known)

	results := make([]InspectResult, len(params.Targets))
	var addresses []common.Address
	for i, target := range params.Targets {
		results[i].Target = target
		if addr, err := abicodec.ParseAddress(target); err == nil {
			results[i].Address = &addr
			addresses = append(addresses, addr)
			continue
		}
		code, err := abicodec.ParseHex(target)
		if err != nil {
			return nil, domain.InvalidArgument("%q is neither an address nor bytecode", target)
		}
		if parsed, ok := in.Parse(code); ok {
			results[i].Parsed = parsed
		}
	}

	if len(addresses) == 0 {
		return results, nil
	}

	found, err := in.Classify(ctx, uc.client, lo.Uniq(addresses), params.Concurrency)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].Address != nil {
			results[i].Parsed = found[*results[i].Address]
		}
	}
	return results, nil
}
