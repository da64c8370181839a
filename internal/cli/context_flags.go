package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/spf13/cobra"
)

// contextFlags collects the per-variant mech parameters
type contextFlags struct {
	token           string
	tokenID         string
	salt            string
	tokenIDs        []string
	minBalances     []string
	minTotalBalance string
	chainID         string
	registry        string
	modules         []string
}

func (f *contextFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.token, "token", "", "Token contract (erc721, erc1155, threshold, tokenbound)")
	fl.StringVar(&f.tokenID, "token-id", "", "Token ID, decimal or 0x hex")
	fl.StringVar(&f.salt, "salt", "", "Deployment salt, bytes32 hex or decimal (default 0)")
	fl.StringSliceVar(&f.tokenIDs, "token-ids", nil, "Token IDs for erc1155-threshold")
	fl.StringSliceVar(&f.minBalances, "min-balances", nil, "Minimum balance per token ID for erc1155-threshold")
	fl.StringVar(&f.minTotalBalance, "min-total-balance", "", "Minimum total balance for erc1155-threshold")
	fl.StringVar(&f.chainID, "chain-id", "", "Chain of the bound token for tokenbound mechs")
	fl.StringVar(&f.registry, "registry", "", "ERC-6551 registry for tokenbound mechs (default canonical)")
	fl.StringSliceVar(&f.modules, "modules", nil, "Enabled modules for zodiac mechs")
}

// build turns the flags into the deploy context of variant
func (f *contextFlags) build(variant domain.MechVariant) (domain.DeployContext, error) {
	salt, err := abicodec.ParseSalt(f.salt)
	if err != nil {
		return nil, err
	}

	switch variant {
	case domain.ERC721Bound, domain.ERC1155Bound:
		token, err := requiredAddress("--token", f.token)
		if err != nil {
			return nil, err
		}
		tokenID, err := requiredUint("--token-id", f.tokenID)
		if err != nil {
			return nil, err
		}
		if variant == domain.ERC721Bound {
			return domain.ERC721BoundContext{Token: token, TokenID: tokenID, Salt: salt}, nil
		}
		return domain.ERC1155BoundContext{Token: token, TokenID: tokenID, Salt: salt}, nil

	case domain.ERC1155Threshold:
		token, err := requiredAddress("--token", f.token)
		if err != nil {
			return nil, err
		}
		ids, err := abicodec.ParseUint256List(f.tokenIDs)
		if err != nil {
			return nil, fmt.Errorf("--token-ids: %w", err)
		}
		balances, err := abicodec.ParseUint256List(f.minBalances)
		if err != nil {
			return nil, fmt.Errorf("--min-balances: %w", err)
		}
		total, err := requiredUint("--min-total-balance", f.minTotalBalance)
		if err != nil {
			return nil, err
		}
		return domain.ERC1155ThresholdContext{
			Token:           token,
			TokenIDs:        ids,
			MinBalances:     balances,
			MinTotalBalance: total,
			Salt:            salt,
		}, nil

	case domain.ERC721Tokenbound, domain.ERC1155Tokenbound:
		token, err := requiredAddress("--token", f.token)
		if err != nil {
			return nil, err
		}
		tokenID, err := requiredUint("--token-id", f.tokenID)
		if err != nil {
			return nil, err
		}
		chainID, err := requiredUint("--chain-id", f.chainID)
		if err != nil {
			return nil, err
		}
		var registry common.Address
		if f.registry != "" {
			if registry, err = abicodec.ParseAddress(f.registry); err != nil {
				return nil, fmt.Errorf("--registry: %w", err)
			}
		}
		return domain.TokenboundContext{
			Kind:     variant,
			ChainID:  chainID,
			Token:    token,
			TokenID:  tokenID,
			Salt:     salt,
			Registry: registry,
		}, nil

	case domain.ZodiacModuleBound:
		modules, err := abicodec.ParseAddresses(f.modules)
		if err != nil {
			return nil, fmt.Errorf("--modules: %w", err)
		}
		return domain.ZodiacContext{Modules: modules, Salt: salt}, nil
	}

	return nil, domain.InvalidArgument("unknown mech variant %q", variant)
}

func requiredAddress(flag, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, domain.InvalidArgument("%s is required", flag)
	}
	addr, err := abicodec.ParseAddress(value)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", flag, err)
	}
	return addr, nil
}

func requiredUint(flag, value string) (*big.Int, error) {
	if value == "" {
		return nil, domain.InvalidArgument("%s is required", flag)
	}
	n, err := abicodec.ParseUint256(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flag, err)
	}
	return n, nil
}

// resolveVariant parses the variant argument or, without one, prompts for it
func resolveVariant(cmd *cobra.Command, selector usecase.VariantSelector, args []string) (domain.MechVariant, error) {
	if len(args) == 1 {
		return domain.ParseMechVariant(args[0])
	}
	return selector.SelectVariant(cmd.Context(), domain.AllVariants, "Select mech variant")
}

// parseVariants parses variant arguments; none means all
func parseVariants(args []string) ([]domain.MechVariant, error) {
	variants := make([]domain.MechVariant, 0, len(args))
	for _, arg := range args {
		v, err := domain.ParseMechVariant(arg)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func variantNames() string {
	names := make([]string, len(domain.AllVariants))
	for i, v := range domain.AllVariants {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
