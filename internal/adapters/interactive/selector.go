package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
)

var variantDescriptions = map[domain.MechVariant]string{
	domain.ERC721Bound:       "operated by the holder of one ERC-721 token",
	domain.ERC1155Bound:      "operated by a holder of one ERC-1155 token ID",
	domain.ERC1155Threshold:  "operated by whoever holds enough ERC-1155 balance",
	domain.ERC721Tokenbound:  "ERC-6551 account of an ERC-721 token",
	domain.ERC1155Tokenbound: "ERC-6551 account of an ERC-1155 token",
	domain.ZodiacModuleBound: "operated by its enabled Zodiac modules",
}

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
	// run shows the prompt and returns the chosen index; tests replace it
	run func(promptui.Select) (int, error)
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{
		config: cfg,
		run: func(p promptui.Select) (int, error) {
			index, _, err := p.Run()
			return index, err
		},
	}
}

// SelectVariant asks the user to pick one of variants
func (s *SelectorAdapter) SelectVariant(ctx context.Context, variants []domain.MechVariant, prompt string) (domain.MechVariant, error) {
	if len(variants) == 0 {
		return "", fmt.Errorf("no variants provided for selection")
	}

	// If only one option, return it directly
	if len(variants) == 1 {
		return variants[0], nil
	}

	// In non-interactive mode, we can't select
	if s.config.NonInteractive || s.config.JSON {
		return "", domain.InvalidArgument("a mech variant is required in non-interactive mode")
	}

	options := formatVariantOptions(variants)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	index, err := s.run(promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: templates,
		Size:      len(options),
		Searcher:  createFuzzySearchFunc(options),
	})
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}

	return variants[index], nil
}

// formatVariantOptions creates display strings for variant selection
func formatVariantOptions(variants []domain.MechVariant) []string {
	options := make([]string, len(variants))
	for i, v := range variants {
		name := color.New(color.FgWhite, color.Bold).Sprint(string(v))
		if desc, ok := variantDescriptions[v]; ok {
			options[i] = fmt.Sprintf("%s (%s)", name, color.New(color.FgBlue).Sprint(desc))
		} else {
			options[i] = name
		}
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		// First try simple substring match
		if strings.Contains(item, input) {
			return true
		}

		// Then try fuzzy match
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.VariantSelector = (*SelectorAdapter)(nil)
