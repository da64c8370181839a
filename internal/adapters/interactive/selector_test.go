package interactive

import (
	"context"
	"testing"

	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectVariant(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{})
	var shown []string
	s.run = func(p promptui.Select) (int, error) {
		shown = p.Items.([]string)
		return 2, nil
	}

	v, err := s.SelectVariant(context.Background(), domain.AllVariants, "Variant")
	require.NoError(t, err)
	assert.Equal(t, domain.ERC1155Threshold, v)
	require.Len(t, shown, len(domain.AllVariants))
	assert.Contains(t, shown[5], "zodiac")
	assert.Contains(t, shown[5], "Zodiac modules")
}

func TestSelectVariant_SingleOptionSkipsPrompt(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})
	s.run = func(promptui.Select) (int, error) {
		t.Fatal("prompt must not run")
		return 0, nil
	}

	v, err := s.SelectVariant(context.Background(), []domain.MechVariant{domain.ZodiacModuleBound}, "Variant")
	require.NoError(t, err)
	assert.Equal(t, domain.ZodiacModuleBound, v)
}

func TestSelectVariant_NonInteractive(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})
	_, err := s.SelectVariant(context.Background(), domain.AllVariants, "Variant")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSelectVariant_Cancelled(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{})
	s.run = func(promptui.Select) (int, error) { return 0, promptui.ErrInterrupt }

	_, err := s.SelectVariant(context.Background(), domain.AllVariants, "Variant")
	assert.ErrorIs(t, err, promptui.ErrInterrupt)
}

func TestFuzzySearch(t *testing.T) {
	items := []string{"erc721 (token holder)", "erc1155-threshold (balance)", "zodiac (modules)"}
	search := createFuzzySearchFunc(items)

	assert.True(t, search("", 0))
	assert.True(t, search("THRESH", 1))
	assert.True(t, search("zdc", 2))
	assert.False(t, search("zodiac", 0))
}
