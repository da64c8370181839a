//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/gnosisguild/mech-go/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		ConfigSet,
		AdapterSet,
		UseCaseSet,
		newApp,
	)
	return nil, nil
}
