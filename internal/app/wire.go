//go:build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/config"
)

// InitializeEngine wires an Engine from configuration.
func InitializeEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Engine, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
