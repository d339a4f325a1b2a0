//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"homeport-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideDomainConfig,
	ProvideRecordRepository,
	ProvideDraftStore,
	ProvideNotifier,
	ProvideMetrics,
	ProvideAttachmentStore,
	ProvideAttachmentService,
	ProvideIdentityLinker,
	ProvideSessionCache,
	ProvideProfileOrchestrator,
	ProvideJWTValidator,
	ProvideErrorHandler,
	ProvideIntakeHandler,
	ProvideProfileHandler,
	ProvideAttachmentHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
