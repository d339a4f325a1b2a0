package di

import (
	"context"

	"homeport-backend/application/ports"
	"homeport-backend/application/services"
	domainconfig "homeport-backend/domain/config"
	"homeport-backend/infrastructure/config"
	"homeport-backend/infrastructure/messaging/eventbridge"
	messagingmemory "homeport-backend/infrastructure/messaging/memory"
	dynamopersistence "homeport-backend/infrastructure/persistence/dynamodb"
	persistencememory "homeport-backend/infrastructure/persistence/memory"
	storagememory "homeport-backend/infrastructure/storage/memory"
	"homeport-backend/infrastructure/storage/supabase"
	"homeport-backend/interfaces/http/rest"
	"homeport-backend/interfaces/http/rest/handlers"
	"homeport-backend/pkg/auth"
	pkgerrors "homeport-backend/pkg/errors"
	"homeport-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig builds the domain rules, carrying over the
// operator-tunable draft TTL
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	domainCfg := domainconfig.DefaultDomainConfig()
	domainCfg.DraftReferenceTTL = cfg.DraftReferenceTTL
	return domainCfg
}

// ProvideRecordRepository creates the record repository. Development runs
// on the in-memory implementation so the server starts without any AWS
// credentials.
func ProvideRecordRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.RecordRepository {
	if cfg.IsDevelopment() {
		return persistencememory.NewRecordRepository()
	}
	return dynamopersistence.NewRecordRepository(
		client,
		cfg.RecordsTable,
		cfg.OwnerIndexName,
		logger,
	)
}

// ProvideDraftStore builds the two-tier draft reference store. The session
// tier is always in-process; the durable tier is DynamoDB outside
// development.
func ProvideDraftStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *services.DraftStore {
	session := persistencememory.NewDraftTierStore()

	var durable ports.DraftTierStore
	if cfg.IsDevelopment() {
		durable = persistencememory.NewDraftTierStore()
	} else {
		durable = dynamopersistence.NewDraftTierStore(client, cfg.DraftsTable, cfg.DraftReferenceTTL, logger)
	}

	return services.NewDraftStore(session, durable, logger)
}

// ProvideNotifier creates the downstream notifier
func ProvideNotifier(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.Notifier {
	if cfg.IsDevelopment() {
		return messagingmemory.NewNotifier()
	}
	return eventbridge.NewNotifier(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the metrics sink, nil when disabled. Metrics
// methods are nil-safe so callers never branch.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewMetrics(client, cfg.MetricNamespace, logger)
}

// ProvideAttachmentStore creates the attachment blob store
func ProvideAttachmentStore(cfg *config.Config, logger *zap.Logger) ports.AttachmentStore {
	if cfg.IsDevelopment() || cfg.SupabaseURL == "" {
		return storagememory.NewAttachmentStore()
	}

	client := storage_go.NewClient(cfg.SupabaseURL+"/storage/v1", cfg.SupabaseServiceKey, nil)
	return supabase.NewAttachmentStore(client, cfg.AttachmentBucket, logger)
}

// ProvideAttachmentService creates the attachment service
func ProvideAttachmentService(store ports.AttachmentStore, domainCfg *domainconfig.DomainConfig, metrics *observability.Metrics, logger *zap.Logger) *services.AttachmentService {
	return services.NewAttachmentService(store, domainCfg, metrics, logger)
}

// ProvideIdentityLinker creates the reconciliation service
func ProvideIdentityLinker(
	records ports.RecordRepository,
	drafts *services.DraftStore,
	notifier ports.Notifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.IdentityLinker {
	return services.NewIdentityLinker(records, drafts, notifier, metrics, logger)
}

// ProvideSessionCache creates the edit session registry
func ProvideSessionCache() ports.Cache {
	return NewSessionCache()
}

// ProvideProfileOrchestrator creates the orchestrator
func ProvideProfileOrchestrator(
	records ports.RecordRepository,
	drafts *services.DraftStore,
	linker *services.IdentityLinker,
	notifier ports.Notifier,
	sessions ports.Cache,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.ProfileOrchestrator {
	return services.NewProfileOrchestrator(records, drafts, linker, notifier, sessions, domainCfg, metrics, logger)
}

// ProvideJWTValidator creates the bearer token validator
func ProvideJWTValidator(cfg *config.Config) *auth.JWTValidator {
	secret := cfg.JWTSecret
	if secret == "" && cfg.IsDevelopment() {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		Secret: secret,
		Issuer: cfg.JWTIssuer,
	})
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, !cfg.IsProduction())
}

// ProvideIntakeHandler creates the intake handler
func ProvideIntakeHandler(orchestrator *services.ProfileOrchestrator, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *handlers.IntakeHandler {
	return handlers.NewIntakeHandler(orchestrator, errHandler, logger)
}

// ProvideProfileHandler creates the profile handler
func ProvideProfileHandler(orchestrator *services.ProfileOrchestrator, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *handlers.ProfileHandler {
	return handlers.NewProfileHandler(orchestrator, errHandler, logger)
}

// ProvideAttachmentHandler creates the attachment handler
func ProvideAttachmentHandler(attachments *services.AttachmentService, domainCfg *domainconfig.DomainConfig, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *handlers.AttachmentHandler {
	// Multipart framing overhead on top of the payload ceiling
	maxBody := domainCfg.MaxAttachmentBytes + 64*1024
	return handlers.NewAttachmentHandler(attachments, maxBody, errHandler, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	intake *handlers.IntakeHandler,
	profile *handlers.ProfileHandler,
	attachments *handlers.AttachmentHandler,
	validator *auth.JWTValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(intake, profile, attachments, validator, cfg.EnableCORS, logger)
}
