package cmd

import (
	"log/slog"
	"time"

	"dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/geo"
	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/earningsrepo"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot wires the adapters into the application handlers.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	settings   services.DispatchSettings
	selector   services.AgentSelector
	geocoder   *geo.GoogleGeocoder
	publisher  *notify.MqttPublisher
	commission *earningsrepo.GormEarningsRecorder
	logger     *slog.Logger
}

// NewCompositionRoot builds the object graph from configuration and the
// already-opened database connection.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	settings, err := services.NewDispatchSettings(
		time.Duration(config.OrderRetryCooldownSeconds)*time.Second,
		time.Duration(config.AgentRetryCooldownSeconds)*time.Second,
		time.Duration(config.AssignmentTimeoutSeconds)*time.Second,
		config.MaxRetryAttempts,
		config.MaxConcurrentDeliveries,
	)
	if err != nil {
		return nil, err
	}

	selector, err := services.NewAgentSelector(settings)
	if err != nil {
		return nil, err
	}

	geocoder, err := geo.NewGoogleGeocoder(config.GeocodingAPIKey)
	if err != nil {
		return nil, err
	}

	publisher, err := notify.NewMqttPublisher(config.MqttBrokerURL, config.MqttClientID)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		settings:   settings,
		selector:   selector,
		geocoder:   geocoder,
		publisher:  publisher,
		commission: earningsrepo.NewGormEarningsRecorder(gormDB),
		logger:     logger,
	}, nil
}

// Close releases the external connections held by the root.
func (c *CompositionRoot) Close() {
	c.publisher.Close()
}

func (c *CompositionRoot) uoW() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateRetryPendingOrdersCommandHandler() commands.RetryPendingOrdersCommandHandler {
	return commands.NewRetryPendingOrdersCommandHandler(
		c.uoW(), c.selector, c.settings, c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateCheckTimeoutsCommandHandler() commands.CheckTimeoutsCommandHandler {
	return commands.NewCheckTimeoutsCommandHandler(
		c.uoW(), c.selector, c.settings, c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(
		c.uoW(), c.geocoder, c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() commands.RejectOrderCommandHandler {
	return commands.NewRejectOrderCommandHandler(
		c.uoW(), c.selector, c.settings, c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateUpdateDeliveryStatusCommandHandler() commands.UpdateDeliveryStatusCommandHandler {
	return commands.NewUpdateDeliveryStatusCommandHandler(
		c.uoW(), c.commission, c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(
		c.uoW(), c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateGenerateOtpCommandHandler() commands.GenerateOtpCommandHandler {
	return commands.NewGenerateOtpCommandHandler(c.orderUoW(), c.logger)
}

func (c *CompositionRoot) CreateVerifyOtpCommandHandler() commands.VerifyOtpCommandHandler {
	return commands.NewVerifyOtpCommandHandler(c.orderUoW(), c.logger)
}

func (c *CompositionRoot) CreateGetEscalatedOrdersQueryHandler() queries.GetEscalatedOrdersQueryHandler {
	return queries.NewGetEscalatedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAgentActiveOrdersQueryHandler() queries.GetAgentActiveOrdersQueryHandler {
	return queries.NewGetAgentActiveOrdersQueryHandler(c.gormDB)
}

// CreateHTTPServer assembles the echo-facing server over all handlers.
func (c *CompositionRoot) CreateHTTPServer() *http.Server {
	return http.NewServer(
		c.CreateAcceptOrderCommandHandler(),
		c.CreateRejectOrderCommandHandler(),
		c.CreateUpdateDeliveryStatusCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateGenerateOtpCommandHandler(),
		c.CreateVerifyOtpCommandHandler(),
		c.CreateRetryPendingOrdersCommandHandler(),
		c.CreateCheckTimeoutsCommandHandler(),
		c.CreateGetEscalatedOrdersQueryHandler(),
		c.CreateGetAgentActiveOrdersQueryHandler(),
	)
}

// CreateJobManager assembles the cron jobs over the batch handlers.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateRetryPendingOrdersCommandHandler(),
		c.CreateCheckTimeoutsCommandHandler(),
		c.logger,
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
