package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() services.DispatchSettings {
	return services.DefaultDispatchSettings()
}

func testSelector(t *testing.T) services.AgentSelector {
	t.Helper()

	selector, err := services.NewAgentSelector(testSettings())
	require.NoError(t, err)
	return selector
}

func makePendingOrder(t *testing.T) *order.Order {
	t.Helper()

	payment, err := order.NewPayment(order.PaymentCard, 450, order.PaymentPaid)
	require.NoError(t, err)
	loc, err := kernel.NewGeoPoint(12.9716, 77.5946)
	require.NoError(t, err)
	addr, err := order.NewAddress("42 MG Road, Bangalore", &loc)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), payment, addr, 40, true, testNow)
	require.NoError(t, err)
	return o
}

func makeAssignedOrder(t *testing.T, agentID kernel.UUID) *order.Order {
	t.Helper()

	o := makePendingOrder(t)
	require.NoError(t, o.Assign(agentID, testNow))
	return o
}

func makeEligibleAgent(t *testing.T, name string) *agent.DeliveryAgent {
	t.Helper()

	a, err := agent.NewDeliveryAgent(kernel.NewUUID(), name)
	require.NoError(t, err)
	a.Approve()
	a.Activate(true)
	a.SetAvailable(true)
	return a
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetPendingUnassigned(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAwaitingResponse(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetActiveByAgent(ctx context.Context, agentID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountActiveDeliveries(ctx context.Context, agentID kernel.UUID) (int, error) {
	args := m.Called(ctx, agentID)
	return args.Int(0), args.Error(1)
}

type MockAgentRepository struct{ mock.Mock }

func (m *MockAgentRepository) Add(ctx context.Context, a *agent.DeliveryAgent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) Update(ctx context.Context, a *agent.DeliveryAgent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) Get(ctx context.Context, id kernel.UUID) (*agent.DeliveryAgent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.DeliveryAgent), args.Error(1)
}

func (m *MockAgentRepository) GetAllAvailable(ctx context.Context) ([]*agent.DeliveryAgent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*agent.DeliveryAgent), args.Error(1)
}

func (m *MockAgentRepository) IncrementAssignedOrders(
	ctx context.Context, agentID kernel.UUID, maxConcurrent int,
) (bool, error) {
	args := m.Called(ctx, agentID, maxConcurrent)
	return args.Bool(0), args.Error(1)
}

func (m *MockAgentRepository) DecrementAssignedOrders(ctx context.Context, agentID kernel.UUID) error {
	args := m.Called(ctx, agentID)
	return args.Error(0)
}

func (m *MockAgentRepository) MarkDelivered(ctx context.Context, agentID kernel.UUID) error {
	args := m.Called(ctx, agentID)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) AgentRepository() ports.AgentRepository {
	args := m.Called()
	return args.Get(0).(ports.AgentRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockNotificationPublisher struct{ mock.Mock }

func (m *MockNotificationPublisher) PublishOrderEvent(
	ctx context.Context, agentID kernel.UUID, event ports.OrderEvent,
) error {
	args := m.Called(ctx, agentID, event)
	return args.Error(0)
}

func (m *MockNotificationPublisher) PublishSellerEvent(
	ctx context.Context, sellerID kernel.UUID, event ports.OrderEvent,
) error {
	args := m.Called(ctx, sellerID, event)
	return args.Error(0)
}

func (m *MockNotificationPublisher) PublishAdminEvent(ctx context.Context, event ports.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, point kernel.GeoPoint) (string, error) {
	args := m.Called(ctx, point)
	return args.String(0), args.Error(1)
}

func (m *MockGeocoder) PlaceDetails(ctx context.Context, placeID string) (string, kernel.GeoPoint, error) {
	args := m.Called(ctx, placeID)
	return args.String(0), args.Get(1).(kernel.GeoPoint), args.Error(2)
}

type MockCommissionRecorder struct{ mock.Mock }

func (m *MockCommissionRecorder) RecordDeliveryEarning(
	ctx context.Context, agentID kernel.UUID, orderID kernel.UUID, amount float64,
) error {
	args := m.Called(ctx, agentID, orderID, amount)
	return args.Error(0)
}
