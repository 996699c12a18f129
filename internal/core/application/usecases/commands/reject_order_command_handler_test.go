package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRejectHandler(
	t *testing.T,
	factory *MockUoWFactory,
	publisher *MockNotificationPublisher,
) commands.RejectOrderCommandHandler {
	t.Helper()

	return commands.NewRejectOrderCommandHandler(
		factory, testSelector(t), testSettings(), publisher, testLogger(),
	)
}

func TestRejectOrderCommandHandler_Handle_ReassignsToNextAgent(t *testing.T) {
	ctx := t.Context()
	rejector := makeEligibleAgent(t, "rejector")
	next := makeEligibleAgent(t, "next")
	o := makePendingOrder(t)
	require.NoError(t, o.Assign(rejector.ID(), time.Now().Add(-time.Minute)))

	orderRepo := new(MockOrderRepository)
	agentRepo := new(MockAgentRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	publisher := new(MockNotificationPublisher)

	factory.On("Create").Return(uow)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("AgentRepository").Return(agentRepo)

	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	agentRepo.On("DecrementAssignedOrders", ctx, rejector.ID()).Return(nil).Once()
	agentRepo.On("GetAllAvailable", ctx).Return([]*agent.DeliveryAgent{rejector, next}, nil).Once()
	agentRepo.On("IncrementAssignedOrders", ctx, next.ID(), 3).Return(true, nil).Once()
	orderRepo.On("Update", ctx, o).Return(nil).Once()
	publisher.On("PublishOrderEvent", ctx, next.ID(), mock.Anything).Return(nil).Once()
	publisher.On("PublishSellerEvent", ctx, o.SellerID(), mock.Anything).Return(nil).Once()

	cmd, err := commands.NewRejectOrderCommand(o.ID(), rejector.ID(), "too far")
	require.NoError(t, err)

	handler := newRejectHandler(t, factory, publisher)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Assigned, o.Status())
	require.NotNil(t, o.AgentID())
	assert.True(t, o.AgentID().IsEqual(next.ID()))
	assert.Equal(t, order.ResponsePending, o.AgentResponse())
	assert.Equal(t, order.ResponseRejected, o.Assignments()[0].Response())
	assert.Equal(t, 2, o.Attempts())

	agentRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRejectOrderCommandHandler_Handle_ReleasesWithoutSuccessor(t *testing.T) {
	ctx := t.Context()
	rejector := makeEligibleAgent(t, "rejector")
	o := makePendingOrder(t)
	require.NoError(t, o.Assign(rejector.ID(), time.Now().Add(-time.Minute)))

	orderRepo := new(MockOrderRepository)
	agentRepo := new(MockAgentRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	publisher := new(MockNotificationPublisher)

	factory.On("Create").Return(uow)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("AgentRepository").Return(agentRepo)

	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	agentRepo.On("DecrementAssignedOrders", ctx, rejector.ID()).Return(nil).Once()
	// only the rejector is available, and the command excludes them
	agentRepo.On("GetAllAvailable", ctx).Return([]*agent.DeliveryAgent{rejector}, nil).Once()
	orderRepo.On("Update", ctx, o).Return(nil).Once()
	publisher.On("PublishSellerEvent", ctx, o.SellerID(), mock.Anything).Return(nil).Once()

	cmd, err := commands.NewRejectOrderCommand(o.ID(), rejector.ID(), "")
	require.NoError(t, err)

	handler := newRejectHandler(t, factory, publisher)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Pending, o.Status())
	assert.Nil(t, o.AgentID())
	assert.Equal(t, order.ResponseRejected, o.AgentResponse())
	publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectOrderCommandHandler_Handle_AgentMismatch(t *testing.T) {
	ctx := t.Context()
	assigned := makeEligibleAgent(t, "assigned")
	impostor := makeEligibleAgent(t, "impostor")
	o := makePendingOrder(t)
	require.NoError(t, o.Assign(assigned.ID(), time.Now()))

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	factory.On("Create").Return(uow)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	uow.On("OrderRepository").Return(orderRepo)
	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewRejectOrderCommand(o.ID(), impostor.ID(), "")
	require.NoError(t, err)

	handler := newRejectHandler(t, factory, new(MockNotificationPublisher))
	err = handler.Handle(ctx, cmd)

	assert.ErrorIs(t, err, order.ErrAgentMismatch)
	assert.Equal(t, order.ResponsePending, o.AgentResponse())
}
