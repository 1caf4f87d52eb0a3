package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/transport/events/mocks"
)

type DispatcherTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockBroker *mocks.MockBroker
	dispatcher *Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (s *DispatcherTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockBroker = mocks.NewMockBroker(s.ctrl)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.dispatcher = New(s.mockBroker, logger).
		SetWorkers(2).
		SetRetryDelay(time.Millisecond).
		SetDrainTimeout(time.Second)
}

func (s *DispatcherTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// run запускает диспетчер и возвращает функцию остановки, дожидающуюся выхода из Run.
func (s *DispatcherTestSuite) run() func() {
	ctx, cancel := context.WithCancel(s.T().Context())
	done := make(chan error, 1)
	go func() {
		done <- s.dispatcher.Run(ctx)
	}()
	return func() {
		cancel()
		select {
		case err := <-done:
			s.Require().NoError(err)
		case <-time.After(5 * time.Second):
			s.Fail("dispatcher did not stop")
		}
	}
}

func (s *DispatcherTestSuite) TestNotifyPublishes() {
	event := domain.NewLedgerEvent(domain.EventExpenseCreated, 1, domain.WithGroup(3))
	published := make(chan domain.LedgerEvent, 1)

	s.mockBroker.EXPECT().Publish(gomock.Any(), event).
		DoAndReturn(func(_ context.Context, e domain.LedgerEvent) error {
			published <- e
			return nil
		})

	stop := s.run()
	defer stop()

	s.dispatcher.Notify(event)

	select {
	case got := <-published:
		s.Equal(event.ID, got.ID)
		s.Equal(int64(3), got.GroupID)
	case <-time.After(5 * time.Second):
		s.Fail("event was not published")
	}
}

func (s *DispatcherTestSuite) TestRetriesFailedPublish() {
	event := domain.NewLedgerEvent(domain.EventGroupDeleted, 2)
	published := make(chan struct{})

	// Первая попытка падает, вторая проходит.
	gomock.InOrder(
		s.mockBroker.EXPECT().Publish(gomock.Any(), event).Return(errors.New("connection reset")),
		s.mockBroker.EXPECT().Publish(gomock.Any(), event).
			DoAndReturn(func(context.Context, domain.LedgerEvent) error {
				close(published)
				return nil
			}),
	)

	stop := s.run()
	defer stop()

	s.dispatcher.Notify(event)

	select {
	case <-published:
	case <-time.After(5 * time.Second):
		s.Fail("event was not retried")
	}
}

func (s *DispatcherTestSuite) TestPublishGivesUp() {
	event := domain.NewLedgerEvent(domain.EventUserDeleted, 4)
	brokerErr := errors.New("broker is down")
	s.dispatcher.SetMaxAttempts(2)

	s.mockBroker.EXPECT().Publish(gomock.Any(), event).Return(brokerErr).Times(2)

	err := s.dispatcher.publish(s.T().Context(), event)

	var publishErr *PublishError
	s.Require().ErrorAs(err, &publishErr)
	s.Equal(uint(2), publishErr.Attempts)
	s.Require().ErrorIs(err, brokerErr)
}

func (s *DispatcherTestSuite) TestNotifyDropsWhenQueueIsFull() {
	s.dispatcher.SetQueueSize(1)
	s.mockBroker.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	s.dispatcher.Notify(
		domain.NewLedgerEvent(domain.EventExpenseCreated, 1),
		domain.NewLedgerEvent(domain.EventExpenseCreated, 2),
	)

	s.Len(s.dispatcher.queue, 1)
}

func (s *DispatcherTestSuite) TestDrainsQueueOnStop() {
	events := []domain.LedgerEvent{
		domain.NewLedgerEvent(domain.EventExpenseUpdated, 1),
		domain.NewLedgerEvent(domain.EventExpenseUpdated, 2),
		domain.NewLedgerEvent(domain.EventExpenseUpdated, 3),
	}
	for _, event := range events {
		s.mockBroker.EXPECT().Publish(gomock.Any(), event).Return(nil)
	}
	s.dispatcher.Notify(events...)

	// Контекст отменен до запуска: все события доставляются при остановке.
	ctx, cancel := context.WithCancel(s.T().Context())
	cancel()
	s.Require().NoError(s.dispatcher.Run(ctx))
	s.Empty(s.dispatcher.queue)
}

func (s *DispatcherTestSuite) TestRunOnlyOnce() {
	ctx, cancel := context.WithCancel(s.T().Context())
	cancel()
	s.Require().NoError(s.dispatcher.Run(ctx))
	s.Require().Error(s.dispatcher.Run(ctx))
}
