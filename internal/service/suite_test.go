package service

import (
	"context"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/internal/service/mocks"
	"github.com/fsdevblog/splitledger/pkg/uow"
	uowmocks "github.com/fsdevblog/splitledger/pkg/uow/mocks"
)

// serviceSuite собирает общие моки для тестов сервисного слоя.
type serviceSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockTX          *uowmocks.MockTX
	mockUserRepo    *mocks.MockUserRepository
	mockGroupRepo   *mocks.MockGroupRepository
	mockExpenseRepo *mocks.MockExpenseRepository
	mockNotifier    *mocks.MockEventNotifier
}

func (s *serviceSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockGroupRepo = mocks.NewMockGroupRepository(s.mockCtrl)
	s.mockExpenseRepo = mocks.NewMockExpenseRepository(s.mockCtrl)
	s.mockNotifier = mocks.NewMockEventNotifier(s.mockCtrl)

	// Мок получения репозиториев из uow. Выполняется в инициализации сервисов.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.GroupRepoName)).
		Return(s.mockGroupRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.ExpenseRepoName)).
		Return(s.mockExpenseRepo, nil).AnyTimes()

	// Репозитории внутри транзакции.
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.GroupRepoName)).
		Return(s.mockGroupRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ExpenseRepoName)).
		Return(s.mockExpenseRepo, nil).AnyTimes()

	// Транзакции просто выполняют переданную функцию.
	runTx := func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
		return fn(ctx, s.mockTX)
	}
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(runTx).AnyTimes()
	s.mockUOW.EXPECT().DoReadOnly(gomock.Any(), gomock.Any()).DoAndReturn(runTx).AnyTimes()
}

func (s *serviceSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}
