package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"
)

// fakeTx запоминает, чем закончилась транзакция. Остальные методы pgx.Tx UnitOfWork не использует.
type fakeTx struct {
	pgx.Tx
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return t.rollbackErr
}

type fakeConn struct {
	tx       *fakeTx
	beginErr error
	opts     []pgx.TxOptions
}

func (c *fakeConn) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, nil //nolint:nilnil
}

func (c *fakeConn) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

func (c *fakeConn) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	return nil
}

func (c *fakeConn) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	c.opts = append(c.opts, opts)
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return c.tx, nil
}

type counterRepo struct {
	db DBTX
}

const counterRepoName RepositoryName = "counter"

type UOWTestSuite struct {
	suite.Suite
	conn *fakeConn
	uow  *UnitOfWork
}

func TestUOWSuite(t *testing.T) {
	suite.Run(t, new(UOWTestSuite))
}

func (s *UOWTestSuite) SetupTest() {
	s.conn = &fakeConn{tx: new(fakeTx)}
	s.uow = NewUnitOfWork(s.conn)
	s.Require().NoError(s.uow.Register(counterRepoName, func(db DBTX) Repository {
		return &counterRepo{db: db}
	}))
}

func (s *UOWTestSuite) TestRegister() {
	err := s.uow.Register(counterRepoName, func(DBTX) Repository { return nil })
	s.ErrorIs(err, ErrRepositoryAlreadyRegistered)
}

func (s *UOWTestSuite) TestGetRepository() {
	repo, err := GetRepositoryAs[*counterRepo](s.uow, counterRepoName)
	s.Require().NoError(err)
	s.Same(s.conn, repo.db)

	_, err = s.uow.GetRepository("missing")
	s.ErrorIs(err, ErrRepositoryNotRegistered)

	_, err = GetRepositoryAs[*UnitOfWork](s.uow, counterRepoName)
	s.ErrorIs(err, ErrInvalidRepositoryType)
}

func (s *UOWTestSuite) TestDoCommits() {
	err := s.uow.Do(s.T().Context(), func(_ context.Context, tx TX) error {
		repo, repoErr := GetAs[*counterRepo](tx, counterRepoName)
		s.Require().NoError(repoErr)
		s.Same(s.conn.tx, repo.db)
		return nil
	})
	s.Require().NoError(err)
	s.True(s.conn.tx.committed)
	s.False(s.conn.tx.rolledBack)
	s.Equal([]pgx.TxOptions{{}}, s.conn.opts)
}

func (s *UOWTestSuite) TestDoRollsBackOnError() {
	fnErr := errors.New("boom")
	err := s.uow.Do(s.T().Context(), func(context.Context, TX) error {
		return fnErr
	})
	s.ErrorIs(err, fnErr)
	s.False(s.conn.tx.committed)
	s.True(s.conn.tx.rolledBack)
}

func (s *UOWTestSuite) TestDoJoinsRollbackError() {
	fnErr := errors.New("boom")
	rollbackErr := errors.New("connection lost")
	s.conn.tx.rollbackErr = rollbackErr

	err := s.uow.Do(s.T().Context(), func(context.Context, TX) error {
		return fnErr
	})
	s.ErrorIs(err, fnErr)
	s.ErrorIs(err, rollbackErr)
}

func (s *UOWTestSuite) TestDoBeginError() {
	s.conn.beginErr = errors.New("pool closed")
	called := false
	err := s.uow.Do(s.T().Context(), func(context.Context, TX) error {
		called = true
		return nil
	})
	s.ErrorIs(err, s.conn.beginErr)
	s.False(called)
}

func (s *UOWTestSuite) TestDoReadOnlyUsesSnapshot() {
	err := s.uow.DoReadOnly(s.T().Context(), func(_ context.Context, tx TX) error {
		_, getErr := tx.Get("missing")
		s.ErrorIs(getErr, ErrRepositoryNotRegistered)
		return nil
	})
	s.Require().NoError(err)
	s.Require().Len(s.conn.opts, 1)
	s.Equal(pgx.RepeatableRead, s.conn.opts[0].IsoLevel)
	s.Equal(pgx.ReadOnly, s.conn.opts[0].AccessMode)
}
