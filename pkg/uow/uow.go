// Package uow выполняет группы вызовов репозиториев внутри одной транзакции pgx.
package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrRepositoryNotRegistered     = errors.New("[uow] repository not registered")
	ErrRepositoryAlreadyRegistered = errors.New("[uow] repository already registered")
	ErrInvalidRepositoryType       = errors.New("[uow] invalid repository type")
)

type RepositoryName string
type Repository any
type RepositoryFactory func(DBTX) Repository

// Conn реализуется *pgxpool.Pool.
type Conn interface {
	DBTX
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// snapshotTxOptions дает читателю один согласованный снимок журнала на весь вызов fn.
var snapshotTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

type UnitOfWork struct {
	conn         Conn
	repositories map[RepositoryName]RepositoryFactory
}

func NewUnitOfWork(conn Conn) *UnitOfWork {
	return &UnitOfWork{
		conn:         conn,
		repositories: make(map[RepositoryName]RepositoryFactory),
	}
}

// Register регистрирует фабрику репозитория под именем name. Если имя занято, возвращает
// ErrRepositoryAlreadyRegistered.
func (u *UnitOfWork) Register(name RepositoryName, factory RepositoryFactory) error {
	if _, ok := u.repositories[name]; ok {
		return ErrRepositoryAlreadyRegistered
	}
	u.repositories[name] = factory
	return nil
}

// Do выполняет fn внутри read-committed транзакции на запись. Транзакция коммитится, если fn
// вернула nil, иначе откатывается.
func (u *UnitOfWork) Do(ctx context.Context, fn func(context.Context, TX) error) error {
	return u.run(ctx, pgx.TxOptions{}, fn)
}

// DoReadOnly выполняет fn внутри repeatable-read транзакции только на чтение.
func (u *UnitOfWork) DoReadOnly(ctx context.Context, fn func(context.Context, TX) error) error {
	return u.run(ctx, snapshotTxOptions, fn)
}

func (u *UnitOfWork) run(ctx context.Context, opts pgx.TxOptions, fn func(context.Context, TX) error) (err error) {
	tx, txErr := u.conn.BeginTx(ctx, opts)
	if txErr != nil {
		return txErr //nolint:wrapcheck
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			err = errors.Join(err, rollbackErr)
		}
	}()

	if fnErr := fn(ctx, NewTransaction(tx, u.repositories)); fnErr != nil {
		return fnErr
	}
	return tx.Commit(ctx) //nolint:wrapcheck
}

// GetRepository собирает репозиторий поверх пула, вне транзакции.
func (u *UnitOfWork) GetRepository(name RepositoryName) (Repository, error) {
	if repoFactory, ok := u.repositories[name]; ok {
		return repoFactory(u.conn), nil
	}
	return nil, ErrRepositoryNotRegistered
}

// GetRepositoryAs возвращает репозиторий с именем name, приведенный к типу T.
func GetRepositoryAs[T any](u UOW, name RepositoryName) (T, error) {
	var res T
	repo, err := u.GetRepository(name)
	if err != nil {
		return res, err //nolint:wrapcheck
	}
	r, ok := repo.(T)
	if !ok {
		return res, ErrInvalidRepositoryType
	}
	return r, nil
}
