package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/pkg/uow"
)

const userColumns = `id, created_at, updated_at, name, email`

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser создает юзера. Если email занят, возвращает domain.ErrDuplicateKey.
func (u *UserRepository) CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx,
		`INSERT INTO users (name, email) VALUES ($1, $2) RETURNING `+userColumns,
		args.Name, args.Email,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user with email `%s`", args.Email)
	}
	return user, nil
}

func (u *UserRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "getting user with id %d", id)
	}
	return user, nil
}

// ListUsers возвращает юзеров страницы, упорядоченных по id.
func (u *UserRepository) ListUsers(ctx context.Context, page repoargs.Page) ([]domain.User, error) {
	offset, limit, boundsErr := pageBounds(page)
	if boundsErr != nil {
		return nil, convertErr(boundsErr, "listing users")
	}

	rows, err := u.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, convertErr(err, "listing users")
	}
	users, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		user, scanErr := scanUser(row)
		if scanErr != nil {
			return domain.User{}, scanErr
		}
		return *user, nil
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "listing users")
	}
	return users, nil
}

func (u *UserRepository) UpdateUser(ctx context.Context, args repoargs.UpdateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx,
		`UPDATE users SET name = $2, email = $3, updated_at = now() WHERE id = $1 RETURNING `+userColumns,
		args.ID, args.Name, args.Email,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating user with id %d", args.ID)
	}
	return user, nil
}

// DeleteUser удаляет юзера. Членство и доли удаляются следом по внешним ключам.
func (u *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := u.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting user with id %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting user with id %d", id)
	}
	return nil
}

// ExistingIDs возвращает по возрастанию те ids, которые принадлежат существующим юзерам.
func (u *UserRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := u.db.Query(ctx, `SELECT id FROM users WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, convertErr(err, "checking user ids `%v`", ids)
	}
	existing, collectErr := pgx.CollectRows(rows, pgx.RowTo[int64])
	if collectErr != nil {
		return nil, convertErr(collectErr, "checking user ids `%v`", ids)
	}
	return existing, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Name, &user.Email); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &user, nil
}
