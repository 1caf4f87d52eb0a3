package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/pkg/uow"
)

const groupColumns = `id, created_at, updated_at, name`

type GroupRepository struct {
	db uow.DBTX
}

func NewGroupRepository(db uow.DBTX) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateGroup сохраняет группу и ее участников. Неизвестный id участника дает
// domain.ErrRecordNotFound.
func (g *GroupRepository) CreateGroup(ctx context.Context, args repoargs.CreateGroup) (*domain.Group, error) {
	row := g.db.QueryRow(ctx, `INSERT INTO groups (name) VALUES ($1) RETURNING `+groupColumns, args.Name)
	group, err := scanGroup(row)
	if err != nil {
		return nil, convertErr(err, "creating group `%s`", args.Name)
	}

	if membersErr := g.insertMembers(ctx, group.ID, args.MemberIDs); membersErr != nil {
		return nil, membersErr
	}
	group.MemberIDs = sortedCopy(args.MemberIDs)
	return group, nil
}

func (g *GroupRepository) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	row := g.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
	return g.withMembers(ctx, row, id)
}

// LockGroup читает группу и держит блокировку строки до конца транзакции. Изменения расходов
// и участников группы сначала берут эту блокировку и поэтому применяются по одному.
func (g *GroupRepository) LockGroup(ctx context.Context, id int64) (*domain.Group, error) {
	row := g.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1 FOR UPDATE`, id)
	return g.withMembers(ctx, row, id)
}

func (g *GroupRepository) ListGroups(ctx context.Context, page repoargs.Page) ([]domain.Group, error) {
	offset, limit, boundsErr := pageBounds(page)
	if boundsErr != nil {
		return nil, convertErr(boundsErr, "listing groups")
	}
	rows, err := g.db.Query(ctx,
		`SELECT `+groupColumns+` FROM groups ORDER BY id OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, convertErr(err, "listing groups")
	}
	return g.collectGroups(ctx, rows, "listing groups")
}

// ListUserGroups возвращает все группы, где состоит userID, упорядоченные по id.
func (g *GroupRepository) ListUserGroups(ctx context.Context, userID int64) ([]domain.Group, error) {
	rows, err := g.db.Query(ctx,
		`SELECT g.id, g.created_at, g.updated_at, g.name
		   FROM groups g
		   JOIN group_members gm ON gm.group_id = g.id
		  WHERE gm.user_id = $1
		  ORDER BY g.id`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "listing groups of user %d", userID)
	}
	return g.collectGroups(ctx, rows, "listing groups of user %d", userID)
}

func (g *GroupRepository) UpdateGroup(ctx context.Context, args repoargs.UpdateGroup) (*domain.Group, error) {
	row := g.db.QueryRow(ctx,
		`UPDATE groups SET name = $2, updated_at = now() WHERE id = $1 RETURNING `+groupColumns,
		args.ID, args.Name,
	)
	return g.withMembers(ctx, row, args.ID)
}

// ReplaceMembers заменяет список участников группы на memberIDs.
func (g *GroupRepository) ReplaceMembers(ctx context.Context, groupID int64, memberIDs []int64) error {
	if _, err := g.db.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1`, groupID); err != nil {
		return convertErr(err, "clearing members of group %d", groupID)
	}
	if _, err := g.db.Exec(ctx, `UPDATE groups SET updated_at = now() WHERE id = $1`, groupID); err != nil {
		return convertErr(err, "touching group %d", groupID)
	}
	return g.insertMembers(ctx, groupID, memberIDs)
}

// DeleteGroup удаляет группу. Расходы, доли и членство удаляются следом по внешним ключам.
func (g *GroupRepository) DeleteGroup(ctx context.Context, id int64) error {
	tag, err := g.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting group with id %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting group with id %d", id)
	}
	return nil
}

// DeleteEmptyGroups удаляет группы из groupIDs, в которых не осталось участников, и возвращает
// их идентификаторы по возрастанию.
func (g *GroupRepository) DeleteEmptyGroups(ctx context.Context, groupIDs []int64) ([]int64, error) {
	rows, err := g.db.Query(ctx,
		`DELETE FROM groups g
		  WHERE g.id = ANY($1)
		    AND NOT EXISTS (SELECT 1 FROM group_members gm WHERE gm.group_id = g.id)
		  RETURNING g.id`,
		groupIDs,
	)
	if err != nil {
		return nil, convertErr(err, "deleting empty groups `%v`", groupIDs)
	}
	ids, collectErr := pgx.CollectRows(rows, pgx.RowTo[int64])
	if collectErr != nil {
		return nil, convertErr(collectErr, "deleting empty groups `%v`", groupIDs)
	}
	return sortedCopy(ids), nil
}

func (g *GroupRepository) insertMembers(ctx context.Context, groupID int64, memberIDs []int64) error {
	if len(memberIDs) == 0 {
		return nil
	}
	batch := new(pgx.Batch)
	for _, userID := range memberIDs {
		batch.Queue(
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			groupID, userID,
		)
	}
	if err := g.db.SendBatch(ctx, batch).Close(); err != nil {
		return convertErr(err, "adding members `%v` to group %d", memberIDs, groupID)
	}
	return nil
}

func (g *GroupRepository) withMembers(ctx context.Context, row pgx.Row, id int64) (*domain.Group, error) {
	group, err := scanGroup(row)
	if err != nil {
		return nil, convertErr(err, "getting group with id %d", id)
	}
	members, membersErr := g.members(ctx, []int64{group.ID})
	if membersErr != nil {
		return nil, membersErr
	}
	group.MemberIDs = members[group.ID]
	return group, nil
}

func (g *GroupRepository) collectGroups(
	ctx context.Context,
	rows pgx.Rows,
	format string,
	formatArgs ...any,
) ([]domain.Group, error) {
	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Group, error) {
		group, scanErr := scanGroup(row)
		if scanErr != nil {
			return domain.Group{}, scanErr
		}
		return *group, nil
	})
	if err != nil {
		return nil, convertErr(err, format, formatArgs...)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	ids := make([]int64, len(groups))
	for i := range groups {
		ids[i] = groups[i].ID
	}
	members, membersErr := g.members(ctx, ids)
	if membersErr != nil {
		return nil, membersErr
	}
	for i := range groups {
		groups[i].MemberIDs = members[groups[i].ID]
	}
	return groups, nil
}

// members загружает id участников по возрастанию для каждой из переданных групп.
func (g *GroupRepository) members(ctx context.Context, groupIDs []int64) (map[int64][]int64, error) {
	rows, err := g.db.Query(ctx,
		`SELECT group_id, user_id FROM group_members WHERE group_id = ANY($1) ORDER BY group_id, user_id`,
		groupIDs,
	)
	if err != nil {
		return nil, convertErr(err, "getting members of groups `%v`", groupIDs)
	}
	defer rows.Close()

	res := make(map[int64][]int64, len(groupIDs))
	for _, id := range groupIDs {
		res[id] = []int64{}
	}
	for rows.Next() {
		var groupID, userID int64
		if scanErr := rows.Scan(&groupID, &userID); scanErr != nil {
			return nil, convertErr(scanErr, "scanning members of groups `%v`", groupIDs)
		}
		res[groupID] = append(res[groupID], userID)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting members of groups `%v`", groupIDs)
	}
	return res, nil
}

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var group domain.Group
	if err := row.Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt, &group.Name); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &group, nil
}
