package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/pkg/uow"
)

const expenseColumns = `id, created_at, updated_at, group_id, description, amount::text, paid_by, split_type`

type ExpenseRepository struct {
	db uow.DBTX
}

func NewExpenseRepository(db uow.DBTX) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// CreateExpense сохраняет расход вместе со всеми долями.
func (e *ExpenseRepository) CreateExpense(ctx context.Context, args repoargs.CreateExpense) (*domain.Expense, error) {
	row := e.db.QueryRow(ctx,
		`INSERT INTO expenses (group_id, description, amount, paid_by, split_type)
		 VALUES ($1, $2, $3::numeric, $4, $5)
		 RETURNING `+expenseColumns,
		args.GroupID, args.Description, args.Amount.String(), args.PaidBy, string(args.SplitType),
	)
	expense, err := scanExpense(row)
	if err != nil {
		return nil, convertErr(err, "creating expense in group %d", args.GroupID)
	}

	splits, splitsErr := e.insertSplits(ctx, expense.ID, args.Splits)
	if splitsErr != nil {
		return nil, splitsErr
	}
	expense.Splits = splits
	return expense, nil
}

func (e *ExpenseRepository) GetExpense(ctx context.Context, id int64) (*domain.Expense, error) {
	row := e.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	expense, err := scanExpense(row)
	if err != nil {
		return nil, convertErr(err, "getting expense with id %d", id)
	}
	splits, splitsErr := e.splits(ctx, []int64{expense.ID})
	if splitsErr != nil {
		return nil, splitsErr
	}
	expense.Splits = splits[expense.ID]
	return expense, nil
}

// ListGroupExpenses возвращает расходы группы с долями, упорядоченные по id.
func (e *ExpenseRepository) ListGroupExpenses(ctx context.Context, groupID int64) ([]domain.Expense, error) {
	rows, err := e.db.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = $1 ORDER BY id`,
		groupID,
	)
	if err != nil {
		return nil, convertErr(err, "listing expenses of group %d", groupID)
	}
	expenses, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Expense, error) {
		expense, scanErr := scanExpense(row)
		if scanErr != nil {
			return domain.Expense{}, scanErr
		}
		return *expense, nil
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "listing expenses of group %d", groupID)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]int64, len(expenses))
	for i := range expenses {
		ids[i] = expenses[i].ID
	}
	splits, splitsErr := e.splits(ctx, ids)
	if splitsErr != nil {
		return nil, splitsErr
	}
	for i := range expenses {
		expenses[i].Splits = splits[expenses[i].ID]
	}
	return expenses, nil
}

// UpdateExpense перезаписывает строку расхода и заменяет все его доли.
func (e *ExpenseRepository) UpdateExpense(ctx context.Context, args repoargs.UpdateExpense) (*domain.Expense, error) {
	row := e.db.QueryRow(ctx,
		`UPDATE expenses
		    SET description = $2, amount = $3::numeric, paid_by = $4, split_type = $5, updated_at = now()
		  WHERE id = $1
		 RETURNING `+expenseColumns,
		args.ID, args.Description, args.Amount.String(), args.PaidBy, string(args.SplitType),
	)
	expense, err := scanExpense(row)
	if err != nil {
		return nil, convertErr(err, "updating expense with id %d", args.ID)
	}

	if _, delErr := e.db.Exec(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, args.ID); delErr != nil {
		return nil, convertErr(delErr, "clearing splits of expense %d", args.ID)
	}
	splits, splitsErr := e.insertSplits(ctx, expense.ID, args.Splits)
	if splitsErr != nil {
		return nil, splitsErr
	}
	expense.Splits = splits
	return expense, nil
}

func (e *ExpenseRepository) DeleteExpense(ctx context.Context, id int64) error {
	tag, err := e.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting expense with id %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting expense with id %d", id)
	}
	return nil
}

// DeleteUserExpenses удаляет все расходы, которые userID оплатил или в которых у него есть доля,
// и возвращает удаленные.
func (e *ExpenseRepository) DeleteUserExpenses(ctx context.Context, userID int64) ([]repoargs.ExpenseRef, error) {
	rows, err := e.db.Query(ctx,
		`DELETE FROM expenses
		  WHERE paid_by = $1
		     OR id IN (SELECT expense_id FROM expense_splits WHERE user_id = $1)
		 RETURNING id, group_id`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "deleting expenses of user %d", userID)
	}
	refs, collectErr := pgx.CollectRows(rows, pgx.RowToStructByPos[repoargs.ExpenseRef])
	if collectErr != nil {
		return nil, convertErr(collectErr, "deleting expenses of user %d", userID)
	}
	return refs, nil
}

// GroupParticipants возвращает по возрастанию всех, кто оплатил расход группы или имеет в нем долю.
func (e *ExpenseRepository) GroupParticipants(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := e.db.Query(ctx,
		`SELECT paid_by FROM expenses WHERE group_id = $1
		 UNION
		 SELECT s.user_id FROM expense_splits s JOIN expenses x ON x.id = s.expense_id WHERE x.group_id = $1
		 ORDER BY 1`,
		groupID,
	)
	if err != nil {
		return nil, convertErr(err, "getting participants of group %d", groupID)
	}
	ids, collectErr := pgx.CollectRows(rows, pgx.RowTo[int64])
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting participants of group %d", groupID)
	}
	return ids, nil
}

func (e *ExpenseRepository) insertSplits(
	ctx context.Context,
	expenseID int64,
	splits []repoargs.CreateSplit,
) ([]domain.ExpenseSplit, error) {
	res := make([]domain.ExpenseSplit, len(splits))
	if len(splits) == 0 {
		return res, nil
	}

	batch := new(pgx.Batch)
	for i, split := range splits {
		batch.Queue(
			`INSERT INTO expense_splits (expense_id, user_id, amount, percentage)
			 VALUES ($1, $2, $3::numeric, $4::numeric)
			 RETURNING id`,
			expenseID, split.UserID, split.Amount.String(), nullDecimalText(split.Percentage),
		).QueryRow(func(row pgx.Row) error {
			res[i] = domain.ExpenseSplit{
				ExpenseID:  expenseID,
				UserID:     split.UserID,
				Amount:     split.Amount,
				Percentage: split.Percentage,
			}
			return row.Scan(&res[i].ID)
		})
	}

	if err := e.db.SendBatch(ctx, batch).Close(); err != nil {
		return nil, convertErr(err, "creating splits of expense %d", expenseID)
	}
	return res, nil
}

// splits загружает доли переданных расходов, упорядоченные по id пользователя.
func (e *ExpenseRepository) splits(ctx context.Context, expenseIDs []int64) (map[int64][]domain.ExpenseSplit, error) {
	rows, err := e.db.Query(ctx,
		`SELECT id, expense_id, user_id, amount::text, percentage::text
		   FROM expense_splits
		  WHERE expense_id = ANY($1)
		  ORDER BY expense_id, user_id`,
		expenseIDs,
	)
	if err != nil {
		return nil, convertErr(err, "getting splits of expenses `%v`", expenseIDs)
	}
	defer rows.Close()

	res := make(map[int64][]domain.ExpenseSplit, len(expenseIDs))
	for rows.Next() {
		var (
			split      domain.ExpenseSplit
			amount     string
			percentage *string
		)
		if scanErr := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID, &amount, &percentage); scanErr != nil {
			return nil, convertErr(scanErr, "scanning splits of expenses `%v`", expenseIDs)
		}
		var parseErr error
		if split.Amount, parseErr = parseDecimal(amount); parseErr != nil {
			return nil, convertErr(parseErr, "scanning splits of expenses `%v`", expenseIDs)
		}
		if split.Percentage, parseErr = parseNullDecimal(percentage); parseErr != nil {
			return nil, convertErr(parseErr, "scanning splits of expenses `%v`", expenseIDs)
		}
		res[split.ExpenseID] = append(res[split.ExpenseID], split)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting splits of expenses `%v`", expenseIDs)
	}
	return res, nil
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		expense   domain.Expense
		amount    string
		splitType string
	)
	if err := row.Scan(
		&expense.ID,
		&expense.CreatedAt,
		&expense.UpdatedAt,
		&expense.GroupID,
		&expense.Description,
		&amount,
		&expense.PaidBy,
		&splitType,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	parsed, parseErr := parseDecimal(amount)
	if parseErr != nil {
		return nil, parseErr
	}
	expense.Amount = parsed
	expense.SplitType = domain.SplitType(splitType)
	return &expense, nil
}
