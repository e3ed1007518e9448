package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// expenseSelect joins every expense with its splits; rows of one expense are adjacent.
const expenseSelect = `
	SELECT e.id, e.description, e.amount, e.category, e.date, e.paid_by_user_id, e.group_id,
	       e.created_by, e.created_at, s.user_id, s.amount, s.paid
	FROM expenses e
	LEFT JOIN expense_splits s ON s.expense_id = e.id`

// involving restricts expenses to those userID paid or has a split in.
const involving = `(e.paid_by_user_id = ? OR e.id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?))`

const expenseOrder = ` ORDER BY e.date, e.id, s.position`

// CreateExpense persists a new expense and its splits in one transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now()
	}

	return s.inTx(ctx, func(exec func(string, ...any) error) error {
		err := exec(
			`INSERT INTO expenses (id, description, amount, category, date, paid_by_user_id, group_id, created_by, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.Description, expense.Amount, expense.Category, expense.Date.UnixMilli(),
			expense.PaidByUserID, nullable(expense.GroupID), expense.CreatedBy, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for i, split := range expense.Splits {
			err := exec(
				`INSERT INTO expense_splits (expense_id, position, user_id, amount, paid) VALUES (?, ?, ?, ?, ?)`,
				expense.ID, i, split.UserID, split.Amount, split.Paid,
			)
			if err != nil {
				return fmt.Errorf("failed to insert split: %w", err)
			}
		}
		return nil
	})
}

// ListPersonalExpenses retrieves non-group expenses involving userID.
func (s *Store) ListPersonalExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		expenseSelect+` WHERE e.group_id IS NULL AND `+involving+expenseOrder,
		userID, userID,
	)
}

// ListGroupExpenses retrieves all expenses of a group.
func (s *Store) ListGroupExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		expenseSelect+` WHERE e.group_id = ?`+expenseOrder,
		groupID,
	)
}

// ListExpensesSince retrieves expenses of any scope involving userID dated at or after since.
func (s *Store) ListExpensesSince(ctx context.Context, userID string, since time.Time) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		expenseSelect+` WHERE e.date >= ? AND `+involving+expenseOrder,
		since.UnixMilli(), userID, userID,
	)
}

func (s *Store) listExpenses(ctx context.Context, query string, args ...any) ([]models.Expense, error) {
	rows, err := s.queryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var (
			e           models.Expense
			dateMillis  int64
			groupID     sql.NullString
			splitUser   sql.NullString
			splitAmount decimal.NullDecimal
			splitPaid   sql.NullBool
		)
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Category, &dateMillis, &e.PaidByUserID,
			&groupID, &e.CreatedBy, &e.CreatedAt, &splitUser, &splitAmount, &splitPaid); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		// Rows of one expense are adjacent; start a new expense when the ID changes.
		if n := len(expenses); n == 0 || expenses[n-1].ID != e.ID {
			e.Date = time.UnixMilli(dateMillis).UTC()
			e.GroupID = groupID.String
			expenses = append(expenses, e)
		}
		if splitUser.Valid {
			last := &expenses[len(expenses)-1]
			last.Splits = append(last.Splits, models.Split{
				UserID: splitUser.String,
				Amount: splitAmount.Decimal,
				Paid:   splitPaid.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}
