package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

const settlementColumns = `id, amount, note, date, paid_by_user_id, received_by_user_id, group_id, created_by, created_at`

// CreateSettlement inserts a new settlement into the database.
func (s *Store) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Date.IsZero() {
		settlement.Date = time.Now()
	}

	_, err := s.execContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID,
		settlement.Amount,
		settlement.Note,
		settlement.Date.UnixMilli(),
		settlement.PaidByUserID,
		settlement.ReceivedByUserID,
		nullable(settlement.GroupID),
		settlement.CreatedBy,
		settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	return nil
}

// ListPersonalSettlements retrieves non-group settlements where userID is a party.
func (s *Store) ListPersonalSettlements(ctx context.Context, userID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements
		 WHERE group_id IS NULL AND (paid_by_user_id = ? OR received_by_user_id = ?)
		 ORDER BY date, id`,
		userID, userID,
	)
}

// ListGroupSettlements retrieves all settlements of a group.
func (s *Store) ListGroupSettlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE group_id = ? ORDER BY date, id`,
		groupID,
	)
}

func (s *Store) listSettlements(ctx context.Context, query string, args ...any) ([]models.Settlement, error) {
	rows, err := s.queryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements := []models.Settlement{}
	for rows.Next() {
		var (
			st         models.Settlement
			dateMillis int64
			groupID    sql.NullString
		)
		if err := rows.Scan(&st.ID, &st.Amount, &st.Note, &dateMillis, &st.PaidByUserID,
			&st.ReceivedByUserID, &groupID, &st.CreatedBy, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.Date = time.UnixMilli(dateMillis).UTC()
		st.GroupID = groupID.String
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}
