package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateGroup persists a new group and its members in one transaction.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(exec func(string, ...any) error) error {
		err := exec(
			`INSERT INTO expense_groups (id, name, description, created_by, created_at) VALUES (?, ?, ?, ?, ?)`,
			group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for i := range group.Members {
			m := &group.Members[i]
			if m.Role == "" {
				m.Role = models.RoleMember
			}
			if m.JoinedAt == 0 {
				m.JoinedAt = group.CreatedAt
			}
			err := exec(
				`INSERT INTO group_members (group_id, user_id, role, joined_at, position) VALUES (?, ?, ?, ?, ?)`,
				group.ID, m.UserID, string(m.Role), m.JoinedAt, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}
		return nil
	})
}

// GetGroup retrieves a group by ID, including its members.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.queryRowContext(ctx,
		`SELECT id, name, description, created_by, created_at FROM expense_groups WHERE id = ?`,
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if err := s.loadMembers(ctx, []*models.Group{group}); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsForUser retrieves every group userID belongs to.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.queryContext(ctx,
		`SELECT g.id, g.name, g.description, g.created_by, g.created_at
		 FROM expense_groups g
		 WHERE g.id IN (SELECT group_id FROM group_members WHERE user_id = ?)
		 ORDER BY g.name, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	if err := s.loadMembers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// loadMembers fills Members for every group with a single query.
func (s *Store) loadMembers(ctx context.Context, groups []*models.Group) error {
	if len(groups) == 0 {
		return nil
	}

	byID := make(map[string]*models.Group, len(groups))
	ids := make([]string, len(groups))
	for i, g := range groups {
		byID[g.ID] = g
		ids[i] = g.ID
	}

	rows, err := s.queryContext(ctx,
		`SELECT group_id, user_id, role, joined_at FROM group_members
		 WHERE group_id IN (`+placeholders(len(ids))+`)
		 ORDER BY group_id, position`,
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, role string
		var m models.GroupMember
		if err := rows.Scan(&groupID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return fmt.Errorf("failed to scan group member: %w", err)
		}
		m.Role = models.Role(role)
		if g, ok := byID[groupID]; ok {
			g.Members = append(g.Members, m)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate group members: %w", err)
	}
	return nil
}
