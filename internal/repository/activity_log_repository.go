package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/backoffice/internal/database"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

// ActivityLogRepository stores the audit trail shown on the logs screen.
type ActivityLogRepository struct {
	db database.PGXDB
}

// NewActivityLogRepository creates a new ActivityLogRepository.
func NewActivityLogRepository(db database.PGXDB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create appends an entry.
func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO activity_logs (action, entity_type, entity_id, entity_name, description, user_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, timestamp
	`, entry.Action, entry.EntityType, nilIfEmpty(entry.EntityID), nilIfEmpty(entry.EntityName),
		nilIfEmpty(entry.Description), nilIfEmpty(entry.UserName),
	).Scan(&entry.ID, &entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first.
func (r *ActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, action, entity_type, entity_id, entity_name, description, user_name, timestamp
		FROM activity_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityLog
	for rows.Next() {
		var e models.ActivityLog
		var entityID, entityName, description, userName *string
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &entityID, &entityName,
			&description, &userName, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		e.EntityID = derefString(entityID)
		e.EntityName = derefString(entityName)
		e.Description = derefString(description)
		e.UserName = derefString(userName)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}
	return entries, nil
}
