package repository

import (
	"fmt"
	"time"

	entity "goldshop/internal/domain"
)

// ActivityRepository keeps the status-transition history for products and
// invoices (sold, restored, purged).
type ActivityRepository interface {
	Save(log *entity.ActivityLog) error
	ListRecent(limit int) ([]entity.ActivityLog, error)
}

type activityRepository struct {
	db *Database
}

func NewActivityRepository(db *Database) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Save(log *entity.ActivityLog) error {
	if log.At.IsZero() {
		log.At = time.Now()
	}
	res, err := r.db.Conn().Exec(`
		INSERT INTO activity_log (related_id, related_type, old_status, new_status, changed_by, note, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.RelatedID, log.RelatedType, log.OldStatus, log.NewStatus,
		log.ChangedBy, log.Note, formatTime(log.At))
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	log.ID, _ = res.LastInsertId()
	return nil
}

func (r *activityRepository) ListRecent(limit int) ([]entity.ActivityLog, error) {
	rows, err := r.db.Conn().Query(`
		SELECT id, related_id, related_type, old_status, new_status, changed_by, note, at
		FROM activity_log
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []entity.ActivityLog
	for rows.Next() {
		var l entity.ActivityLog
		var at string
		if err := rows.Scan(&l.ID, &l.RelatedID, &l.RelatedType, &l.OldStatus, &l.NewStatus, &l.ChangedBy, &l.Note, &at); err != nil {
			return nil, err
		}
		l.At = parseTime(at)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
