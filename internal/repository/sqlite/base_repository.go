package repository

import (
	"database/sql"
	"strings"

	entity "goldshop/internal/domain"
)

type BaseRepository interface {
	SetImage(category, baseNumber, image, thumb string) error
	Get(category, baseNumber string) (*entity.Base, error)
}

type baseRepository struct {
	db *Database
}

func NewBaseRepository(db *Database) BaseRepository {
	return &baseRepository{db: db}
}

// SetImage upserts the representative photo for a (category, base_number)
// pair: UPDATE first, INSERT when no row matched.
func (r *baseRepository) SetImage(category, baseNumber, image, thumb string) error {
	category = strings.TrimSpace(category)
	res, err := r.db.Conn().Exec(
		`UPDATE bases SET image=?, thumb=? WHERE category=? AND base_number=?`,
		image, thumb, category, baseNumber)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		_, err = r.db.Conn().Exec(
			`INSERT INTO bases (category, base_number, image, thumb) VALUES (?, ?, ?, ?)`,
			category, baseNumber, image, thumb)
	}
	return err
}

func (r *baseRepository) Get(category, baseNumber string) (*entity.Base, error) {
	var b entity.Base
	var thumb sql.NullString
	err := r.db.Conn().QueryRow(
		`SELECT id, category, base_number, image, thumb FROM bases WHERE category=? AND base_number=?`,
		strings.TrimSpace(category), baseNumber,
	).Scan(&b.ID, &b.Category, &b.BaseNumber, &b.Image, &thumb)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Thumb = thumb.String
	return &b, nil
}
