package sqldb

import (
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/events"
	"github.com/julianstephens/keepup/internal/models"
)

func (q *queries) GetProfile() (models.Profile, error) {
	var p models.Profile
	var createdAt string

	sel := q.sb.Select("id", "name", "birthdate", "level", "currency", "created_at").
		From("profile").
		OrderBy("id").
		Limit(1)
	if q.lockRows {
		// Held until commit so concurrent rewards and penalties apply in turn
		sel = sel.Suffix("FOR UPDATE")
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return p, err
	}
	err = q.run.QueryRow(query, args...).Scan(&p.ID, &p.Name, &p.Birthdate, &p.Level, &p.Currency, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, apperrors.NotFoundf("profile")
	}
	if err != nil {
		return p, fmt.Errorf("failed to get profile: %w", err)
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

func (q *queries) CreateProfile(p models.Profile) (models.Profile, error) {
	var count int
	query, args, err := q.sb.Select("COUNT(*)").From("profile").ToSql()
	if err != nil {
		return p, err
	}
	if err := q.run.QueryRow(query, args...).Scan(&count); err != nil {
		return p, fmt.Errorf("failed to count profiles: %w", err)
	}
	if count > 0 {
		return p, apperrors.ErrProfileExists
	}

	query, args, err = q.sb.Insert("profile").
		Columns("name", "birthdate", "level", "currency", "created_at").
		Values(p.Name, p.Birthdate, p.Level, p.Currency, formatTime(p.CreatedAt)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return p, err
	}
	if err := q.run.QueryRow(query, args...).Scan(&p.ID); err != nil {
		return p, fmt.Errorf("failed to create profile: %w", err)
	}
	q.emit(events.Profile)
	return p, nil
}

func (q *queries) UpdateProfile(p models.Profile) error {
	query, args, err := q.sb.Update("profile").
		Set("name", p.Name).
		Set("birthdate", p.Birthdate).
		Set("level", p.Level).
		Set("currency", p.Currency).
		Where("id = ?", p.ID).
		ToSql()
	if err != nil {
		return err
	}
	res, err := q.run.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFoundf("profile %d", p.ID)
	}
	q.emit(events.Profile)
	return nil
}
