package blackout

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/pkg/dbmetrics"
	"github.com/lesnaya-zaimka/booking-service/pkg/psqlbuilder"
)

// Repository репозиторий для работы с закрытиями ресурсов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория закрытий
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListIntervals получает частичные закрытия ресурса на дату
func (r *Repository) ListIntervals(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.BlackoutInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"resource_type",
		"date",
		"start_time",
		"end_time",
		"reason",
		"created_at",
	).
		From("blackout_intervals").
		Where(squirrel.Eq{"resource_type": resourceType}).
		Where(squirrel.Eq{"date": date}).
		OrderBy("start_time ASC NULLS FIRST", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListIntervals - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListIntervals - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var intervals []*domain.BlackoutInterval
	for rows.Next() {
		var (
			interval  domain.BlackoutInterval
			createdAt sql.NullTime
		)
		err := rows.Scan(
			&interval.ID,
			&interval.ResourceType,
			&interval.Date,
			&interval.StartTime,
			&interval.EndTime,
			&interval.Reason,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListIntervals - scan interval: %v", ErrScanRow, err)
		}
		interval.CreatedAt = createdAt.Time
		intervals = append(intervals, &interval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListIntervals - rows iteration: %v", ErrExecQuery, err)
	}

	return intervals, nil
}

// GetBlackoutDate получает полное закрытие ресурса на дату.
// Возвращает ErrBlackoutDateNotFound, если дата не закрыта.
func (r *Repository) GetBlackoutDate(ctx context.Context, resourceType domain.ResourceType, date time.Time) (*domain.BlackoutDate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"resource_type",
		"date",
		"reason",
		"created_at",
	).
		From("blackout_dates").
		Where(squirrel.Eq{"resource_type": resourceType}).
		Where(squirrel.Eq{"date": date}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBlackoutDate - build select query: %v", ErrBuildQuery, err)
	}

	var (
		bd        domain.BlackoutDate
		createdAt sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&bd.ID,
		&bd.ResourceType,
		&bd.Date,
		&bd.Reason,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBlackoutDateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlackoutDate - scan blackout date: %v", ErrScanRow, err)
	}

	bd.CreatedAt = createdAt.Time
	return &bd, nil
}
