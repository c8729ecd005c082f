package pricing

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

// Repository репозиторий для работы с переопределениями цен
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория цен
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListForDate получает все переопределения цен ресурса, применимые к дате:
// записи с точным совпадением даты и дефолтные записи без даты.
// Разрешение приоритетов выполняет PricingResolver, репозиторий только читает.
func (r *Repository) ListForDate(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.PriceOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"resource_type",
		"variant",
		"date",
		"unit_price",
		"created_at",
		"updated_at",
	).
		From("price_overrides").
		Where(squirrel.Eq{"resource_type": resourceType}).
		Where(squirrel.Or{
			squirrel.Eq{"date": date},
			squirrel.Eq{"date": nil},
		}).
		OrderBy("date ASC NULLS LAST", "variant ASC NULLS LAST", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListForDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListForDate - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var overrides []*domain.PriceOverride
	for rows.Next() {
		var (
			ov        domain.PriceOverride
			createdAt sql.NullTime
			updatedAt sql.NullTime
		)
		err := rows.Scan(
			&ov.ID,
			&ov.ResourceType,
			&ov.Variant,
			&ov.Date,
			&ov.UnitPrice,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListForDate - scan override: %v", ErrScanRow, err)
		}
		ov.CreatedAt = createdAt.Time
		ov.UpdatedAt = updatedAt.Time
		overrides = append(overrides, &ov)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListForDate - rows iteration: %v", ErrExecQuery, err)
	}

	return overrides, nil
}
