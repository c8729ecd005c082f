package reservation

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

// reservationColumns полный список колонок таблицы reservations
var reservationColumns = []string{
	"id",
	"resource_type",
	"model",
	"unit_id",
	"variant",
	"date",
	"start_time",
	"duration_minutes",
	"units",
	"status",
	"unit_price",
	"discount_percent",
	"base_total",
	"discount_amount",
	"total",
	"customer_name",
	"customer_phone",
	"comment",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция (через context.Value), использует её.
//
// Создание бронирования гостя всегда должно идти через сериализуемую транзакцию
// вместе с проверкой конфликтов: проверка и вставка становятся одной атомарной
// операцией, и гонка между конкурирующими заявками на последнее место
// разрешается на стороне БД.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"resource_type",
			"model",
			"unit_id",
			"variant",
			"date",
			"start_time",
			"duration_minutes",
			"units",
			"status",
			"unit_price",
			"discount_percent",
			"base_total",
			"discount_amount",
			"total",
			"customer_name",
			"customer_phone",
			"comment",
		).
		Values(
			res.ResourceType,
			res.Model,
			res.UnitID,
			res.Variant,
			res.Date,
			res.StartTime,
			res.DurationMinutes,
			res.Units,
			res.Status,
			res.Price.UnitPrice,
			res.Price.DiscountPercent,
			res.Price.BaseTotal,
			res.Price.DiscountAmount,
			res.Price.Total,
			res.CustomerName,
			res.CustomerPhone,
			res.Comment,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", ErrScanRow, err)
	}

	return res, nil
}

// ListWithFilter получает бронирования по фильтру.
// По умолчанию возвращает только активные (удерживающие ресурс) бронирования;
// IncludeInactive добавляет завершённые, отменённые и истёкшие.
func (r *Repository) ListWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"resource_type": filter.ResourceType})

	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"date": *filter.Date})
	}

	if filter.UnitID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"unit_id": *filter.UnitID})
	}

	if filter.Phone != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_phone": *filter.Phone})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": domain.ActiveStatuses})
	}

	selectBuilder = selectBuilder.OrderBy("date ASC", "start_time ASC", "id ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListWithFilter - scan reservation: %v", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - rows iteration: %v", ErrExecQuery, err)
	}

	return reservations, nil
}

// CountUnconfirmedByPhone подсчитывает незавершённые (pending / awaiting_prepayment)
// бронирования гостя. Используется identity-guard rate limiter'а.
func (r *Repository) CountUnconfirmedByPhone(ctx context.Context, phone string) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("reservations").
		Where(squirrel.Eq{"customer_phone": phone}).
		Where(squirrel.Eq{"status": []domain.ReservationStatus{
			domain.StatusPending,
			domain.StatusAwaitingPrepayment,
		}}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountUnconfirmedByPhone - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountUnconfirmedByPhone - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// UpdateStatus обновляет статус бронирования и возвращает обновлённую запись.
// Допустимость перехода проверяется на уровне сервиса по таблице переходов.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(reservationColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - scan reservation: %v", ErrScanRow, err)
	}

	return res, nil
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(reservationColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - scan reservation: %v", ErrScanRow, err)
	}

	return res, nil
}

// ExpirePendingBefore переводит в expired все pending бронирования,
// созданные раньше deadline. Возвращает ID затронутых бронирований.
func (r *Repository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Lt{"created_at": deadline}).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePendingBefore - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePendingBefore - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ExpirePendingBefore - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ExpirePendingBefore - rows iteration: %v", ErrExecQuery, err)
	}

	return ids, nil
}

// UpdatePriceSnapshot заменяет ценовой снимок бронирования.
// Единственный легальный путь изменения снимка после создания; вызывается
// только из административной операции с фиксацией актора и причины в логах.
func (r *Repository) UpdatePriceSnapshot(ctx context.Context, id int64, price domain.PriceSnapshot) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("unit_price", price.UnitPrice).
		Set("discount_percent", price.DiscountPercent).
		Set("base_total", price.BaseTotal).
		Set("discount_amount", price.DiscountAmount).
		Set("total", price.Total).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(reservationColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdatePriceSnapshot - build update query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdatePriceSnapshot - scan reservation: %v", ErrScanRow, err)
	}

	return res, nil
}

// rowScanner интерфейс, общий для *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanReservation сканирует строку таблицы reservations в доменную модель
func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res         domain.Reservation
		cancelledAt sql.NullTime
		createdAt   sql.NullTime
		updatedAt   sql.NullTime
	)

	err := row.Scan(
		&res.ID,
		&res.ResourceType,
		&res.Model,
		&res.UnitID,
		&res.Variant,
		&res.Date,
		&res.StartTime,
		&res.DurationMinutes,
		&res.Units,
		&res.Status,
		&res.Price.UnitPrice,
		&res.Price.DiscountPercent,
		&res.Price.BaseTotal,
		&res.Price.DiscountAmount,
		&res.Price.Total,
		&res.CustomerName,
		&res.CustomerPhone,
		&res.Comment,
		&res.CancellationReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cancelledAt.Valid {
		res.CancelledAt = &cancelledAt.Time
	}
	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

// joinColumns собирает список колонок для RETURNING
func joinColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
