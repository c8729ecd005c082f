package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	reservationRepo "github.com/lesnaya-zaimka/booking-service/internal/infra/storage/reservation"
	"github.com/lesnaya-zaimka/booking-service/internal/service/reservations/models"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// --- Mocks ---

type mockReservationRepo struct {
	getByIDFn             func(ctx context.Context, id int64) (*domain.Reservation, error)
	listFn                func(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
	updateStatusFn        func(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error)
	cancelFn              func(ctx context.Context, id int64, reason string) (*domain.Reservation, error)
	expirePendingFn       func(ctx context.Context, deadline time.Time) ([]int64, error)
	updatePriceSnapshotFn func(ctx context.Context, id int64, price domain.PriceSnapshot) (*domain.Reservation, error)
}

func (m *mockReservationRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockReservationRepo) ListWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	return m.listFn(ctx, filter)
}

func (m *mockReservationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockReservationRepo) Cancel(ctx context.Context, id int64, reason string) (*domain.Reservation, error) {
	return m.cancelFn(ctx, id, reason)
}

func (m *mockReservationRepo) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]int64, error) {
	return m.expirePendingFn(ctx, deadline)
}

func (m *mockReservationRepo) UpdatePriceSnapshot(ctx context.Context, id int64, price domain.PriceSnapshot) (*domain.Reservation, error) {
	return m.updatePriceSnapshotFn(ctx, id, price)
}

// mockTxManager выполняет функции напрямую, без транзакции
type mockTxManager struct{}

func (m *mockTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *mockTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *mockTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time { return p.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Fixtures ---

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func testCatalog() domain.Catalog {
	return domain.Catalog{
		"quad_safari": {
			Type:     "quad_safari",
			Model:    domain.ModelSharedPool,
			Capacity: 4,
		},
	}
}

func newTestService(repo *mockReservationRepo) *Service {
	return &Service{
		catalog:         testCatalog(),
		reservationRepo: repo,
		txManager:       &mockTxManager{},
		pendingTTL:      30 * time.Minute,
		timeProvider:    &fixedTimeProvider{now: testNow},
		logger:          nopLogger{},
	}
}

func sampleReservation(status domain.ReservationStatus) *domain.Reservation {
	variant := "short"
	return &domain.Reservation{
		ID:              42,
		ResourceType:    "quad_safari",
		Model:           domain.ModelSharedPool,
		Variant:         &variant,
		Date:            time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("10:00"),
		DurationMinutes: 60,
		Units:           2,
		Status:          status,
		Price: domain.PriceSnapshot{
			UnitPrice: 3500,
			BaseTotal: 7000,
			Total:     7000,
		},
		CustomerName:  "Иван Петров",
		CustomerPhone: "+79991234567",
	}
}

// --- Tests ---

func TestGetByID(t *testing.T) {
	repo := &mockReservationRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Reservation, error) {
			assert.Equal(t, int64(42), id)
			return sampleReservation(domain.StatusConfirmed), nil
		},
	}
	svc := newTestService(repo)

	resp, err := svc.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "2026-08-30", resp.Date)
	assert.Equal(t, "10:00", resp.StartTime)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockReservationRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Reservation, error) {
			return nil, reservationRepo.ErrReservationNotFound
		},
	}
	svc := newTestService(repo)

	_, err := svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestList(t *testing.T) {
	repo := &mockReservationRepo{
		listFn: func(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
			assert.Equal(t, domain.ResourceType("quad_safari"), filter.ResourceType)
			assert.False(t, filter.IncludeInactive)
			return []*domain.Reservation{sampleReservation(domain.StatusPending)}, nil
		},
	}
	svc := newTestService(repo)

	resp, err := svc.List(context.Background(), &models.ListReservationsRequest{ResourceType: "quad_safari"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Reservations, 1)
	assert.Equal(t, "pending", resp.Reservations[0].Status)
}

func TestList_UnknownResource(t *testing.T) {
	svc := newTestService(&mockReservationRepo{})

	_, err := svc.List(context.Background(), &models.ListReservationsRequest{ResourceType: "spa"})
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name      string
		current   domain.ReservationStatus
		requested string
		wantErr   error
	}{
		{name: "pending to confirmed", current: domain.StatusPending, requested: "confirmed"},
		{name: "pending to awaiting prepayment", current: domain.StatusPending, requested: "awaiting_prepayment"},
		{name: "confirmed to completed", current: domain.StatusConfirmed, requested: "completed"},
		{name: "completed is terminal", current: domain.StatusCompleted, requested: "confirmed", wantErr: ErrInvalidTransition},
		{name: "cancelled is terminal", current: domain.StatusCancelled, requested: "pending", wantErr: ErrInvalidTransition},
		{name: "confirmed cannot expire", current: domain.StatusConfirmed, requested: "expired", wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockReservationRepo{
				getByIDFn: func(ctx context.Context, id int64) (*domain.Reservation, error) {
					return sampleReservation(tt.current), nil
				},
				updateStatusFn: func(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
					res := sampleReservation(status)
					return res, nil
				},
			}
			svc := newTestService(repo)

			resp, err := svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{
				StaffID: "staff-1",
				Status:  tt.requested,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.requested, resp.Status)
		})
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc := newTestService(&mockReservationRepo{})

	_, err := svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{
		StaffID: "staff-1",
		Status:  "suspended",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel(t *testing.T) {
	reason := "гость попросил отменить"
	repo := &mockReservationRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Reservation, error) {
			return sampleReservation(domain.StatusConfirmed), nil
		},
		cancelFn: func(ctx context.Context, id int64, r string) (*domain.Reservation, error) {
			assert.Equal(t, reason, r)
			res := sampleReservation(domain.StatusCancelled)
			res.CancellationReason = &r
			return res, nil
		},
	}
	svc := newTestService(repo)

	resp, err := svc.Cancel(context.Background(), 42, &models.CancelReservationRequest{
		StaffID:            "staff-1",
		CancellationReason: reason,
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, reason, *resp.CancellationReason)
}

func TestCancel_TerminalStatus(t *testing.T) {
	repo := &mockReservationRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Reservation, error) {
			return sampleReservation(domain.StatusCompleted), nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Cancel(context.Background(), 42, &models.CancelReservationRequest{
		StaffID:            "staff-1",
		CancellationReason: "причина",
	})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestExpirePending(t *testing.T) {
	var gotDeadline time.Time
	repo := &mockReservationRepo{
		expirePendingFn: func(ctx context.Context, deadline time.Time) ([]int64, error) {
			gotDeadline = deadline
			return []int64{7, 8}, nil
		},
	}
	svc := newTestService(repo)

	resp, err := svc.ExpirePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []int64{7, 8}, resp.ExpiredIDs)

	// Дедлайн отстоит от текущего времени ровно на pendingTTL
	assert.Equal(t, testNow.Add(-30*time.Minute), gotDeadline)
}

func TestOverridePrice(t *testing.T) {
	var gotSnapshot domain.PriceSnapshot
	repo := &mockReservationRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Reservation, error) {
			res := sampleReservation(domain.StatusConfirmed)
			// Бронирование присоединилось к группе со скидкой 5%
			res.Price = domain.PriceSnapshot{
				UnitPrice:       3325,
				DiscountPercent: 5,
				BaseTotal:       7000,
				DiscountAmount:  350,
				Total:           6650,
			}
			return res, nil
		},
		updatePriceSnapshotFn: func(ctx context.Context, id int64, price domain.PriceSnapshot) (*domain.Reservation, error) {
			gotSnapshot = price
			res := sampleReservation(domain.StatusConfirmed)
			res.Price = price
			return res, nil
		},
	}
	svc := newTestService(repo)

	resp, err := svc.OverridePrice(context.Background(), 42, &models.OverridePriceRequest{
		StaffID:   "staff-1",
		UnitPrice: 3000,
		Reason:    "компенсация за поздний старт",
	})
	require.NoError(t, err)

	// Скидка за присоединение к группе сохраняется
	assert.Equal(t, 5, gotSnapshot.DiscountPercent)
	assert.InDelta(t, 6000.0, gotSnapshot.BaseTotal, 0.001)
	assert.InDelta(t, 300.0, gotSnapshot.DiscountAmount, 0.001)
	assert.InDelta(t, 5700.0, gotSnapshot.Total, 0.001)
	assert.InDelta(t, 5700.0, resp.Price.Total, 0.001)
}

func TestOverridePrice_RequiresStaffAndReason(t *testing.T) {
	svc := newTestService(&mockReservationRepo{})

	_, err := svc.OverridePrice(context.Background(), 42, &models.OverridePriceRequest{UnitPrice: 3000})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.OverridePrice(context.Background(), 42, &models.OverridePriceRequest{
		StaffID:   "staff-1",
		UnitPrice: 3000,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOverridePrice_TerminalStatus(t *testing.T) {
	repo := &mockReservationRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Reservation, error) {
			return sampleReservation(domain.StatusExpired), nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.OverridePrice(context.Background(), 42, &models.OverridePriceRequest{
		StaffID:   "staff-1",
		UnitPrice: 3000,
		Reason:    "причина",
	})
	assert.ErrorIs(t, err, ErrCannotOverridePrice)
}
