package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	blackoutRepo "github.com/lesnaya-zaimka/booking-service/internal/infra/storage/blackout"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// --- Mocks ---

type mockReservationRepo struct {
	listFn func(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
	calls  int
}

func (m *mockReservationRepo) ListWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	m.calls++
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

type mockBlackoutRepo struct {
	intervalsFn func(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.BlackoutInterval, error)
	dateFn      func(ctx context.Context, resourceType domain.ResourceType, date time.Time) (*domain.BlackoutDate, error)
}

func (m *mockBlackoutRepo) ListIntervals(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.BlackoutInterval, error) {
	if m.intervalsFn != nil {
		return m.intervalsFn(ctx, resourceType, date)
	}
	return nil, nil
}

func (m *mockBlackoutRepo) GetBlackoutDate(ctx context.Context, resourceType domain.ResourceType, date time.Time) (*domain.BlackoutDate, error) {
	if m.dateFn != nil {
		return m.dateFn(ctx, resourceType, date)
	}
	return nil, blackoutRepo.ErrBlackoutDateNotFound
}

type mockPricingRepo struct {
	listFn func(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.PriceOverride, error)
}

func (m *mockPricingRepo) ListForDate(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.PriceOverride, error) {
	if m.listFn != nil {
		return m.listFn(ctx, resourceType, date)
	}
	return nil, nil
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

func testCatalog() domain.Catalog {
	return domain.Catalog{
		"quad_safari": {
			Type:                "quad_safari",
			Model:               domain.ModelSharedPool,
			OpenTime:            types.TimeString("09:00"),
			CloseTime:           types.TimeString("20:00"),
			SlotStepMinutes:     30,
			Capacity:            4,
			BufferMinutes:       30,
			MinNoticeMinutes:    120,
			JoinDiscountPercent: 5,
			Variants: []domain.Variant{
				{Code: "short", Name: "Малый круг", DurationMinutes: 60, UnitPrice: 3500},
			},
		},
		"bath": {
			Type:             "bath",
			Model:            domain.ModelFixedUnit,
			OpenTime:         types.TimeString("10:00"),
			CloseTime:        types.TimeString("23:00"),
			SlotStepMinutes:  60,
			MinNoticeMinutes: 180,
			Variants: []domain.Variant{
				{Code: "session", Name: "Сеанс", DurationMinutes: 180, UnitPrice: 5000},
			},
			Units: []domain.Unit{
				{ID: "B1", Name: "Баня у реки"},
				{ID: "B2", Name: "Баня лесная"},
			},
		},
	}
}

func newTestUseCase(resRepo *mockReservationRepo, bRepo *mockBlackoutRepo, pRepo *mockPricingRepo, now time.Time) *UseCase {
	return &UseCase{
		catalog:         testCatalog(),
		reservationRepo: resRepo,
		blackoutRepo:    bRepo,
		pricingRepo:     pRepo,
		timeProvider:    &fixedTimeProvider{now: now},
		logger:          nopLogger{},
	}
}

func poolReservation(start string, variant string, units int) *domain.Reservation {
	v := variant
	return &domain.Reservation{
		Model:           domain.ModelSharedPool,
		Variant:         &v,
		StartTime:       types.TimeString(start),
		DurationMinutes: 60,
		Units:           units,
		Status:          domain.StatusConfirmed,
	}
}

var (
	testNow  = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	testDate = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
)

// --- Tests ---

func TestExecute_UnknownResource(t *testing.T) {
	uc := newTestUseCase(&mockReservationRepo{}, &mockBlackoutRepo{}, &mockPricingRepo{}, testNow)

	_, err := uc.Execute(context.Background(), &Request{ResourceType: "spa", Date: testDate})
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestExecute_BlackoutDateShortCircuits(t *testing.T) {
	reason := "санитарный день"
	resRepo := &mockReservationRepo{}
	bRepo := &mockBlackoutRepo{
		dateFn: func(ctx context.Context, resourceType domain.ResourceType, date time.Time) (*domain.BlackoutDate, error) {
			return &domain.BlackoutDate{ResourceType: resourceType, Date: date, Reason: &reason}, nil
		},
	}
	uc := newTestUseCase(resRepo, bRepo, &mockPricingRepo{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "quad_safari", Date: testDate})
	require.NoError(t, err)

	assert.True(t, resp.Blocked)
	require.NotNil(t, resp.Reason)
	assert.Equal(t, reason, *resp.Reason)
	assert.Empty(t, resp.Slots)

	// Короткое замыкание: бронирования не запрашивались
	assert.Zero(t, resRepo.calls)
}

func TestExecute_WholeDayIntervalBlocks(t *testing.T) {
	reason := "техобслуживание"
	bRepo := &mockBlackoutRepo{
		intervalsFn: func(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.BlackoutInterval, error) {
			return []*domain.BlackoutInterval{{Reason: &reason}}, nil
		},
	}
	uc := newTestUseCase(&mockReservationRepo{}, bRepo, &mockPricingRepo{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "quad_safari", Date: testDate})
	require.NoError(t, err)

	assert.True(t, resp.Blocked)
	assert.Empty(t, resp.Slots)
}

func TestExecute_EmptyDayAllSlotsOpen(t *testing.T) {
	uc := newTestUseCase(&mockReservationRepo{}, &mockBlackoutRepo{}, &mockPricingRepo{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "quad_safari", Date: testDate})
	require.NoError(t, err)

	// 09:00 .. 19:00 с шагом 30
	require.Len(t, resp.Slots, 21)
	for _, slot := range resp.Slots {
		assert.Equal(t, domain.SlotOpen, slot.State)
		assert.Equal(t, 4, slot.AvailableCapacity)
		assert.Equal(t, 3500.0, slot.UnitPrice)
		assert.Nil(t, slot.DiscountedUnitPrice)
	}
}

func TestExecute_JoinableGroupWithDiscount(t *testing.T) {
	resRepo := &mockReservationRepo{
		listFn: func(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
			return []*domain.Reservation{poolReservation("10:00", "short", 2)}, nil
		},
	}
	uc := newTestUseCase(resRepo, &mockBlackoutRepo{}, &mockPricingRepo{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "quad_safari", Date: testDate})
	require.NoError(t, err)

	byStart := make(map[types.TimeString]domain.Slot)
	for _, slot := range resp.Slots {
		byStart[slot.StartTime] = slot
	}

	// Точное совпадение старта — joinable с остатком и скидкой
	joinable := byStart[types.TimeString("10:00")]
	assert.Equal(t, domain.SlotJoinable, joinable.State)
	assert.Equal(t, 2, joinable.AvailableCapacity)
	require.NotNil(t, joinable.DiscountedUnitPrice)
	assert.InDelta(t, 3325.0, *joinable.DiscountedUnitPrice, 0.001)

	// Пересечение с занятым окном [10:00, 11:30) — full
	for _, start := range []types.TimeString{"09:00", "09:30", "10:30", "11:00"} {
		assert.Equal(t, domain.SlotFull, byStart[start].State, "slot %s", start)
		assert.Equal(t, 0, byStart[start].AvailableCapacity)
	}

	// Граничащий слот свободен
	assert.Equal(t, domain.SlotOpen, byStart[types.TimeString("11:30")].State)
}

func TestExecute_OffGridReservationProducesSyntheticSlot(t *testing.T) {
	resRepo := &mockReservationRepo{
		listFn: func(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
			return []*domain.Reservation{poolReservation("10:15", "short", 2)}, nil
		},
	}
	uc := newTestUseCase(resRepo, &mockBlackoutRepo{}, &mockPricingRepo{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "quad_safari", Date: testDate})
	require.NoError(t, err)

	var synthetic *domain.Slot
	for i := range resp.Slots {
		if resp.Slots[i].StartTime == types.TimeString("10:15") {
			synthetic = &resp.Slots[i]
			break
		}
	}

	require.NotNil(t, synthetic, "synthetic off-grid slot must be present")
	assert.True(t, synthetic.OffGrid)
	assert.Equal(t, domain.SlotJoinable, synthetic.State)
	assert.Equal(t, 2, synthetic.AvailableCapacity)
	require.NotNil(t, synthetic.DiscountedUnitPrice)
}

func TestExecute_BlackoutIntervalMarksSlotsBlocked(t *testing.T) {
	start := types.TimeString("12:00")
	end := types.TimeString("14:00")
	bRepo := &mockBlackoutRepo{
		intervalsFn: func(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.BlackoutInterval, error) {
			return []*domain.BlackoutInterval{{StartTime: &start, EndTime: &end}}, nil
		},
	}
	uc := newTestUseCase(&mockReservationRepo{}, bRepo, &mockPricingRepo{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "quad_safari", Date: testDate})
	require.NoError(t, err)

	byStart := make(map[types.TimeString]domain.Slot)
	for _, slot := range resp.Slots {
		byStart[slot.StartTime] = slot
	}

	// Часовой слот 11:30 заканчивается в 12:30 и задевает закрытие
	assert.Equal(t, domain.SlotBlocked, byStart[types.TimeString("11:30")].State)
	assert.Equal(t, domain.SlotBlocked, byStart[types.TimeString("13:30")].State)

	// Граничащие слоты свободны
	assert.Equal(t, domain.SlotOpen, byStart[types.TimeString("11:00")].State)
	assert.Equal(t, domain.SlotOpen, byStart[types.TimeString("14:00")].State)

	assert.Len(t, resp.BlackoutIntervals, 1)
}

func TestExecute_TodayHidesPastCutoffSlots(t *testing.T) {
	// Сейчас 16:00, запас 2 часа: водораздел 18:00
	now := time.Date(2026, 8, 28, 16, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&mockReservationRepo{}, &mockBlackoutRepo{}, &mockPricingRepo{}, now)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "quad_safari", Date: now})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, types.TimeString("18:00"), resp.Slots[0].StartTime)
	for _, slot := range resp.Slots {
		assert.False(t, slot.StartTime.IsBefore(types.TimeString("18:00")))
	}
}

func TestExecute_PastDateReturnsEmpty(t *testing.T) {
	uc := newTestUseCase(&mockReservationRepo{}, &mockBlackoutRepo{}, &mockPricingRepo{}, testNow)
	past := testNow.AddDate(0, 0, -1)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "quad_safari", Date: past})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.False(t, resp.Blocked)
}

func TestExecute_FixedUnitPerUnitAvailability(t *testing.T) {
	unitID := "B1"
	resRepo := &mockReservationRepo{
		listFn: func(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
			return []*domain.Reservation{{
				Model:           domain.ModelFixedUnit,
				UnitID:          &unitID,
				StartTime:       types.TimeString("14:00"),
				DurationMinutes: 180,
				Units:           1,
				Status:          domain.StatusConfirmed,
			}}, nil
		},
	}
	uc := newTestUseCase(resRepo, &mockBlackoutRepo{}, &mockPricingRepo{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "bath", Date: testDate})
	require.NoError(t, err)

	type key struct {
		start types.TimeString
		unit  string
	}
	byKey := make(map[key]domain.Slot)
	for _, slot := range resp.Slots {
		byKey[key{slot.StartTime, *slot.UnitID}] = slot
	}

	// B1 занята в [14:00, 17:00): пересекающиеся кандидаты full
	assert.Equal(t, domain.SlotFull, byKey[key{"14:00", "B1"}].State)
	assert.Equal(t, domain.SlotFull, byKey[key{"16:00", "B1"}].State)

	// B2 в то же время свободна
	assert.Equal(t, domain.SlotOpen, byKey[key{"14:00", "B2"}].State)

	// Граничащий интервал B1 свободен
	assert.Equal(t, domain.SlotOpen, byKey[key{"17:00", "B1"}].State)
}

func TestExecute_PriceOverrideApplies(t *testing.T) {
	pRepo := &mockPricingRepo{
		listFn: func(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.PriceOverride, error) {
			variant := "short"
			return []*domain.PriceOverride{{ResourceType: resourceType, Variant: &variant, Date: &date, UnitPrice: 4000}}, nil
		},
	}
	uc := newTestUseCase(&mockReservationRepo{}, &mockBlackoutRepo{}, pRepo, testNow)

	resp, err := uc.Execute(context.Background(), &Request{ResourceType: "quad_safari", Date: testDate})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, 4000.0, resp.Slots[0].UnitPrice)
}

func TestExecute_IsIdempotent(t *testing.T) {
	resRepo := &mockReservationRepo{
		listFn: func(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
			return []*domain.Reservation{poolReservation("10:00", "short", 2)}, nil
		},
	}
	uc := newTestUseCase(resRepo, &mockBlackoutRepo{}, &mockPricingRepo{}, testNow)
	req := &Request{ResourceType: "quad_safari", Date: testDate}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
}
