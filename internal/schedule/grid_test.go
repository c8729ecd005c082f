package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

func poolConfig() *domain.ResourceConfig {
	return &domain.ResourceConfig{
		Type:             "quad_safari",
		Model:            domain.ModelSharedPool,
		OpenTime:         types.TimeString("09:00"),
		CloseTime:        types.TimeString("20:00"),
		SlotStepMinutes:  30,
		Capacity:         4,
		BufferMinutes:    30,
		MinNoticeMinutes: 120,
	}
}

func TestFullGrid(t *testing.T) {
	cfg := poolConfig()

	slots := FullGrid(cfg, 60)

	// 09:00 .. 19:00 с шагом 30: последний часовой слот, чей конец
	// не выходит за 20:00
	assert.Equal(t, types.TimeString("09:00"), slots[0])
	assert.Equal(t, types.TimeString("19:00"), slots[len(slots)-1])
	assert.Len(t, slots, 21)
}

func TestFullGrid_LongerVariantEndsEarlier(t *testing.T) {
	cfg := poolConfig()

	short := FullGrid(cfg, 60)
	long := FullGrid(cfg, 120)

	// Двухчасовой вариант перестаёт помещаться на час раньше
	assert.Equal(t, types.TimeString("18:00"), long[len(long)-1])
	assert.Len(t, long, len(short)-2)
}

func TestFullGrid_StepPastMidnightEndsGrid(t *testing.T) {
	// Крупный шаг сетки уводит следующий кандидат за полночь:
	// сетка заканчивается, а не превращается в ошибку
	cfg := &domain.ResourceConfig{
		Type:            "bath",
		Model:           domain.ModelFixedUnit,
		OpenTime:        types.TimeString("10:00"),
		CloseTime:       types.TimeString("23:00"),
		SlotStepMinutes: 480,
	}

	slots := FullGrid(cfg, 60)
	assert.Equal(t, []types.TimeString{"10:00", "18:00"}, slots)
}

func TestFullGrid_SlotEndPastMidnightEndsGrid(t *testing.T) {
	// Конец первого же слота уходит за полночь: сетка пуста, без ошибки
	cfg := &domain.ResourceConfig{
		Type:            "bath",
		Model:           domain.ModelFixedUnit,
		OpenTime:        types.TimeString("20:00"),
		CloseTime:       types.TimeString("23:00"),
		SlotStepMinutes: 60,
	}

	slots := FullGrid(cfg, 300)
	assert.Empty(t, slots)
}

func TestGenerateGrid_FutureDateReturnsFullGrid(t *testing.T) {
	cfg := poolConfig()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	slots := GenerateGrid(cfg, 60, date, now)
	assert.Len(t, slots, 21)
}

func TestGenerateGrid_PastDateIsEmpty(t *testing.T) {
	cfg := poolConfig()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	slots := GenerateGrid(cfg, 60, date, now)
	assert.Empty(t, slots)
}

func TestGenerateGrid_TodayFiltersByMinNotice(t *testing.T) {
	cfg := poolConfig()
	// Сейчас 17:45, минимальный запас 2 часа: водораздел 19:45
	now := time.Date(2026, 8, 28, 17, 45, 0, 0, time.UTC)
	date := now

	slots := GenerateGrid(cfg, 60, date, now)

	// 19:30 раньше водораздела и отбрасывается; часовых слотов позже
	// 19:00 в сетке нет вовсе
	assert.Empty(t, slots)
}

func TestGenerateGrid_TodayWatermarkIsInclusive(t *testing.T) {
	cfg := poolConfig()
	// Водораздел ровно 14:00: слот со стартом 14:00 остаётся
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	slots := GenerateGrid(cfg, 60, now, now)
	require.NotEmpty(t, slots)
	assert.Equal(t, types.TimeString("14:00"), slots[0])
}

func TestFitsOperatingHours(t *testing.T) {
	cfg := poolConfig()

	assert.True(t, FitsOperatingHours(cfg, types.TimeString("09:00"), 60))
	assert.True(t, FitsOperatingHours(cfg, types.TimeString("19:00"), 60))

	// Конец выходит за закрытие
	assert.False(t, FitsOperatingHours(cfg, types.TimeString("19:30"), 60))

	// Старт до открытия
	assert.False(t, FitsOperatingHours(cfg, types.TimeString("08:30"), 60))
}

func TestOnGrid(t *testing.T) {
	cfg := poolConfig()

	assert.True(t, OnGrid(cfg, types.TimeString("09:00")))
	assert.True(t, OnGrid(cfg, types.TimeString("13:30")))

	// Внесеточный старт (создаётся только персоналом вручную)
	assert.False(t, OnGrid(cfg, types.TimeString("13:15")))
	assert.False(t, OnGrid(cfg, types.TimeString("08:30")))
}

func TestPastCutoff(t *testing.T) {
	now := time.Date(2026, 8, 28, 17, 45, 0, 0, time.UTC)

	// Сегодня, старт раньше водораздела 19:45
	assert.True(t, PastCutoff(types.TimeString("19:30"), now, now, 120))

	// Сегодня, старт ровно на водоразделе — допустим
	assert.False(t, PastCutoff(types.TimeString("19:45"), now, now, 120))

	// Будущая дата не фильтруется
	tomorrow := now.AddDate(0, 0, 1)
	assert.False(t, PastCutoff(types.TimeString("09:00"), tomorrow, now, 120))
}
