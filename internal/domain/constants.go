package domain

// Default configuration values
const (
	DefaultSlotStepMinutes     = 30
	DefaultBufferMinutes       = 0
	DefaultMinNoticeMinutes    = 120 // 2 hours
	DefaultJoinDiscountPercent = 5
	DefaultAdvanceBookingDays  = 0 // 0 = unlimited
)

// Rate limiting defaults
const (
	// DefaultMaxPendingPerPhone ограничение на число незавершённых
	// бронирований одного гостя
	DefaultMaxPendingPerPhone = 3

	// DefaultMaxSubmitsPerOriginHour скользящее окно заявок с одного
	// сетевого адреса для ресурсов без верификации личности
	DefaultMaxSubmitsPerOriginHour = 10
)

// Reservation lifecycle defaults
const (
	// DefaultPendingTTLMinutes время жизни pending бронирования до
	// автоматического перевода в expired
	DefaultPendingTTLMinutes = 30

	// DefaultExpirySweepIntervalMinutes период фоновой уборки просроченных
	DefaultExpirySweepIntervalMinutes = 5
)

// Business validation constants
const (
	MinSlotStepMinutes          = 5
	MaxSlotStepMinutes          = 480
	MinUnitsPerRequest          = 1
	MaxCommentLength            = 500
	MaxCustomerNameLength       = 200
	MinPhoneDigits              = 10
	MaxPhoneDigits              = 15
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses список статусов, в которых бронирование удерживает ресурс.
// Используется при подсчёте конфликтов и свободных мест.
var ActiveStatuses = []ReservationStatus{
	StatusPending,
	StatusAwaitingPrepayment,
	StatusConfirmed,
}

// InactiveStatuses список статусов, не удерживающих ресурс
var InactiveStatuses = []ReservationStatus{
	StatusCompleted,
	StatusCancelled,
	StatusExpired,
}
