package submit_reservation

import "errors"

var (
	// ErrResourceNotFound возвращается, когда тип ресурса не описан в каталоге
	ErrResourceNotFound = errors.New("submit_reservation: resource type not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("submit_reservation: invalid input data")

	// ErrInvalidDate возвращается при некорректной дате бронирования
	ErrInvalidDate = errors.New("submit_reservation: invalid reservation date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение
	// advanceBookingDays ресурса
	ErrDateTooFarInFuture = errors.New("submit_reservation: date is too far in the future")

	// ErrClosed возвращается при закрытой дате/интервале или выходе за
	// границу закрытия ресурса
	ErrClosed = errors.New("submit_reservation: resource is closed")

	// ErrInvalidTimeSlot возвращается при старте вне канонической сетки
	// (и без существующей группы, к которой можно присоединиться)
	ErrInvalidTimeSlot = errors.New("submit_reservation: invalid time slot")

	// ErrTooLateToBook возвращается при нарушении минимального времени
	// до начала для бронирований на сегодня
	ErrTooLateToBook = errors.New("submit_reservation: too late to book this slot")

	// ErrSlotConflict возвращается при пересечении с несовместимым
	// существующим бронированием
	ErrSlotConflict = errors.New("submit_reservation: slot conflicts with an existing reservation")

	// ErrCapacityExceeded возвращается, когда запрошенные места превышают
	// остаток ёмкости группы или пула
	ErrCapacityExceeded = errors.New("submit_reservation: capacity exceeded")

	// ErrRateLimited возвращается при срабатывании предохранителей
	// rate limiter'а
	ErrRateLimited = errors.New("submit_reservation: rate limited")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("submit_reservation: internal error")
)
