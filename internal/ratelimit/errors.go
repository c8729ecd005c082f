package ratelimit

import "errors"

var (
	// ErrTooManyPending возвращается, когда у гостя слишком много
	// незавершённых бронирований
	ErrTooManyPending = errors.New("ratelimit: too many pending reservations")

	// ErrOriginLimitExceeded возвращается при превышении лимита заявок
	// с одного сетевого адреса
	ErrOriginLimitExceeded = errors.New("ratelimit: origin submission limit exceeded")
)
