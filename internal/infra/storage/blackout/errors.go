package blackout

import "errors"

var (
	// ErrBlackoutDateNotFound возвращается, когда дата не закрыта полностью
	ErrBlackoutDateNotFound = errors.New("blackout.repository: blackout date not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("blackout.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("blackout.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("blackout.repository: failed to scan row")
)
