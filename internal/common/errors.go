// Package common: общие ошибки всех слоёв бота.
// Проверяются через errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Ошибки ввода: сцена переспрашивает и остаётся на шаге.
	ErrValidation  = errors.New("validation error")
	ErrUnsupported = errors.New("unsupported content")

	// Ошибки репозитория.
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("folder name already exists")

	// Проверка пароля.
	ErrUnauthorized = errors.New("unauthorized")

	// Вложение или результат больше лимита.
	ErrTooLarge = errors.New("resource too large")

	// Сбой сети, выгрузки или процесса загрузчика.
	ErrExternalService = errors.New("external service error")

	ErrTransferFailed          = fmt.Errorf("%w: transfer failed", ErrExternalService)
	ErrDownloadProducedNothing = fmt.Errorf("%w: download produced nothing", ErrExternalService)

	// Сбой файловой системы.
	ErrStorage = errors.New("storage error")
)
