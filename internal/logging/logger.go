// Package logging задаёт интерфейс структурного логирования для всего бота.
// Реализация по умолчанию обёртывает log/slog.
package logging

import "context"

// Logger: структурный логгер с контекстом.
//
// Аргументы после msg идут парами ключ-значение, например:
//
//	log.Info(ctx, "folder created", "chat_id", chatID, "folder_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn: необычное, но не фатальное.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With возвращает дочерний логгер с постоянными парами ключ-значение.
	With(args ...any) Logger
}
