package services

import "log/slog"

// discardLogger is used for scratch models built only to run structural
// validation.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
