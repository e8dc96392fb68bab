package closenicely

import (
	"io"

	"go.uber.org/zap"
)

// OrDebug closes closer, logging any failure at debug level.
func OrDebug(closer io.Closer) {
	FuncOrDebug(closer.Close)
}

// FuncOrDebug is OrDebug for close-like functions such as (*zap.Logger).Sync.
func FuncOrDebug(closer func() error) {
	if err := closer(); err != nil {
		zap.L().Named("close").Debug("Failed to close resource", zap.Error(err))
	}
}
