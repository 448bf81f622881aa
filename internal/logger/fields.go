package logger

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/justext/internal/domain"
)

// Token logs a usage token by its short prefix; full IDs are bearer secrets.
func Token(id string) zap.Field {
	return zap.String("token", domain.ShortTokenID(id))
}
