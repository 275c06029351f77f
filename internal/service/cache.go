package service

import (
	"go.uber.org/zap"

	"github.com/yourusername/quizbank-api/internal/domain/repository"
	"github.com/yourusername/quizbank-api/internal/logger"
)

// statsCachePrefix namespaces every cached statistics payload.
const statsCachePrefix = "stats:"

// dropStatsCache forgets cached statistics after a write. Failures are
// logged and ignored.
func dropStatsCache(cache repository.CacheRepository) {
	if cache == nil {
		return
	}
	if err := cache.DeletePrefix(statsCachePrefix); err != nil {
		logger.Get().Warn("failed to drop stats cache", zap.Error(err))
	}
}
