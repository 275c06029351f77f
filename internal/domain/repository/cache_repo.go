package repository

import (
	"time"
)

// CacheRepository is a small JSON cache. A miss is reported as apperrors.ErrNotFound.
type CacheRepository interface {
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(prefix string) error
}
