package service

import (
	"errors"

	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
