package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by the request DTOs.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
			return entity.IsValidDifficulty(int(fl.Field().Int()))
		})
	})
}
