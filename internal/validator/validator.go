// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"finaudy/internal/avatar"
	"finaudy/internal/models"
	"finaudy/internal/schedule"
)

var (
	hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	hhmmRegex     = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("hhmm", validateHHMM)
		_ = v.RegisterValidation("transaction_kind", validateTransactionKind)
		_ = v.RegisterValidation("category_type", validateTransactionKind)
		_ = v.RegisterValidation("period_type", validatePeriodType)
		_ = v.RegisterValidation("frequency", validateFrequency)
		_ = v.RegisterValidation("date_filter", validateDateFilter)
		_ = v.RegisterValidation("notification_kind", validateNotificationKind)
		_ = v.RegisterValidation("feature", validateFeature)
		_ = v.RegisterValidation("avatar", validateAvatar)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateHHMM(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

func validateTransactionKind(fl validator.FieldLevel) bool {
	return schedule.EntryKind(fl.Field().String()).Valid()
}

func validatePeriodType(fl validator.FieldLevel) bool {
	return schedule.PeriodType(fl.Field().String()).Valid()
}

func validateFrequency(fl validator.FieldLevel) bool {
	return schedule.Frequency(fl.Field().String()).Valid()
}

func validateDateFilter(fl validator.FieldLevel) bool {
	return schedule.FilterKind(fl.Field().String()).Valid()
}

func validateNotificationKind(fl validator.FieldLevel) bool {
	return models.NotificationKind(fl.Field().String()).Valid()
}

func validateFeature(fl validator.FieldLevel) bool {
	return models.Feature(fl.Field().String()).Valid()
}

func validateAvatar(fl validator.FieldLevel) bool {
	return avatar.Valid(fl.Field().String())
}
