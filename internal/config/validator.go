package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aleister1102/adstrace/internal/common"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := strings.ToLower(fl.Field().String())
		switch level {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		format := strings.ToLower(fl.Field().String())
		switch format {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	if err := validate.Struct(cfg); err != nil {
		var invalidErr *validator.InvalidValidationError
		if errors.As(err, &invalidErr) {
			return fmt.Errorf("config validation internal error: %w", err)
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			messages := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				messages = append(messages, fmt.Sprintf("field '%s' failed on '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", common.ErrInvalidConfiguration, strings.Join(messages, "; "))
		}
		return err
	}

	if cfg.RunnerConfig.SleepMaxMillis < cfg.RunnerConfig.SleepMinMillis {
		return fmt.Errorf("%w: sleep_max_millis (%d) below sleep_min_millis (%d)",
			common.ErrInvalidConfiguration, cfg.RunnerConfig.SleepMaxMillis, cfg.RunnerConfig.SleepMinMillis)
	}

	if cfg.HTTPClientConfig.Retry.MaxDelaySecs < cfg.HTTPClientConfig.Retry.BaseDelaySecs {
		return fmt.Errorf("%w: retry max_delay_secs (%d) below base_delay_secs (%d)",
			common.ErrInvalidConfiguration, cfg.HTTPClientConfig.Retry.MaxDelaySecs, cfg.HTTPClientConfig.Retry.BaseDelaySecs)
	}

	return nil
}
