package validation

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout - формат дат без времени (дата рождения, ротация в запросах).
const DateLayout = "2006-01-02"

var (
	passportRe = regexp.MustCompile(`^[0-9]{10}$`)
	phoneRe    = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("passport", isPassportNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("phone_e164", isPhoneNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("date_only", isDateOnly); err != nil {
		return err
	}
	return nil
}

// isPassportNumber - ровно 10 десятичных цифр
func isPassportNumber(fl validator.FieldLevel) bool {
	return passportRe.MatchString(fl.Field().String())
}

// isPhoneNumber - международный формат E.164
func isPhoneNumber(fl validator.FieldLevel) bool {
	return phoneRe.MatchString(fl.Field().String())
}

func isDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}
