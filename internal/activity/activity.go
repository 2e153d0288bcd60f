// Package activity определяет, находится ли предложение в окне ротации.
// Момент времени всегда передаёт вызывающий.
package activity

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"loan-broker/internal/entities"
)

// IsActive: rotation_start <= at <= rotation_end, обе границы включительно.
func IsActive(offer *entities.Offer, at time.Time) bool {
	if offer == nil {
		return false
	}
	return !at.Before(offer.RotationStart) && !at.After(offer.RotationEnd)
}

// NotActive - точное отрицание IsActive.
func NotActive(offer *entities.Offer, at time.Time) bool {
	return !IsActive(offer, at)
}

// ActiveAt - IsActive в виде условия SQL для таблицы offers под алиасом alias.
func ActiveAt(alias string, at time.Time) sq.Sqlizer {
	return sq.And{
		sq.LtOrEq{column(alias, "rotation_start"): at},
		sq.GtOrEq{column(alias, "rotation_end"): at},
	}
}

// NotActiveAt - NotActive в виде условия SQL.
func NotActiveAt(alias string, at time.Time) sq.Sqlizer {
	return sq.Or{
		sq.Gt{column(alias, "rotation_start"): at},
		sq.Lt{column(alias, "rotation_end"): at},
	}
}

// Clock возвращает текущее время; в тестах подменяется фиксированным.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

func column(alias, name string) string {
	if alias == "" {
		return name
	}
	return alias + "." + name
}
