package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-broker/internal/entities"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsActive_Boundaries(t *testing.T) {
	offer := &entities.Offer{RotationStart: date(2010, 1, 1), RotationEnd: date(2020, 1, 1)}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before start", date(2009, 12, 31), false},
		{"exactly start", date(2010, 1, 1), true},
		{"inside", date(2015, 6, 1), true},
		{"exactly end", date(2020, 1, 1), true},
		{"one nanosecond after end", date(2020, 1, 1).Add(time.Nanosecond), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsActive(offer, tc.at))
			assert.Equal(t, !tc.want, NotActive(offer, tc.at))
		})
	}
}

func TestIsActive_NilOffer(t *testing.T) {
	assert.False(t, IsActive(nil, date(2015, 1, 1)))
	assert.True(t, NotActive(nil, date(2015, 1, 1)))
}

func TestIsActive_DifferentZones(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	offer := &entities.Offer{
		RotationStart: time.Date(2010, 1, 1, 3, 0, 0, 0, moscow),
		RotationEnd:   date(2010, 2, 1),
	}
	assert.True(t, IsActive(offer, date(2010, 1, 1)))
}

func TestActiveAt_SQL(t *testing.T) {
	at := date(2015, 1, 1)
	sql, args, err := ActiveAt("o", at).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(o.rotation_start <= ? AND o.rotation_end >= ?)", sql)
	assert.Equal(t, []interface{}{at, at}, args)

	sql, _, err = NotActiveAt("", at).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(rotation_start > ? OR rotation_end < ?)", sql)
}
