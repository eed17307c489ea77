package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid morning", input: "09:00"},
		{name: "valid midnight", input: "00:00"},
		{name: "valid last minute", input: "23:59"},
		{name: "invalid hour", input: "24:00", wantErr: true},
		{name: "invalid minute", input: "10:60", wantErr: true},
		{name: "with seconds", input: "09:00:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, ts.String())
		})
	}
}

func TestNewTimeStringFromMinutes(t *testing.T) {
	ts, err := NewTimeStringFromMinutes(0)
	require.NoError(t, err)
	assert.Equal(t, TimeString("00:00"), ts)

	ts, err = NewTimeStringFromMinutes(1439)
	require.NoError(t, err)
	assert.Equal(t, TimeString("23:59"), ts)

	_, err = NewTimeStringFromMinutes(-1)
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromMinutes(1440)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Minutes(t *testing.T) {
	ts := TimeString("10:30")
	m, err := ts.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 630, m)

	_, err = TimeString("bad").Minutes()
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Hour(t *testing.T) {
	assert.Equal(t, 14, TimeString("14:45").Hour())
	assert.Equal(t, 0, TimeString("00:59").Hour())
	assert.Equal(t, -1, TimeString("bad").Hour())
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("09:00")

	next, err := ts.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:30"), next)

	next, err = ts.AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:30"), next)

	// Сдвиг за пределы суток - ошибка
	_, err = TimeString("23:45").AddMinutes(30)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Comparison(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("09:00"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("10:00").IsAfter("09:59"))

	// Некорректные значения никогда не "раньше"
	assert.False(t, TimeString("bad").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("bad"))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	// TIME колонки приходят с секундами
	require.NoError(t, ts.Scan("10:30:00"))
	assert.Equal(t, TimeString("10:30"), ts)

	require.NoError(t, ts.Scan([]byte("08:15")))
	assert.Equal(t, TimeString("08:15"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	require.Error(t, ts.Scan(42))
}

func TestTimeString_JSON(t *testing.T) {
	ts := TimeString("12:00")

	data, err := ts.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"12:00"`, string(data))

	var parsed TimeString
	require.NoError(t, parsed.UnmarshalJSON([]byte(`"18:45"`)))
	assert.Equal(t, TimeString("18:45"), parsed)

	require.Error(t, parsed.UnmarshalJSON([]byte(`"25:00"`)))
}
