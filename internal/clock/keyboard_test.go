package clock

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCallback(t *testing.T) {
	id := "3f8c2a8e-1b7d-4c55-9a11-0c2d2e6b9f10"
	tests := []struct {
		kind, value string
	}{
		{KindName, ""},
		{KindAction, "in"},
		{KindAction, "out"},
		{KindPick, "3"},
	}

	for _, tt := range tests {
		data := EncodeCallback(id, tt.kind, tt.value)
		assert.True(t, strings.HasPrefix(data, CallbackPrefix))
		assert.LessOrEqual(t, len(data), 64)

		gotID, kind, value, err := DecodeCallback(data)
		require.NoError(t, err, data)
		assert.Equal(t, id, gotID)
		assert.Equal(t, tt.kind, kind)
		assert.Equal(t, tt.value, value)
	}
}

func TestDecodeCallback_Invalid(t *testing.T) {
	for _, data := range []string{
		"",
		"arrow_x_left",
		"clock_",
		"clock_id",
		"clock__name",
		"clock_id_name_extra",
		"clock_id_act",
		"clock_id_pick",
		"clock_id_dance_1",
	} {
		t.Run(data, func(t *testing.T) {
			_, _, _, err := DecodeCallback(data)
			assert.ErrorIs(t, err, ErrInvalidCallback)
		})
	}
}

func TestRosterKeyboard(t *testing.T) {
	r := DefaultRoster()
	markup := RosterKeyboard("wid", r)

	require.Len(t, markup.InlineKeyboard, 2)
	var labels []string
	for _, row := range markup.InlineKeyboard {
		assert.LessOrEqual(t, len(row), 2)
		for _, btn := range row {
			labels = append(labels, btn.Text)
			_, kind, value, err := DecodeCallback(btn.Data)
			require.NoError(t, err)
			assert.Equal(t, KindPick, kind)

			name, err := ParsePick(r, value)
			require.NoError(t, err)
			assert.Equal(t, btn.Text, name)
		}
	}
	assert.Equal(t, r.Names(), labels)
}

func TestParsePick_Invalid(t *testing.T) {
	r := DefaultRoster()
	for _, v := range []string{"x", "-1", "99"} {
		_, err := ParsePick(r, v)
		assert.ErrorIs(t, err, ErrUnknownRosterEntry)
	}
}

func TestActionKeyboard(t *testing.T) {
	markup := ActionKeyboard("wid")
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)

	_, _, v, err := DecodeCallback(row[0].Data)
	require.NoError(t, err)
	assert.Equal(t, "in", v)
	_, _, v, err = DecodeCallback(row[1].Data)
	require.NoError(t, err)
	assert.Equal(t, "out", v)
}

func TestFormatSummary(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	msg := FormatSummary(Summary{
		Name:        "Somchai",
		Action:      ActionClockIn,
		Participant: "Alice",
		Timestamp:   time.Date(2024, 3, 1, 8, 30, 5, 0, loc),
	}, "@somchai")

	assert.Contains(t, msg, "Clock in successful")
	assert.Contains(t, msg, "Name: Somchai")
	assert.Contains(t, msg, "Employee: Alice")
	assert.Contains(t, msg, "2024-03-01 08:30:05 ICT")
	assert.Contains(t, msg, "@somchai")
}

func TestFormatError(t *testing.T) {
	assert.Contains(t, FormatError(ErrNotOwner), "not your")
	assert.Contains(t, FormatError(ErrSessionExpired), "expired")
	assert.Contains(t, FormatError(ErrEmptyName), "empty")
	assert.Contains(t, FormatError(errors.New("other")), "Something went wrong")
}
