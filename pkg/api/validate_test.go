package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	"github.com/joeydtaylor/terakoya-core/pkg/booking"
)

func detailOf(t *testing.T, err error) string {
	t.Helper()
	require.ErrorIs(t, err, apperr.ErrValidationFailed)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	return ae.Message
}

func TestCheckStruct_Messages(t *testing.T) {
	good := bookingRequest{
		Date:         "2024-04-01",
		Email:        "a@example.com",
		Name:         "生徒",
		TerakoyaType: booking.MiddleschoolTokyo,
		Place:        booking.PlaceKashiwa,
	}
	require.NoError(t, checkStruct(good))

	cases := map[string]struct {
		mutate func(*bookingRequest)
		want   string
	}{
		"missing name": {func(b *bookingRequest) { b.Name = "" }, msgRequired},
		"bad email":    {func(b *bookingRequest) { b.Email = "nope" }, msgEmail},
		"bad date":     {func(b *bookingRequest) { b.Date = "2024/04/01" }, msgDate},
		"missing type": {func(b *bookingRequest) { b.TerakoyaType = "" }, msgRequired},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			b := good
			tc.mutate(&b)
			assert.Equal(t, tc.want, detailOf(t, checkStruct(b)))
		})
	}
}

func TestCheckStruct_Credentials(t *testing.T) {
	assert.Equal(t, msgRequired, detailOf(t, checkStruct(credentials{Email: "a@example.com"})))
	assert.Equal(t, msgEmail, detailOf(t, checkStruct(credentials{Email: "a@", Password: "x"})))
	assert.NoError(t, checkStruct(credentials{Email: "a@example.com", Password: "x"}))
}

func TestCheckVar(t *testing.T) {
	assert.NoError(t, checkVar(userID, tagUserUUID))
	assert.NoError(t, checkVar("{"+userID+"}", tagUserUUID))
	assert.Equal(t, msgUUID, detailOf(t, checkVar("user-1", tagUserUUID)))

	assert.NoError(t, checkVar("2024-02-29", tagDate))
	assert.Equal(t, msgDate, detailOf(t, checkVar("2024-02-30", tagDate)))

	assert.NoError(t, checkVar("", "omitempty,email"))
	assert.Equal(t, msgEmail, detailOf(t, checkVar("x", "omitempty,email")))
}
