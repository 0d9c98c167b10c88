package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatMap_Resolve(t *testing.T) {
	m := NewSeatMap(3, 2) // columns A..C, rows 1..2

	tests := []struct {
		code    string
		want    SeatAddr
		wantErr bool
	}{
		{code: "A1", want: SeatAddr{Row: 0, Col: 0}},
		{code: "C2", want: SeatAddr{Row: 1, Col: 2}},
		{code: "B02", want: SeatAddr{Row: 1, Col: 1}},
		{code: "A", wantErr: true},
		{code: "", wantErr: true},
		{code: "a1", wantErr: true},
		{code: "D1", wantErr: true},
		{code: "A3", wantErr: true},
		{code: "A0", wantErr: true},
		{code: "A-1", wantErr: true},
		{code: "A1x", wantErr: true},
		{code: "1A", wantErr: true},
		{code: "A99999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := m.Resolve(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeatFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.code[:1], got.Code()[:1])
		})
	}
}

func TestSeatMap_TryReserveIsAllOrNothing(t *testing.T) {
	m := NewSeatMap(3, 2)

	_, err := m.TryReserve([]string{"A1"})
	require.NoError(t, err)

	_, err = m.TryReserve([]string{"B1", "A1"})
	assert.ErrorIs(t, err, ErrSeatNotAvailable)
	st, _ := m.Status(SeatAddr{Row: 0, Col: 1})
	assert.Equal(t, SeatFree, st, "B1 must stay free after a failed request")

	_, err = m.TryReserve([]string{"B1", "Z9"})
	assert.ErrorIs(t, err, ErrInvalidSeatFormat)
	assert.Equal(t, 5, m.Available())
}

func TestSeatMap_TryReserveCollapsesDuplicates(t *testing.T) {
	m := NewSeatMap(2, 2)

	addrs, err := m.TryReserve([]string{"A1", "A1", "B2"})
	require.NoError(t, err)
	assert.Equal(t, []SeatAddr{{0, 0}, {1, 1}}, addrs)
	assert.Equal(t, 2, m.Reserved())
}

func TestSeatMap_ReleaseIsIdempotent(t *testing.T) {
	m := NewSeatMap(2, 2)
	addrs, err := m.TryReserve([]string{"A1", "B1"})
	require.NoError(t, err)

	m.Release(addrs)
	m.Release(addrs)
	m.Release([]SeatAddr{{Row: 7, Col: 7}})
	assert.Equal(t, 4, m.Available())
	assert.Equal(t, 4, m.Total())
}

func TestSeatMap_ZeroSized(t *testing.T) {
	m := NewSeatMap(0, -1)
	assert.Equal(t, 0, m.Total())
	_, err := m.Resolve("A1")
	assert.ErrorIs(t, err, ErrInvalidSeatFormat)
}

func TestError_IsMatchesDetailedCopies(t *testing.T) {
	err := InvalidArgument("columns")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "InvalidArgument columns", err.Error())

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, e.Kind)
	assert.Equal(t, "validation", e.Kind.String())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("AIRLINE")
	assert.True(t, ok)
	assert.Equal(t, RoleAirline, r)
	assert.Equal(t, "CUSTOMER", RoleCustomer.String())

	_, ok = ParseRole("customer")
	assert.False(t, ok)
}
