package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/recicla-soft/recicla/internal/shared"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEntryValidate(t *testing.T) {
	cases := []struct {
		name     string
		quantity string
		amount   string
		wantKind shared.ErrorKind
	}{
		{"acquisition", "10", "-25.00", ""},
		{"acquisition free", "10", "0", ""},
		{"disposal", "-4", "12.00", ""},
		{"disposal free", "-4", "0", ""},
		{"zero quantity", "0", "0", shared.KindInvalidTransaction},
		{"positive quantity positive amount", "10", "25.00", shared.KindInvalidTransaction},
		{"negative quantity negative amount", "-4", "-12.00", shared.KindInvalidTransaction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := Entry{Quantity: dec(tc.quantity), Amount: dec(tc.amount)}
			err := entry.Validate()
			if tc.wantKind == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, tc.wantKind, shared.KindOf(err))
		})
	}
}

func TestEntryKind(t *testing.T) {
	require.Equal(t, KindAcquisition, Entry{Quantity: dec("10")}.Kind())
	require.Equal(t, KindDisposal, Entry{Quantity: dec("-4")}.Kind())
}

func TestKindValid(t *testing.T) {
	require.True(t, KindAcquisition.Valid())
	require.True(t, KindDisposal.Valid())
	require.False(t, Kind("transfer").Valid())
	require.False(t, Kind("").Valid())
}
