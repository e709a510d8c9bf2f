package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	tests := []struct {
		name       string
		street     string
		postalCode string
		city       string
		country    string
		wantErr    bool
	}{
		{"valid french address", "12 rue des Lilas", "75011", "Paris", "", false},
		{"postal code with space", "3 place du Marché", "69 002", "Lyon", "fr", false},
		{"invalid french postal code", "12 rue des Lilas", "7501", "Paris", "FR", true},
		{"missing city", "12 rue des Lilas", "75011", "", "", true},
		{"foreign address without french postal rule", "Rue de la Loi 16", "1000", "Bruxelles", "BE", false},
		{"bad country code", "Main street", "1000", "Town", "BEL", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := NewAddress(tt.street, "", tt.postalCode, tt.city, tt.country)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, addr.Country, 2)
		})
	}
}

func TestNewAddress_Empty(t *testing.T) {
	addr, err := NewAddress("", "", "", "", "")
	require.NoError(t, err)
	assert.True(t, addr.IsEmpty())
	assert.Nil(t, addr.Lines())

	v, err := addr.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestAddress_String(t *testing.T) {
	addr, err := NewAddress("12 rue des Lilas", "Bât. B", "75011", "Paris", "FR")
	require.NoError(t, err)
	assert.Equal(t, "12 rue des Lilas, Bât. B, 75011 Paris", addr.String())
}

func TestAddress_ValueScan(t *testing.T) {
	addr, err := NewAddress("12 rue des Lilas", "", "75011", "Paris", "FR")
	require.NoError(t, err)

	v, err := addr.Value()
	require.NoError(t, err)

	var scanned Address
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, addr, scanned)

	assert.Error(t, scanned.Scan(42))
}
