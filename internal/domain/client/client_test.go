package client

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tenantID := uuid.New()

	t.Run("individual client", func(t *testing.T) {
		c, err := NewClient(tenantID, Details{
			Type:      ClientTypeIndividual,
			FirstName: "Hélène",
			LastName:  "Lefèvre",
			Email:     "Helene.Lefevre@Mail.FR",
			Phone:     "06 12 34 56 78",
		})
		require.NoError(t, err)
		assert.Equal(t, tenantID, c.TenantID)
		assert.Equal(t, "helene.lefevre@mail.fr", c.Email)
		assert.Equal(t, "+33612345678", c.Phone)
		assert.Equal(t, "Hélène Lefèvre", c.DisplayName())
		assert.Contains(t, c.SearchKey, "helene lefevre")
		assert.Len(t, c.GetDomainEvents(), 1)
	})

	t.Run("company client requires company name", func(t *testing.T) {
		_, err := NewClient(tenantID, Details{Type: ClientTypeCompany, LastName: "Martin"})
		assert.Error(t, err)

		c, err := NewClient(tenantID, Details{Type: ClientTypeCompany, CompanyName: "SCI Les Tilleuls"})
		require.NoError(t, err)
		assert.Equal(t, "SCI Les Tilleuls", c.DisplayName())
	})

	t.Run("individual requires last name", func(t *testing.T) {
		_, err := NewClient(tenantID, Details{Type: ClientTypeIndividual, FirstName: "Paul"})
		assert.Error(t, err)
	})

	t.Run("rejects invalid phone and email", func(t *testing.T) {
		_, err := NewClient(tenantID, Details{Type: ClientTypeIndividual, LastName: "X", Phone: "abc"})
		assert.Error(t, err)
		_, err = NewClient(tenantID, Details{Type: ClientTypeIndividual, LastName: "X", Email: "x@"})
		assert.Error(t, err)
	})

	t.Run("rejects nil tenant and unknown type", func(t *testing.T) {
		_, err := NewClient(uuid.Nil, Details{Type: ClientTypeIndividual, LastName: "X"})
		assert.Error(t, err)
		_, err = NewClient(tenantID, Details{Type: "VIP", LastName: "X"})
		assert.Error(t, err)
	})
}

func TestClient_Update(t *testing.T) {
	c, err := NewClient(uuid.New(), Details{Type: ClientTypeIndividual, LastName: "Martin"})
	require.NoError(t, err)

	require.NoError(t, c.Update(Details{Type: ClientTypeIndividual, FirstName: "Jean", LastName: "Martin", Notes: " portail bleu "}))
	assert.Equal(t, "portail bleu", c.Notes)
	assert.Equal(t, 2, c.Version)

	assert.Error(t, c.Update(Details{Type: ClientTypeIndividual}))
	assert.Equal(t, "Martin", c.LastName)
}

func TestClient_Portal(t *testing.T) {
	c, err := NewClient(uuid.New(), Details{Type: ClientTypeIndividual, LastName: "Martin"})
	require.NoError(t, err)
	assert.False(t, c.CanUsePortal(""))

	token, err := c.EnablePortal()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.True(t, c.CanUsePortal(token))
	assert.False(t, c.CanUsePortal("other"))

	second, err := c.EnablePortal()
	require.NoError(t, err)
	assert.NotEqual(t, token, second)
	assert.False(t, c.CanUsePortal(token))

	c.DisablePortal()
	assert.False(t, c.CanUsePortal(second))
}
