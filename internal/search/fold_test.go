package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"localserv/internal/domain"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "sao jose dos campos", Fold("  São José dos Campos "))
	assert.Equal(t, "eletricista", Fold("ELETRICISTA"))
	assert.Equal(t, "acai", Fold("Açaí"))
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("", "anything"))
	assert.True(t, Matches("jose", "Encanador", "São José"))
	assert.False(t, Matches("pintor", "Encanador", "Recife"))
}

func TestTitleCity(t *testing.T) {
	assert.Equal(t, "Belo Horizonte", TitleCity("  belo   HORIZONTE "))
}

func TestListingFilters(t *testing.T) {
	items := []domain.Listing{
		{ID: "1", Title: "Manicure", Description: "unhas em gel", City: "Natal", Owner: &domain.ListingOwner{Name: "Bruna"}},
		{ID: "2", Title: "Mecânico", Description: "revisão completa", City: "Maceió"},
	}
	got := Listings(items, "mecanico")
	assert.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	got = Listings(items, "GEL")
	assert.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got = AdminListings(items, "bruna")
	assert.Len(t, got, 1)
	got = AdminListings(items, "maceio")
	assert.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
	assert.Len(t, AdminListings(items, ""), 2)
}

func TestProfiles(t *testing.T) {
	items := []domain.Profile{{Name: "Ana Lúcia", Email: "ana@x.com"}, {Name: "Rui", Email: "rui@y.com"}}
	assert.Len(t, Profiles(items, "lucia"), 1)
	assert.Len(t, Profiles(items, "@y.com"), 1)
}
