package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localserv/internal/domain"
)

func TestParsePlanCatalog(t *testing.T) {
	src := `
plans:
  - id: basic
    name: Básico
    price: 19.9
    ad_limit: 10
  - id: pro
    name: Profissional
    price: 49.9
    ad_limit: 999
    has_premium_badge: true
    priority_search: true
`
	plans, err := parsePlanCatalog(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, 10, plans[0].AdLimit)
	assert.True(t, plans[1].Unlimited())
	assert.True(t, plans[1].HasPremiumBadge)
	assert.True(t, plans[1].PriorityInSearch)
}

func TestParsePlanCatalogRejects(t *testing.T) {
	cases := map[string]string{
		"empty":         "plans: []\n",
		"duplicate":     "plans:\n  - id: a\n    name: A\n    ad_limit: 1\n  - id: a\n    name: B\n    ad_limit: 2\n",
		"unknown field": "plans:\n  - id: a\n    name: A\n    quota: 3\n",
	}
	for name, src := range cases {
		_, err := parsePlanCatalog(strings.NewReader(src))
		assert.Error(t, err, name)
	}
}

func TestCommandsRequireFlags(t *testing.T) {
	var out bytes.Buffer
	c := &cli{out: &out}
	for _, args := range [][]string{
		{"user", "block"},
		{"subscription", "activate", "--email", "a@b.c"},
		{"highlight", "activate"},
		{"plans", "import"},
	} {
		root := newRootCmd(c)
		root.SetArgs(args)
		root.SetErr(&out)
		assert.Error(t, root.Execute(), strings.Join(args, " "))
	}
	assert.Nil(t, c.pool, "flag errors must not open the database")
}

func TestSubscriptionDefaults(t *testing.T) {
	root := newRootCmd(&cli{})
	cmd, _, err := root.Find([]string{"subscription", "activate"})
	require.NoError(t, err)
	assert.Equal(t, "30", cmd.Flags().Lookup("days").DefValue)
	assert.Equal(t, domain.DefaultSubscriptionDays, 30)

	cmd, _, err = root.Find([]string{"highlight", "activate"})
	require.NoError(t, err)
	assert.Equal(t, "7", cmd.Flags().Lookup("days").DefValue)
}
