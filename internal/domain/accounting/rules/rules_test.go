package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kardex/internal/domain/accounting/rules"
)

func cashRules() []rules.Rule {
	return []rules.Rule{
		{
			Name:    "cash-sale",
			When:    `"paymentMethod" in source && source.paymentMethod == "cash"`,
			Account: "1110",
		},
		{
			Name:    "card-sale",
			When:    `"paymentMethod" in source && source.paymentMethod == "card"`,
			Account: "1115",
		},
	}
}

func TestResolveAccountFirstMatch(t *testing.T) {
	engine, err := rules.NewEngine(cashRules(), "1120")
	require.NoError(t, err)

	code, err := engine.ResolveAccount(context.Background(), map[string]any{"paymentMethod": "cash"})
	require.NoError(t, err)
	assert.Equal(t, "1110", code)

	code, err = engine.ResolveAccount(context.Background(), map[string]any{"paymentMethod": "card"})
	require.NoError(t, err)
	assert.Equal(t, "1115", code)
}

func TestResolveAccountFallback(t *testing.T) {
	engine, err := rules.NewEngine(cashRules(), "1120")
	require.NoError(t, err)

	// Unmatched attribute and missing attribute both fall through.
	code, err := engine.ResolveAccount(context.Background(), map[string]any{"paymentMethod": "transfer"})
	require.NoError(t, err)
	assert.Equal(t, "1120", code)

	code, err = engine.ResolveAccount(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "1120", code)
}

func TestEmptyRuleListUsesFallback(t *testing.T) {
	engine, err := rules.NewEngine(nil, "1120")
	require.NoError(t, err)

	code, err := engine.ResolveAccount(context.Background(), map[string]any{"channel": "pos"})
	require.NoError(t, err)
	assert.Equal(t, "1120", code)
}

func TestFallbackRequired(t *testing.T) {
	_, err := rules.NewEngine(nil, "")
	require.Error(t, err)
}

func TestInvalidExpressionRejectedAtCompile(t *testing.T) {
	_, err := rules.NewEngine([]rules.Rule{
		{Name: "broken", When: `source.paymentMethod ==`, Account: "1110"},
	}, "1120")
	require.Error(t, err)
}

func TestNonBooleanExpressionRejected(t *testing.T) {
	_, err := rules.NewEngine([]rules.Rule{
		{Name: "not-bool", When: `"cash"`, Account: "1110"},
	}, "1120")
	require.Error(t, err)
}
