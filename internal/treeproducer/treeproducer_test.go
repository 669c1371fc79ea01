package treeproducer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/lang/register"
	"github.com/oxhq/stereoscope/internal/treeproducer"
)

func TestFormatQuery_SubstitutesPlaceholder(t *testing.T) {
	got := treeproducer.FormatQuery("(identifier) @target (#eq? @target %s)", `"Account"`)
	assert.Equal(t, `(identifier) @target (#eq? @target "Account")`, got)
}

func TestFormatQuery_NoPlaceholderReturnsUnchanged(t *testing.T) {
	got := treeproducer.FormatQuery("(class_specifier) @target", "ignored")
	assert.Equal(t, "(class_specifier) @target", got)
}

func TestFormatQuery_EmptyTemplateStaysEmpty(t *testing.T) {
	assert.Equal(t, "", treeproducer.FormatQuery("", "x"))
}

func TestParseAndSerialize_RoundTripsSource(t *testing.T) {
	registry, err := register.Default()
	require.NoError(t, err)

	producer := treeproducer.New(registry)
	source := []byte("class Account {};")

	unit, err := producer.Parse(context.Background(), "a.cpp", lang.CPP, source)
	require.NoError(t, err)
	require.NotNil(t, unit.Tree)

	root := unit.Tree.RootNode()
	assert.Equal(t, "class Account {};", treeproducer.Serialize(unit, root))
}

func TestQuery_MalformedQueryReturnsNoMatchesNotError(t *testing.T) {
	registry, err := register.Default()
	require.NoError(t, err)
	producer := treeproducer.New(registry)

	unit, err := producer.Parse(context.Background(), "a.cpp", lang.CPP, []byte("class Account {};"))
	require.NoError(t, err)

	provider, err := registry.Get(lang.CPP)
	require.NoError(t, err)

	nodes, err := producer.Query(unit, provider, "(this is not a valid query")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
