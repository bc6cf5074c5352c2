package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, 7, r.Len())
	for _, name := range []string{NameAST, NameFunction, NameMarkdown, NameXML, NameSemantic, NameBracket, NameLine} {
		_, ok := r.Get(name)
		assert.True(t, ok, "missing strategy %s", name)
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(NewLineStrategy()))
	assert.Error(t, r.Register(NewLineStrategy()))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ForLanguage(t *testing.T) {
	r := NewDefaultRegistry()

	names := func(strategies []Strategy) []string {
		out := make([]string, 0, len(strategies))
		for _, s := range strategies {
			out = append(out, s.Descriptor().Name)
		}
		return out
	}

	goStrategies := names(r.ForLanguage("go"))
	assert.Contains(t, goStrategies, NameAST)
	assert.Contains(t, goStrategies, NameFunction)
	assert.Contains(t, goStrategies, NameLine)
	assert.NotContains(t, goStrategies, NameMarkdown)
	assert.NotContains(t, goStrategies, NameXML)

	// Unclassified files still get the language-agnostic strategies.
	unknown := names(r.ForLanguage(""))
	assert.Equal(t, []string{NameSemantic, NameLine}, unknown)
}

func TestRegistry_IndexPreservesRegistrationOrder(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, 0, r.Index(NameAST))
	assert.Equal(t, 1, r.Index(NameFunction))
	assert.Less(t, r.Index(NameSemantic), r.Index(NameBracket))
	assert.Equal(t, r.Len(), r.Index("nonexistent"))
}

func TestRegistry_Descriptor(t *testing.T) {
	r := NewDefaultRegistry()

	d, ok := r.Descriptor(NameAST)
	require.True(t, ok)
	assert.True(t, d.RequiresAST)
	assert.Equal(t, 1, d.BasePriority)

	_, ok = r.Descriptor("nope")
	assert.False(t, ok)
}
