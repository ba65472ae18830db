package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	l, ok := ParseLanguage(" TA ")
	assert.True(t, ok)
	assert.Equal(t, Tamil, l)

	_, ok = ParseLanguage("fr")
	assert.False(t, ok)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", English.Name())
	assert.Equal(t, "Tamil", Tamil.Name())
	assert.Equal(t, "Hindi", Hindi.Name())
}

func TestReferenceEntryConcepts(t *testing.T) {
	e := ReferenceEntry{Definition: "d", StockUseCase: "s", PortfolioUseCase: "p"}
	c := e.Concepts()
	assert.Len(t, c, 3)
	assert.Equal(t, "Stock Use Case", c[1].Concept)
	assert.Equal(t, "p", c[2].Content)
	assert.True(t, e.Complete())
	assert.False(t, ReferenceEntry{Definition: "d"}.Complete())
}

func TestInsightLookupClone(t *testing.T) {
	l := NewInsightLookup()
	l[English]["India"] = "text"

	c := l.Clone()
	c[English]["India"] = "changed"

	assert.Equal(t, "text", l.Get(English, "India"))
	assert.Equal(t, "", l.Get(Hindi, "India"))
}
