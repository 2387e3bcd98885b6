package outreach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_FirstMatchWins(t *testing.T) {
	c := NewClassifier(DefaultCatalog())

	// "compostable food packaging" contains both "compostable" and "food";
	// "compostable" appears earlier in the table.
	assert.Equal(t, "compostable packaging", c.Classify("compostable food packaging small business"))
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := NewClassifier(DefaultCatalog())
	assert.Equal(t, "coffee packaging", c.Classify("Custom COFFEE Bags Supplier"))
}

func TestClassify_DefaultCategory(t *testing.T) {
	c := NewClassifier(DefaultCatalog())
	assert.Equal(t, "flexible packaging", c.Classify("industrial widget boxes"))
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(DefaultCatalog())

	first := c.Classify("eco friendly tea packaging wholesale")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, c.Classify("eco friendly tea packaging wholesale"))
	}
}
