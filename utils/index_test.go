package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateGrowth(t *testing.T) {
	assert.Equal(t, float64(0), CalculateGrowth(0, 0))
	assert.Equal(t, float64(100), CalculateGrowth(10, 0))
	assert.Equal(t, float64(50), CalculateGrowth(150, 100))
	assert.Equal(t, float64(-50), CalculateGrowth(50, 100))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	v := StringPtr("abc")
	assert.NotNil(t, v)
	assert.Equal(t, "abc", *v)
}

func TestPtr(t *testing.T) {
	n := Ptr(42)
	assert.Equal(t, 42, *n)

	b := Ptr(true)
	assert.True(t, *b)
}
