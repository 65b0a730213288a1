package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	p := Ptr(42)
	assert.Equal(t, 42, *p)
}

func TestTernary(t *testing.T) {
	assert.Equal(t, "a", Ternary(true, "a", "b"))
	assert.Equal(t, "b", Ternary(false, "a", "b"))
}

func TestOr(t *testing.T) {
	assert.Equal(t, 1, Or(0, 1))
	assert.Equal(t, 2, Or(2, 1))
	assert.Equal(t, "b", Or("", "b"))
}

func TestBuildConfig(t *testing.T) {
	type config struct{ a, b int }
	opts := []func(*config){
		func(c *config) { c.a = 1 },
		func(c *config) { c.b = 2 },
	}
	cfg := BuildConfig(opts)
	assert.Equal(t, 1, cfg.a)
	assert.Equal(t, 2, cfg.b)
}

