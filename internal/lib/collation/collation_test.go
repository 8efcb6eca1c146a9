package collation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparePrimaryStrength(t *testing.T) {
	cmp := MustNew("es")

	tests := []struct {
		name string
		a, b string
		sign int
	}{
		{"case folded", "Realidad", "realidad", 0},
		{"accents folded", "análisis", "analisis", 0},
		{"case and accents", "MARÍA PÉREZ", "maria perez", 0},
		{"base letters differ", "datos", "efecto", -1},
		{"reverse", "Z", "análisis", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cmp(tt.a, tt.b)
			switch {
			case tt.sign == 0:
				assert.Zero(t, got)
			case tt.sign < 0:
				assert.Negative(t, got)
			default:
				assert.Positive(t, got)
			}
		})
	}
}

func TestNewUnknownLocale(t *testing.T) {
	_, err := New("not a locale!!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLocale))
}

func TestNewRootLocale(t *testing.T) {
	cmp, err := New("")
	require.NoError(t, err)
	assert.Negative(t, cmp("apple", "Banana"))
}

func TestSort(t *testing.T) {
	cmp := MustNew("es")
	in := []string{"Zeta", "análisis", "Efecto de X en Y", "datos", "Beta"}

	got := Sort(in, cmp)

	assert.Equal(t, []string{"análisis", "Beta", "datos", "Efecto de X en Y", "Zeta"}, got)
	assert.Equal(t, "Zeta", in[0], "input must not be modified")
}

func TestSortStable(t *testing.T) {
	cmp := MustNew("es")
	got := Sort([]string{"b", "Árbol", "arbol", "a"}, cmp)
	assert.Equal(t, []string{"a", "Árbol", "arbol", "b"}, got)
}

func TestSortSmall(t *testing.T) {
	cmp := MustNew("")
	assert.Empty(t, Sort(nil, cmp))
	assert.Equal(t, []string{"x"}, Sort([]string{"x"}, cmp))
}
