package runtime_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-ecma/internal/interp/runtime"
)

func TestMapSetUpdatesInPlacePreservingInsertionOrder(t *testing.T) {
	d := &runtime.MapData{}

	runtime.MapSet(d, runtime.String("a"), runtime.Number(1))
	runtime.MapSet(d, runtime.String("b"), runtime.Number(2))
	runtime.MapSet(d, runtime.String("a"), runtime.Number(99))

	require.Len(t, d.Keys, 2)
	assert.Equal(t, "a", d.Keys[0].AsString())

	v, ok := runtime.MapGet(d, runtime.String("a"))
	require.True(t, ok)
	assert.Equal(t, float64(99), v.AsNumber())

	v, ok = runtime.MapGet(d, runtime.String("b"))
	require.True(t, ok)
	assert.Equal(t, float64(2), v.AsNumber())
}

func TestMapGetMissingKey(t *testing.T) {
	d := &runtime.MapData{}
	_, ok := runtime.MapGet(d, runtime.String("missing"))
	assert.False(t, ok)
}

// TestMapKeyEqualityIsSameValueZero locks in that Map keys compare via
// SameValueZero (§3.5), the one place NaN equals itself and +0/-0
// collapse to one key, unlike === (runtime.StrictEquals).
func TestMapKeyEqualityIsSameValueZero(t *testing.T) {
	d := &runtime.MapData{}
	nan := runtime.Number(math.NaN())

	runtime.MapSet(d, nan, runtime.String("first"))
	runtime.MapSet(d, runtime.Number(math.NaN()), runtime.String("second"))
	require.Len(t, d.Keys, 1, "NaN must be SameValueZero to NaN for Map key purposes")

	v, ok := runtime.MapGet(d, nan)
	require.True(t, ok)
	assert.Equal(t, "second", v.AsString())

	runtime.MapSet(d, runtime.Number(0), runtime.String("positive-zero"))
	_, ok = runtime.MapGet(d, runtime.Number(math.Copysign(0, -1)))
	require.True(t, ok, "+0 and -0 must collapse to the same Map key")
}

func TestMapDeleteRemovesEntry(t *testing.T) {
	d := &runtime.MapData{}
	runtime.MapSet(d, runtime.String("a"), runtime.Number(1))

	assert.True(t, runtime.MapDelete(d, runtime.String("a")))
	assert.False(t, runtime.MapDelete(d, runtime.String("a")))

	_, ok := runtime.MapGet(d, runtime.String("a"))
	assert.False(t, ok)
}

func TestSetAddDeduplicatesAndPreservesOrder(t *testing.T) {
	d := &runtime.SetData{}

	runtime.SetAdd(d, runtime.Number(1))
	runtime.SetAdd(d, runtime.Number(2))
	runtime.SetAdd(d, runtime.Number(1))

	require.Len(t, d.Values, 2)
	assert.True(t, runtime.SetHas(d, runtime.Number(1)))
	assert.True(t, runtime.SetHas(d, runtime.Number(2)))
	assert.False(t, runtime.SetHas(d, runtime.Number(3)))
}

func TestSetDeleteRemovesValue(t *testing.T) {
	d := &runtime.SetData{}
	runtime.SetAdd(d, runtime.String("x"))

	assert.True(t, runtime.SetDelete(d, runtime.String("x")))
	assert.False(t, runtime.SetHas(d, runtime.String("x")))
	assert.False(t, runtime.SetDelete(d, runtime.String("x")))
}
