package utility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-01-08T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 8, 30, 0, 0, time.UTC), d)

	_, err = ParseDate("08/01/2024")
	assert.Error(t, err)
}

func TestParseObjectID(t *testing.T) {
	_, err := ParseObjectID("nope")
	assert.Error(t, err)

	id, err := ParseObjectID("65a1b2c3d4e5f6a7b8c9d0e1")
	require.NoError(t, err)
	assert.Equal(t, "65a1b2c3d4e5f6a7b8c9d0e1", ObjectID2String(id))
	assert.True(t, String2ObjectID("bad").IsZero())
}

func TestStripEmptyStrings(t *testing.T) {
	m := map[string]interface{}{"sku": "", "name": "Milk", "qty": 0}
	StripEmptyStrings(m)
	assert.Equal(t, map[string]interface{}{"name": "Milk", "qty": 0}, m)
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute, 0)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.SetWithTTL("b", 2, 0)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.purge()
	assert.Equal(t, 1, c.Len())
	c.Stop()
	c.Stop()
}
