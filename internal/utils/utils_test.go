package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheExpiry(t *testing.T) {
	c, err := NewCache[uint, string](2, time.Minute)
	require.NoError(t, err)

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set(1, "a")

	got, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", got)

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok = c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheEviction(t *testing.T) {
	c, err := NewCache[string, int](2, time.Minute)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	assert.Equal(t, 2, c.Len())

	c.Delete("b")
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestNewCacheRejectsZeroSize(t *testing.T) {
	_, err := NewCache[string, int](0, time.Minute)
	assert.Error(t, err)
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Hello\n\nsome **bold** text <script>alert(1)</script>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<h1")
	assert.NotContains(t, out, "<script>")

	link := RenderMarkdown("[go](https://go.dev)")
	assert.Contains(t, link, `target="_blank"`)
	assert.Contains(t, link, "noreferrer")
}

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", SanitizeTitle("  <b>Tom</b> & Jerry "))
	assert.Equal(t, "", SanitizeTitle("<img src=x onerror=alert(1)>"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("super-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret", hash)
	assert.True(t, CheckPasswordHash("super-secret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))

	_, err = HashPassword(strings.Repeat("x", 100))
	assert.Error(t, err, "bcrypt rejects passwords over 72 bytes")
}

func TestParseID(t *testing.T) {
	cases := []struct {
		in   string
		want uint
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseID(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestQueryInt(t *testing.T) {
	n, err := QueryInt("", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	n, err = QueryInt("5", 100)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = QueryInt("five", 100)
	assert.Error(t, err)
}
