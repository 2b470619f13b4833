package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowsOverlap(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	// plain overlap
	assert.True(t, WindowsOverlap(h(0), h(2), h(1), h(3)))
	// containment
	assert.True(t, WindowsOverlap(h(0), h(4), h(1), h(2)))
	assert.True(t, WindowsOverlap(h(1), h(2), h(0), h(4)))
	// identical windows
	assert.True(t, WindowsOverlap(h(0), h(2), h(0), h(2)))

	// disjoint
	assert.False(t, WindowsOverlap(h(0), h(1), h(2), h(3)))
	// touching endpoints share no time: 10:00-12:00 then 12:00-14:00
	assert.False(t, WindowsOverlap(h(0), h(2), h(2), h(4)))
	assert.False(t, WindowsOverlap(h(2), h(4), h(0), h(2)))
}

func TestMergePhotoURLs(t *testing.T) {
	existing := []string{"a.jpg", "b.jpg"}

	merged := MergePhotoURLs(existing, []string{"b.jpg", "c.jpg"})
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, merged)

	// replay of the same upload is a no-op
	assert.Equal(t, merged, MergePhotoURLs(merged, []string{"b.jpg", "c.jpg"}))

	// empty incoming returns existing unchanged
	assert.Equal(t, existing, MergePhotoURLs(existing, nil))

	// blanks are dropped
	assert.Equal(t, []string{"a.jpg"}, MergePhotoURLs(nil, []string{"", "a.jpg", ""}))

	// order of first appearance wins
	assert.Equal(t, []string{"x", "y"}, MergePhotoURLs(nil, []string{"x", "y", "x"}))
}
