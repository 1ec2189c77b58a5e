package timetable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOccupancyReserve(t *testing.T) {
	occ := NewOccupancy()

	assert.True(t, occ.Reserve("t1", "Monday", 0, "class-a"))
	assert.True(t, occ.Reserve("t1", "Monday", 0, "class-a"), "re-reserving own slot succeeds")
	assert.False(t, occ.Reserve("t1", "Monday", 0, "class-b"))

	assert.True(t, occ.Busy("t1", "Monday", 0, "class-b"))
	assert.False(t, occ.Busy("t1", "Monday", 0, "class-a"))
	assert.False(t, occ.Busy("t1", "Monday", 1, "class-b"))
}

func TestOccupancyReleaseClass(t *testing.T) {
	occ := NewOccupancy()
	occ.Reserve("t1", "Monday", 0, "class-a")
	occ.Reserve("t1", "Monday", 1, "class-a")
	occ.Reserve("t2", "Tuesday", 2, "class-b")

	occ.ReleaseClass("class-a")

	assert.Equal(t, 1, occ.Len())
	assert.True(t, occ.Reserve("t1", "Monday", 0, "class-b"))
	assert.False(t, occ.Reserve("t2", "Tuesday", 2, "class-a"))
}

func TestOccupancyConcurrentReserve(t *testing.T) {
	occ := NewOccupancy()

	var wg sync.WaitGroup
	wins := make([]bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i] = occ.Reserve("t1", "Monday", 3, string(rune('a'+i)))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, occ.Len())
}
