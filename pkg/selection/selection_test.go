package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// sel builds a selection from slot contents the way clicks would.
func sel(items ...int) Selection {
	switch len(items) {
	case 0:
		return Selection{}
	case 1:
		return Selection{kind: One, a: items[0]}
	default:
		if items[0] == items[1] {
			return Selection{kind: Duplicated, a: items[0], b: items[0]}
		}
		return Selection{kind: Two, a: items[0], b: items[1]}
	}
}

func TestClick(t *testing.T) {
	tests := []struct {
		name  string
		start []int
		index int
		shift bool
		want  []int
	}{
		{"EmptyClick", nil, 0, false, []int{0}},
		{"EmptyShiftClick", nil, 0, true, []int{0, 0}},
		{"SingleClickDifferent", []int{0}, 1, false, []int{0, 1}},
		{"SingleClickSame", []int{0}, 0, false, []int{0}},
		{"SingleShiftClickSame", []int{0}, 0, true, []int{0, 0}},
		{"SingleShiftClickDifferent", []int{0}, 1, true, []int{1, 1}},
		{"PairClickFirstSwaps", []int{0, 1}, 0, false, []int{1, 0}},
		{"PairClickSecondSwaps", []int{0, 1}, 1, false, []int{1, 0}},
		{"PairClickNewReplacesSecond", []int{0, 1}, 2, false, []int{0, 2}},
		{"PairShiftClickNew", []int{0, 1}, 2, true, []int{2, 2}},
		{"DuplicatedClickSame", []int{0, 0}, 0, false, []int{0, 0}},
		{"DuplicatedClickDifferent", []int{0, 0}, 1, false, []int{0, 1}},
		{"DuplicatedShiftClickDifferent", []int{0, 0}, 1, true, []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sel(tt.start...)
			s.Click(tt.index, tt.shift)
			if len(tt.want) == 0 {
				assert.Empty(t, s.Items())
			} else {
				assert.Equal(t, tt.want, s.Items())
			}
		})
	}
}

func TestBadge(t *testing.T) {
	tests := []struct {
		name  string
		start []int
		index int
		want  string
		ok    bool
	}{
		{"Empty", nil, 0, "", false},
		{"SingleSelected", []int{0}, 0, "1", true},
		{"PairFirst", []int{0, 1}, 0, "1", true},
		{"PairSecond", []int{0, 1}, 1, "2", true},
		{"Duplicated", []int{0, 0}, 0, "*", true},
		{"NotSelected", []int{0, 1}, 2, "", false},
		{"DuplicatedOther", []int{3, 3}, 1, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sel(tt.start...)
			got, ok := s.Badge(tt.index)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRandomClicksStayWithinTwo(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var s Selection
	for i := 0; i < 5000; i++ {
		index := rng.Intn(5)
		shift := rng.Intn(4) == 0
		s.Click(index, shift)

		items := s.Items()
		assert.LessOrEqual(t, len(items), 2)
		assert.Equal(t, len(items), s.Len())
		if shift {
			assert.Equal(t, []int{index, index}, items)
			assert.True(t, s.IsDuplicated())
		}
		dup := len(items) == 2 && items[0] == items[1]
		assert.Equal(t, dup, s.IsDuplicated())
	}
}

func TestPairAndClear(t *testing.T) {
	var s Selection
	_, ok := s.Pair()
	assert.False(t, ok)
	assert.True(t, s.IsEmpty())

	s.Click(4, false)
	s.Click(7, false)
	pair, ok := s.Pair()
	assert.True(t, ok)
	assert.Equal(t, [2]int{4, 7}, pair)
	assert.Equal(t, Two, s.Kind())

	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Len())
	_, ok = s.Badge(4)
	assert.False(t, ok)
}
