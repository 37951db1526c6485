// Package selection tracks the two gallery images chosen for composition.
package selection

// Kind is the shape of the selection.
type Kind int

const (
	Empty      Kind = iota
	One             // [a]
	Two             // [a, b] with a != b
	Duplicated      // [a, a]
)

// Selection holds at most two gallery indices. The zero value is empty.
type Selection struct {
	kind Kind
	a, b int
}

// Click applies a click on the image at index. Shift-click uses the image in both slots.
func (s *Selection) Click(index int, shift bool) {
	if shift {
		*s = Selection{kind: Duplicated, a: index, b: index}
		return
	}

	switch s.kind {
	case Empty:
		*s = Selection{kind: One, a: index}
	case One:
		if index != s.a {
			*s = Selection{kind: Two, a: s.a, b: index}
		}
	case Duplicated:
		if index != s.a {
			*s = Selection{kind: Two, a: s.a, b: index}
		}
	case Two:
		if index == s.a || index == s.b {
			// The two images exchange sides.
			s.a, s.b = s.b, s.a
		} else {
			// The newest click always takes the second slot.
			s.b = index
		}
	}
}

// Badge returns the label for the image at index: "*" for a duplicated pair, "1" or "2" for its slot.
func (s *Selection) Badge(index int) (string, bool) {
	switch s.kind {
	case One:
		if index == s.a {
			return "1", true
		}
	case Two:
		if index == s.a {
			return "1", true
		}
		if index == s.b {
			return "2", true
		}
	case Duplicated:
		if index == s.a {
			return "*", true
		}
	}
	return "", false
}

// Items returns the selected indices in slot order.
func (s *Selection) Items() []int {
	switch s.kind {
	case One:
		return []int{s.a}
	case Two, Duplicated:
		return []int{s.a, s.b}
	default:
		return nil
	}
}

// Pair returns both slots when the selection is full.
func (s *Selection) Pair() ([2]int, bool) {
	if s.kind == Two || s.kind == Duplicated {
		return [2]int{s.a, s.b}, true
	}
	return [2]int{}, false
}

// Len returns the number of occupied slots.
func (s *Selection) Len() int {
	switch s.kind {
	case One:
		return 1
	case Two, Duplicated:
		return 2
	default:
		return 0
	}
}

// Kind returns the shape of the selection.
func (s *Selection) Kind() Kind {
	return s.kind
}

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool {
	return s.kind == Empty
}

// IsDuplicated reports whether both slots hold the same image.
func (s *Selection) IsDuplicated() bool {
	return s.kind == Duplicated
}

// Clear empties the selection. Call it whenever the gallery is reloaded.
func (s *Selection) Clear() {
	*s = Selection{}
}
