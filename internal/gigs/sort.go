package gigs

import (
	"slices"
	"strings"

	"github.com/starford/gigs/internal/models"
)

// Compare orders events by date.start ascending. Events without a start sort
// after every event that has one; two undated events compare equal.
func Compare(a, b models.Event) int {
	aStart, aOK := a.Start()
	bStart, bOK := b.Start()
	switch {
	case !aOK && !bOK:
		return 0
	case !aOK:
		return 1
	case !bOK:
		return -1
	}
	return strings.Compare(aStart, bStart)
}

// Sort orders events in place. Equal events keep their discovery order.
func Sort(events []models.Event) {
	slices.SortStableFunc(events, Compare)
}
