package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gentcache/internal/domain/entity"
)

func TestCarPark_DerivedPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		available      int
		wantFull       bool
		wantAlmostFull bool
	}{
		{name: "no spots left", available: 0, wantFull: true, wantAlmostFull: true},
		{name: "negative availability", available: -3, wantFull: true, wantAlmostFull: true},
		{name: "one spot left", available: 1, wantFull: false, wantAlmostFull: true},
		{name: "threshold boundary", available: 10, wantFull: false, wantAlmostFull: true},
		{name: "just above threshold", available: 11, wantFull: false, wantAlmostFull: false},
		{name: "plenty of room", available: 250, wantFull: false, wantAlmostFull: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &entity.CarPark{Name: "Vrijdagmarkt", AvailableCapacity: tt.available}
			assert.Equal(t, tt.wantFull, p.IsFull())
			assert.Equal(t, tt.wantAlmostFull, p.IsAlmostFull())
		})
	}
}
