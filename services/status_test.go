package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-restaurant-pos/models"
)

func items(codes ...string) []models.OrderItem {
	// each code is a prep letter (p, c, d) optionally followed by $ for paid
	out := make([]models.OrderItem, len(codes))
	for i, s := range codes {
		switch s[0] {
		case 'c':
			out[i].PrepStatus = models.PrepCooking
		case 'd':
			out[i].PrepStatus = models.PrepDone
		}
		out[i].IsPaid = len(s) > 1 && s[1] == '$'
	}
	return out
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name  string
		items []models.OrderItem
		want  models.OrderStatus
	}{
		{"no items", nil, models.OrderAwaitingService},
		{"all pending", items("p", "p"), models.OrderAwaitingService},
		{"paid but pending", items("p$"), models.OrderAwaitingService},
		{"one cooking", items("p", "c"), models.OrderInService},
		{"one done", items("d", "p"), models.OrderInService},
		{"all done unpaid", items("d", "d"), models.OrderAwaitingCheckout},
		{"all done partly paid", items("d$", "d"), models.OrderAwaitingCheckout},
		{"all done and paid", items("d$", "d$"), models.OrderCompleted},
		{"paid but cooking", items("d$", "c$"), models.OrderInService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.items))
		})
	}
}

func TestNextStatus_NeverLeavesCompletedForAWorkingStatus(t *testing.T) {
	tests := []struct {
		name    string
		current models.OrderStatus
		items   []models.OrderItem
		want    models.OrderStatus
	}{
		{"completed stays completed", models.OrderCompleted, items("d$"), models.OrderCompleted},
		{"completed with new pending item", models.OrderCompleted, items("d$", "p"), models.OrderAppended},
		{"completed with new cooking item", models.OrderCompleted, items("d$", "c"), models.OrderAppended},
		{"completed with unpaid done item", models.OrderCompleted, items("d$", "d"), models.OrderAppended},
		{"appended still working", models.OrderAppended, items("d$", "c"), models.OrderAppended},
		{"appended settled", models.OrderAppended, items("d$", "d$"), models.OrderCompleted},
		{"cancelled is final", models.OrderCancelled, items("d$"), models.OrderCancelled},
		{"working order follows items", models.OrderAwaitingService, items("c"), models.OrderInService},
		{"working order can move back", models.OrderAwaitingCheckout, items("d", "p"), models.OrderInService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatus(tt.current, tt.items))
		})
	}
}

func TestRecomputeFromScratch_FallsBackBelowCompleted(t *testing.T) {
	assert.Equal(t, models.OrderAwaitingService, RecomputeFromScratch(models.OrderCompleted, items("p")))
	assert.Equal(t, models.OrderInService, RecomputeFromScratch(models.OrderCompleted, items("d$", "p")))
	assert.Equal(t, models.OrderCompleted, RecomputeFromScratch(models.OrderAppended, items("d$", "d$")))
	assert.Equal(t, models.OrderCancelled, RecomputeFromScratch(models.OrderCancelled, items("d$")))

	// the two policies only disagree once an order has been completed
	for _, current := range []models.OrderStatus{models.OrderAwaitingService, models.OrderInService, models.OrderAwaitingCheckout} {
		for _, its := range [][]models.OrderItem{items("p"), items("c", "d"), items("d"), items("d$")} {
			assert.Equal(t, NextStatus(current, its), RecomputeFromScratch(current, its))
		}
	}
}
