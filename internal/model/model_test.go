package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_PutAccumulates(t *testing.T) {
	cart := Cart{}
	cart.Put("Dune", 2)
	cart.Put("Dune", 3)
	assert.Equal(t, Cart{"Dune": 5}, cart)
}

func TestCart_RemoveMissingIsNoop(t *testing.T) {
	cart := Cart{"Dune": 1}
	cart.Remove("Emma")
	cart.Remove("Dune")
	assert.Empty(t, cart)
	assert.NotNil(t, cart)
}

func TestCart_NamesSorted(t *testing.T) {
	cart := Cart{"b": 1, "c": 1, "a": 1}
	assert.Equal(t, []string{"a", "b", "c"}, cart.Names())
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, OrderStatusPending.Terminal())
	assert.True(t, OrderStatusConfirmed.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 0, Size: 20}.Offset())
	assert.Equal(t, 0, PageRequest{Page: 1, Size: 20}.Offset())
	assert.Equal(t, 40, PageRequest{Page: 3, Size: 20}.Offset())
}
