package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newRice(t *testing.T) *MenuItem {
	t.Helper()
	item, err := NewMenuItem("Rice and Curry", decimal.NewFromInt(500), CategoryMainCourse)
	require.NoError(t, err)
	return item
}

func TestNewMenuItem_Defaults(t *testing.T) {
	item := newRice(t)
	require.True(t, item.Available)
	require.Equal(t, DefaultPreparationMinutes, item.PreparationMinutes)
	require.Equal(t, DefaultDailyQuantity, item.DailyQuantity)
	require.Equal(t, DefaultDailyQuantity, item.RemainingQuantity)
}

func TestNewMenuItem_RejectsBadInput(t *testing.T) {
	_, err := NewMenuItem(" ", decimal.NewFromInt(1), CategoryBeverages)
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = NewMenuItem("Tea", decimal.NewFromInt(-1), CategoryBeverages)
	require.ErrorIs(t, err, ErrNegativePrice)

	_, err = NewMenuItem("Tea", decimal.NewFromInt(1), Category("Snacks"))
	require.ErrorIs(t, err, ErrInvalidCategory)
}

func TestReserve(t *testing.T) {
	item := newRice(t)
	item.RemainingQuantity = 5

	require.NoError(t, item.Reserve(2))
	require.Equal(t, int32(3), item.RemainingQuantity)
	require.Equal(t, int64(2), item.Popularity)

	err := item.Reserve(10)
	require.ErrorIs(t, err, ErrInsufficientQuantity)
	require.Equal(t, int32(3), item.RemainingQuantity)

	item.Available = false
	require.ErrorIs(t, item.Reserve(1), ErrUnavailable)
	require.ErrorIs(t, item.CheckReservation(0), ErrInvalidReservation)
}

func TestRestore_CapsAtDailyQuantity(t *testing.T) {
	item := newRice(t)
	item.DailyQuantity = 5
	item.RemainingQuantity = 4

	item.Restore(3)
	require.Equal(t, int32(5), item.RemainingQuantity)
}

func TestRestore_LargeQuantityDoesNotWrap(t *testing.T) {
	item := newRice(t)
	item.DailyQuantity = 50
	item.RemainingQuantity = 10

	item.Restore(math.MaxInt32)
	require.Equal(t, int32(50), item.RemainingQuantity)
}

func TestSetQuantities(t *testing.T) {
	item := newRice(t)
	require.NoError(t, item.SetQuantities(40, nil))
	require.Equal(t, int32(40), item.RemainingQuantity)

	remaining := int32(10)
	require.NoError(t, item.SetQuantities(40, &remaining))
	require.Equal(t, int32(10), item.RemainingQuantity)

	tooMany := int32(41)
	require.ErrorIs(t, item.SetQuantities(40, &tooMany), ErrRemainingOutOfRange)
}

func TestHasAllTags(t *testing.T) {
	item := newRice(t)
	item.DietaryTags = []DietaryTag{TagHalal, TagSpicy}
	require.True(t, item.HasAllTags([]DietaryTag{TagSpicy}))
	require.False(t, item.HasAllTags([]DietaryTag{TagSpicy, TagVegan}))
}

func TestClone_IsDeep(t *testing.T) {
	item := newRice(t)
	item.Ingredients = []string{"rice"}
	clone := item.Clone()
	clone.Ingredients[0] = "bread"
	require.Equal(t, "rice", item.Ingredients[0])
}
