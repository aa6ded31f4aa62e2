package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lewis-cheung/grocery-bot/internal/domain"
)

func testItems(names ...string) []*domain.GroceryItem {
	now := primitive.NewDateTimeFromTime(time.Now())

	items := make([]*domain.GroceryItem, 0, len(names))
	for _, name := range names {
		items = append(items, domain.NewGroceryItem(1, name, domain.UnitPiece, now))
	}

	return items
}

func TestResolve_ExactCaseInsensitive(t *testing.T) {
	items := testItems("Milk", "Dark Chocolate", "Eggs")

	res := Resolve("mIlK", items, 5)
	require.True(t, res.IsExact())
	assert.Equal(t, "Milk", res.Exact.Name)
	assert.Empty(t, res.Candidates)
}

func TestResolve_FuzzyCandidates(t *testing.T) {
	items := testItems("Milk", "Milk Chocolate", "Dark Chocolate", "Eggs")

	res := Resolve("choclate", items, 5)
	require.False(t, res.IsExact())
	require.NotEmpty(t, res.Candidates)

	names := make([]string, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Milk Chocolate")
	assert.Contains(t, names, "Dark Chocolate")
	assert.NotContains(t, names, "Eggs")
}

func TestResolve_TopNLimit(t *testing.T) {
	items := testItems("tea 1", "tea 2", "tea 3", "tea 4", "tea 5", "tea 6")

	res := Resolve("tea", items, 3)
	assert.False(t, res.IsExact())
	assert.Len(t, res.Candidates, 3)
}

func TestResolve_Miss(t *testing.T) {
	items := testItems("Milk", "Eggs")

	res := Resolve("quinoa", items, 5)
	assert.True(t, res.IsMiss())
}

func TestResolve_NoItems(t *testing.T) {
	res := Resolve("anything", nil, 5)
	assert.True(t, res.IsMiss())
}

func TestResolve_TiesKeepStoredOrder(t *testing.T) {
	items := testItems("tea green", "tea black", "tea white")

	res := Resolve("tea", items, 5)
	require.False(t, res.IsExact())
	require.Len(t, res.Candidates, 3)

	// Equally ranked candidates come back in the order the items were stored.
	assert.Equal(t, "tea green", res.Candidates[0].Name)
	assert.Equal(t, "tea black", res.Candidates[1].Name)
	assert.Equal(t, "tea white", res.Candidates[2].Name)
}

func TestResolve_TrimsInput(t *testing.T) {
	items := testItems("Milk")

	res := Resolve("  milk  ", items, 5)
	require.True(t, res.IsExact())
	assert.Equal(t, "Milk", res.Exact.Name)
}
