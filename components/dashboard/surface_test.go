package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageLookups(t *testing.T) {
	page := NewPage(DefaultPageLayout())

	_, ok := page.Element("nope")
	assert.False(t, ok)
	_, ok = page.Canvas("nope")
	assert.False(t, ok)
	assert.Zero(t, page.Draws("nope"))

	assert.Equal(t, []string{ElementActiveSubs, ElementTotalRevenue, ElementTotalUsers, ElementUnpaidInvoices}, page.ElementIDs())
}

func TestPageElementClasses(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	el, ok := page.Element(ElementTotalUsers)
	require.True(t, ok)

	el.SetText("5")
	el.AddClass(UpdatedClass)
	assert.Equal(t, "5", el.Text())
	assert.True(t, el.HasClass(UpdatedClass))

	el.RemoveClass(UpdatedClass)
	el.RemoveClass(UpdatedClass)
	assert.False(t, el.HasClass(UpdatedClass))
}

func TestPageCanvasDraw(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	c, ok := page.Canvas(CanvasPlan)
	require.True(t, ok)

	c.Draw("<div>a</div>")
	c.Draw("<div>b</div>")

	assert.Equal(t, CanvasPlan, c.ID())
	assert.Equal(t, "<div>b</div>", c.HTML())
	assert.Equal(t, 2, page.Draws(CanvasPlan))
}
