package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/articflow/agentlink/internal/model"
)

func TestSelectTop_FeaturedAlwaysIncluded(t *testing.T) {
	t.Parallel()

	var agents []*model.Agent
	for i := 0; i < 10; i++ {
		agents = append(agents, agentWith(fmt.Sprintf("Agent %02d", i), "Solo", i+10))
	}
	f1 := agentWith("Featured One", "Solo", 1)
	f1.Featured = true
	f2 := agentWith("Featured Two", "Solo", 0)
	f2.Featured = true
	agents = append(agents, f1, f2)

	top := SelectTop(agents, 5)

	assert.Equal(t, []string{"Featured One", "Featured Two", "Agent 09", "Agent 08", "Agent 07"}, names(top))
}

func TestSelectTop_TierOrder(t *testing.T) {
	t.Parallel()

	featured := agentWith("Featured", "A", 50)
	featured.Featured = true
	plus := agentWith("Plus", "A", 1)
	plus.Featured = true
	plus.FeaturedPlus = true
	standard := agentWith("Standard", "A", 2)
	standard.StandardSubscription = true
	regular := agentWith("Regular", "A", 100)

	top := SelectTop([]*model.Agent{regular, featured, standard, plus}, 5)

	assert.Equal(t, []string{"Plus", "Featured", "Standard", "Regular"}, names(top))
}

func TestSelectTop_FeaturedOverflowKept(t *testing.T) {
	t.Parallel()

	var agents []*model.Agent
	for i := 0; i < 6; i++ {
		a := agentWith(fmt.Sprintf("F%d", i), "A", 0)
		a.Featured = true
		agents = append(agents, a)
	}
	agents = append(agents, agentWith("Regular", "A", 99))

	top := SelectTop(agents, 5)

	require.Len(t, top, 6)
	assert.NotContains(t, names(top), "Regular")
}

func TestSelectTop_StableTies(t *testing.T) {
	t.Parallel()

	a := agentWith("A", "X", 3)
	b := agentWith("B", "X", 3)
	c := agentWith("C", "X", 4)

	assert.Equal(t, []string{"C", "A", "B"}, names(SelectTop([]*model.Agent{a, b, c}, 5)))
	assert.Empty(t, SelectTop(nil, 5))
}

func TestToReportAgent(t *testing.T) {
	t.Parallel()

	a := agentWith("jane smith", "Ray White", 2, 600_000, 400_000)
	a.JointSales = 1
	a.JointSalesValue = 500_000
	a.MedianSoldPrice = "$500k"
	a.Featured = true
	a.Quote = model.CommissionQuote{CommissionRate: "1.65-1.85%", Discount: "$750", Marketing: "$8,500"}

	got := ToReportAgent(a)

	assert.Equal(t, model.ReportAgent{
		Name:            "Jane Smith",
		Agency:          "Ray White",
		TotalSales:      2,
		JointSales:      1,
		MedianSoldPrice: "$500k",
		TotalSalesValue: "$1.5m",
		JointSalesValue: "$500k",
		Featured:        true,
		CommissionRate:  "1.65-1.85%",
		Discount:        "$750",
		Marketing:       "$8,500",
	}, got)
}

func TestToReportAgent_Undisclosed(t *testing.T) {
	t.Parallel()

	a := model.NewAgent("Bob Lee", "", "Solo")
	a.TotalSales = 1
	a.Properties["1"] = model.PropertySale{IsPrimary: true}

	got := ToReportAgent(a)

	assert.Equal(t, model.NotDisclosed, got.TotalSalesValue)
	assert.Equal(t, model.NotDisclosed, got.MedianSoldPrice)
	assert.Equal(t, "$0", got.JointSalesValue)
}

func TestDisplayTotalValue_Manual(t *testing.T) {
	t.Parallel()

	a := model.NewAgent("Bob Lee", "", "Solo")
	a.Manual = true
	a.ManualTotalValue = "$17m"
	assert.Equal(t, "$17m", DisplayTotalValue(a))

	a.ManualTotalValue = ""
	assert.Equal(t, model.NotDisclosed, DisplayTotalValue(a))
}
