package card

import (
	"math"
	"testing"
)

func TestPlanPages(t *testing.T) {
	tests := []struct {
		name  string
		geo   func() Geometry
		wantK int
	}{
		{name: "A4 default fits 2 pairs", geo: DefaultGeometry, wantK: 2},
		{name: "taller page fits 3 pairs", geo: func() Geometry {
			g := DefaultGeometry()
			g.PageH = 420
			return g
		}, wantK: 3},
		{name: "page too small clamps to 1", geo: func() Geometry {
			g := DefaultGeometry()
			g.PageH = 100
			return g
		}, wantK: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.geo().PlanPages().PairsPerPage; got != tt.wantK {
				t.Errorf("PlanPages().PairsPerPage = %d, want %d", got, tt.wantK)
			}
		})
	}
}

func TestPagePlan_PagesFor(t *testing.T) {
	plan := DefaultGeometry().PlanPages() // k = 2
	tests := []struct {
		n, want int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{10, 5},
	}
	for _, tt := range tests {
		if got := plan.PagesFor(tt.n); got != tt.want {
			t.Errorf("PagesFor(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}

	// ceil(n/k) must hold for any plan
	g := DefaultGeometry()
	g.PageH = 420
	plan3 := g.PlanPages()
	if plan3.PairsPerPage != 3 {
		t.Fatalf("PairsPerPage = %d, want 3", plan3.PairsPerPage)
	}
	if got := plan3.PagesFor(10); got != 4 {
		t.Errorf("PagesFor(10) = %d, want 4", got)
	}
}

func TestPagePlan_SlotOrigin(t *testing.T) {
	g := DefaultGeometry()
	plan := g.PlanPages()

	x0, y0 := plan.SlotOrigin(0)
	x1, y1 := plan.SlotOrigin(1)

	// horizontally centered
	wantX := (g.PageW - g.CardW) / 2
	if x0 != wantX || x1 != wantX {
		t.Errorf("slot x = %v, %v; want %v", x0, x1, wantX)
	}

	// consecutive slots are exactly one pair height + spacing apart
	if diff := y1 - y0; math.Abs(diff-(g.PairHeight()+g.PairSpacing)) > 1e-9 {
		t.Errorf("slot pitch = %v, want %v", diff, g.PairHeight()+g.PairSpacing)
	}

	// every slot stays inside the page
	for n := 0; n < plan.PairsPerPage; n++ {
		_, y := plan.SlotOrigin(n)
		if y < 0 || y+g.PairHeight() > g.PageH {
			t.Errorf("slot %d out of page bounds: y=%v", n, y)
		}
	}
}

func TestGeometry_PairHeight(t *testing.T) {
	g := DefaultGeometry()
	want := 2*g.CardH + g.CuttingGap
	if got := g.PairHeight(); got != want {
		t.Errorf("PairHeight() = %v, want %v", got, want)
	}
}
