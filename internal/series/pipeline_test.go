package series

import (
	"errors"
	"math"
	"testing"
	"time"

	"airdelta/internal/model"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestOverlap(t *testing.T) {
	t.Run("overlapping ranges", func(t *testing.T) {
		a := observationsAt(t0, []int{0, 20, 40}, []float64{1, 2, 3})
		b := observationsAt(t0, []int{10, 30, 50}, []float64{1, 2, 3})
		w, err := Overlap(a, b)
		if err != nil {
			t.Fatalf("Overlap() err = %v; want nil", err)
		}
		if !w.Start.Equal(t0.Add(10*time.Minute)) || !w.End.Equal(t0.Add(40*time.Minute)) {
			t.Errorf("Overlap() = [%v, %v]; want [+10m, +40m]", w.Start, w.End)
		}
	})

	t.Run("disjoint ranges", func(t *testing.T) {
		day := 24 * 60
		a := observationsAt(t0, []int{day, 2 * day}, []float64{1, 2})
		b := observationsAt(t0, []int{5 * day, 6 * day}, []float64{1, 2})
		if _, err := Overlap(a, b); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Overlap() err = %v; want ErrInsufficientData", err)
		}
	})

	t.Run("empty side", func(t *testing.T) {
		a := observationsAt(t0, []int{0}, []float64{1})
		if _, err := Overlap(a, nil); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Overlap(a, nil) err = %v; want ErrInsufficientData", err)
		}
	})
}

func TestIntersectTrims(t *testing.T) {
	a := observationsAt(t0, []int{0, 20, 40}, []float64{1, 2, 3})
	b := observationsAt(t0, []int{10, 30, 50}, []float64{4, 5, 6})
	ta, tb, _, err := Intersect(a, b)
	if err != nil {
		t.Fatalf("Intersect() err = %v", err)
	}
	if len(ta) != 2 || ta[0].Value != 2 || ta[1].Value != 3 {
		t.Errorf("trimmed a = %v; want values [2 3]", ta)
	}
	if len(tb) != 2 || tb[0].Value != 4 || tb[1].Value != 5 {
		t.Errorf("trimmed b = %v; want values [4 5]", tb)
	}
}

func TestAlignDown(t *testing.T) {
	in := time.Date(2024, 5, 1, 10, 17, 42, 0, time.UTC)
	if got, want := AlignDown(in, 10*time.Minute), time.Date(2024, 5, 1, 10, 10, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("AlignDown(10m) = %v; want %v", got, want)
	}
	if got, want := AlignDown(in, time.Hour), time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("AlignDown(1h) = %v; want %v", got, want)
	}
	aligned := time.Date(2024, 5, 1, 10, 20, 0, 0, time.UTC)
	if got := AlignDown(aligned, 10*time.Minute); !got.Equal(aligned) {
		t.Errorf("AlignDown(aligned) = %v; want unchanged", got)
	}
}

func TestResample(t *testing.T) {
	t.Run("bucket means and unset slots", func(t *testing.T) {
		obs := observationsAt(t0, []int{1, 4, 9, 10, 31}, []float64{10, 20, 30, 100, 7})
		g, err := Resample(obs, 10*time.Minute, Window{Start: t0.Add(time.Minute), End: t0.Add(31 * time.Minute)})
		if err != nil {
			t.Fatalf("Resample() err = %v", err)
		}
		if g.Len() != 4 {
			t.Fatalf("g.Len() = %d; want 4", g.Len())
		}
		if !g.Origin.Equal(t0) {
			t.Errorf("origin = %v; want %v", g.Origin, t0)
		}
		// the observation exactly on a boundary belongs to the later bucket
		wantSet := []bool{true, true, false, true}
		wantVal := []float64{20, 100, 0, 7}
		for i, p := range g.Points {
			if p.Set != wantSet[i] || p.Value != wantVal[i] {
				t.Errorf("slot %d = (%v, %v); want (%v, %v)", i, p.Value, p.Set, wantVal[i], wantSet[i])
			}
		}
	})

	t.Run("grid is aligned and has no missing slots", func(t *testing.T) {
		obs := observationsAt(t0, []int{3, 47, 121, 250}, []float64{1, 2, 3, 4})
		interval := 15 * time.Minute
		g, err := Resample(obs, interval, Window{Start: obs[0].Instant, End: obs[3].Instant})
		if err != nil {
			t.Fatalf("Resample() err = %v", err)
		}
		for i, p := range g.Points {
			if p.Instant.UnixNano()%int64(interval) != 0 {
				t.Errorf("slot %d instant %v is not aligned to %v", i, p.Instant, interval)
			}
			if i > 0 && p.Instant.Sub(g.Points[i-1].Instant) != interval {
				t.Errorf("slot %d stride = %v; want %v", i, p.Instant.Sub(g.Points[i-1].Instant), interval)
			}
		}
		if g.End().After(obs[3].Instant) {
			t.Errorf("grid end %v is past window end %v", g.End(), obs[3].Instant)
		}
	})

	t.Run("order independent", func(t *testing.T) {
		a := observationsAt(t0, []int{1, 2, 3}, []float64{1, 2, 6})
		b := []model.Observation{a[2], a[0], a[1]}
		w := Window{Start: t0, End: t0.Add(5 * time.Minute)}
		ga, _ := Resample(a, 10*time.Minute, w)
		gb, _ := Resample(b, 10*time.Minute, w)
		if ga.Points[0].Value != gb.Points[0].Value {
			t.Errorf("mean differs by order: %v vs %v", ga.Points[0].Value, gb.Points[0].Value)
		}
	})

	t.Run("idempotent on a regular grid", func(t *testing.T) {
		interval := 10 * time.Minute
		obs := observationsAt(t0, []int{0, 10, 20, 30}, []float64{5, 6, 7, 8})
		w := Window{Start: obs[0].Instant, End: obs[3].Instant}
		g1, err := Resample(obs, interval, w)
		if err != nil {
			t.Fatalf("Resample() err = %v", err)
		}
		again := make([]model.Observation, 0, g1.Len())
		for _, p := range g1.Points {
			again = append(again, model.Observation{Instant: p.Instant, Value: p.Value})
		}
		g2, err := Resample(again, interval, w)
		if err != nil {
			t.Fatalf("Resample() second pass err = %v", err)
		}
		if g1.Len() != g2.Len() {
			t.Fatalf("len %d vs %d", g1.Len(), g2.Len())
		}
		for i := range g1.Points {
			if g1.Points[i] != g2.Points[i] {
				t.Errorf("slot %d: %+v vs %+v", i, g1.Points[i], g2.Points[i])
			}
		}
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		if _, err := Resample(nil, 0, Window{Start: t0, End: t0}); err == nil {
			t.Error("Resample(interval=0) err = nil; want non-nil")
		}
	})
}

func TestFill(t *testing.T) {
	t.Run("interior interpolation and boundary hold", func(t *testing.T) {
		g := gridOf(10*time.Minute, []float64{0, 10, 0, 0, 40, 0}, []bool{false, true, false, false, true, false})
		if err := Fill(g); err != nil {
			t.Fatalf("Fill() err = %v", err)
		}
		wantVal := []float64{10, 10, 20, 30, 40, 40}
		wantFlag := []bool{true, false, true, true, false, true}
		wantSrc := []model.PointSource{
			model.SourceExtrapolated, model.SourceObserved, model.SourceInterpolated,
			model.SourceInterpolated, model.SourceObserved, model.SourceExtrapolated,
		}
		for i, p := range g.Points {
			if !p.Set {
				t.Errorf("slot %d still unset", i)
			}
			if math.Abs(p.Value-wantVal[i]) > 1e-9 || p.Interpolated != wantFlag[i] || p.Source != wantSrc[i] {
				t.Errorf("slot %d = (%v, %v, %s); want (%v, %v, %s)", i, p.Value, p.Interpolated, p.Source, wantVal[i], wantFlag[i], wantSrc[i])
			}
		}
	})

	t.Run("nothing to fill from", func(t *testing.T) {
		g := gridOf(time.Hour, []float64{0, 0}, []bool{false, false})
		if err := Fill(g); err != ErrInsufficientData {
			t.Errorf("Fill() err = %v; want ErrInsufficientData", err)
		}
	})
}

func TestGaps(t *testing.T) {
	t.Run("single injected gap is recovered", func(t *testing.T) {
		interval := 10 * time.Minute
		n, pos, width := 20, 7, 4
		set := make([]bool, n)
		for i := range set {
			set[i] = i < pos || i >= pos+width
		}
		g := gridOf(interval, make([]float64, n), set)
		if err := Fill(g); err != nil {
			t.Fatalf("Fill() err = %v", err)
		}
		gaps := Gaps(g)
		if len(gaps) != 1 {
			t.Fatalf("len(gaps) = %d; want 1", len(gaps))
		}
		want := model.GapInterval{
			Start:           t0.Add(time.Duration(pos) * interval),
			End:             t0.Add(time.Duration(pos+width-1) * interval),
			DurationMinutes: (width - 1) * 10,
		}
		if gaps[0] != want {
			t.Errorf("gap = %+v; want %+v", gaps[0], want)
		}
	})

	t.Run("single point gap has zero duration", func(t *testing.T) {
		g := gridOf(time.Hour, []float64{1, 0, 3}, []bool{true, false, true})
		_ = Fill(g)
		gaps := Gaps(g)
		if len(gaps) != 1 || gaps[0].DurationMinutes != 0 || !gaps[0].Start.Equal(gaps[0].End) {
			t.Errorf("gaps = %+v; want one zero-length gap", gaps)
		}
	})

	t.Run("open gap at the end is reported", func(t *testing.T) {
		g := gridOf(10*time.Minute, []float64{0, 1, 0, 0}, []bool{false, true, false, false})
		_ = Fill(g)
		gaps := Gaps(g)
		if len(gaps) != 2 {
			t.Fatalf("len(gaps) = %d; want 2", len(gaps))
		}
		if !gaps[1].End.Equal(g.End()) || gaps[1].DurationMinutes != 10 {
			t.Errorf("trailing gap = %+v; want end %v and 10 minutes", gaps[1], g.End())
		}
	})

	t.Run("fully observed grid has no gaps", func(t *testing.T) {
		g := gridOf(10*time.Minute, []float64{1, 2}, []bool{true, true})
		_ = Fill(g)
		if gaps := Gaps(g); len(gaps) != 0 {
			t.Errorf("gaps = %+v; want none", gaps)
		}
	})
}

func TestGapPercentage(t *testing.T) {
	observed := gridOf(10*time.Minute, []float64{1, 2, 3}, []bool{true, true, true})
	if got := GapPercentage(observed, observed); got != 0 {
		t.Errorf("GapPercentage(observed) = %v; want 0", got)
	}

	synthetic := gridOf(10*time.Minute, []float64{1, 2, 3}, []bool{true, true, true})
	for i := range synthetic.Points {
		synthetic.Points[i].Interpolated = true
	}
	if got := GapPercentage(synthetic, synthetic); got != 100 {
		t.Errorf("GapPercentage(synthetic) = %v; want 100", got)
	}

	half := gridOf(10*time.Minute, []float64{1, 2}, []bool{true, true})
	half.Points[1].Interpolated = true
	if got := GapPercentage(half, observedOf(2)); got != 25 {
		t.Errorf("GapPercentage(mixed) = %v; want 25", got)
	}

	if got := GapPercentage(&model.GridSeries{}, &model.GridSeries{}); got != 0 {
		t.Errorf("GapPercentage(empty) = %v; want 0", got)
	}
}

func TestAlign(t *testing.T) {
	interval := 10 * time.Minute
	indoor := gridOf(interval, []float64{400, 410, 420, 430, 440, 450, 460, 470}, allSet(8))
	outdoor := gridOf(interval, []float64{380, 381, 382, 383, 384, 385, 386, 387}, allSet(8))

	t.Run("shift joins on exact instants", func(t *testing.T) {
		lag := 50 * time.Minute
		pts := Align(indoor, outdoor, lag)
		if len(pts) != 3 {
			t.Fatalf("len(pts) = %d; want 3", len(pts))
		}
		for i, p := range pts {
			if p.Delta != p.Indoor-p.Outdoor {
				t.Errorf("pts[%d].Delta = %v; want %v", i, p.Delta, p.Indoor-p.Outdoor)
			}
			// the outdoor slot used is exactly lag earlier
			k := int(p.Instant.Sub(t0)/interval) - 5
			if p.Outdoor != outdoor.Points[k].Value {
				t.Errorf("pts[%d].Outdoor = %v; want slot %d value %v", i, p.Outdoor, k, outdoor.Points[k].Value)
			}
		}
		if !pts[0].Instant.Equal(t0.Add(lag)) {
			t.Errorf("first joined instant = %v; want %v", pts[0].Instant, t0.Add(lag))
		}
	})

	t.Run("off-grid lag joins nothing", func(t *testing.T) {
		if pts := Align(indoor, outdoor, 7*time.Minute); len(pts) != 0 {
			t.Errorf("len(pts) = %d; want 0", len(pts))
		}
	})

	t.Run("zero lag joins every slot", func(t *testing.T) {
		pts := Align(indoor, outdoor, 0)
		if len(pts) != 8 || pts[0].Delta != 20 {
			t.Errorf("Align(0) = %d points, first delta %v; want 8 points, delta 20", len(pts), pts[0].Delta)
		}
	})
}

func TestPipelineScenario(t *testing.T) {
	interval := 10 * time.Minute
	indoorObs := observationsAt(t0, []int{0, 20, 40}, []float64{400, 410, 420})
	outdoorObs := observationsAt(t0, []int{0, 10, 30}, []float64{380, 385, 395})

	if _, err := Overlap(indoorObs, outdoorObs); err != nil {
		t.Fatalf("Overlap() err = %v", err)
	}
	w, _ := Span(indoorObs, outdoorObs)

	indoor, _ := Resample(indoorObs, interval, w)
	outdoor, _ := Resample(outdoorObs, interval, w)
	if err := Fill(indoor); err != nil {
		t.Fatal(err)
	}
	if err := Fill(outdoor); err != nil {
		t.Fatal(err)
	}

	assertGrid(t, "indoor", indoor, []float64{400, 405, 410, 415, 420}, []bool{false, true, false, true, false})
	assertGrid(t, "outdoor", outdoor, []float64{380, 385, 390, 395, 395}, []bool{false, false, true, false, true})

	pts := Align(indoor, outdoor, 0)
	want := []float64{20, 20, 20, 20, 25}
	if len(pts) != len(want) {
		t.Fatalf("len(pts) = %d; want %d", len(pts), len(want))
	}
	for i, p := range pts {
		if math.Abs(p.Delta-want[i]) > 1e-9 {
			t.Errorf("delta[%d] = %v; want %v", i, p.Delta, want[i])
		}
	}
}

func assertGrid(t *testing.T, name string, g *model.GridSeries, vals []float64, flags []bool) {
	t.Helper()
	if g.Len() != len(vals) {
		t.Fatalf("%s len = %d; want %d", name, g.Len(), len(vals))
	}
	for i, p := range g.Points {
		if math.Abs(p.Value-vals[i]) > 1e-9 || p.Interpolated != flags[i] {
			t.Errorf("%s slot %d = (%v, %v); want (%v, %v)", name, i, p.Value, p.Interpolated, vals[i], flags[i])
		}
	}
}

// gridOf builds an unfilled grid starting at t0.
func gridOf(interval time.Duration, vals []float64, set []bool) *model.GridSeries {
	g := &model.GridSeries{Origin: t0, Interval: interval, Points: make([]model.GridPoint, len(vals))}
	for i := range vals {
		p := model.GridPoint{Instant: t0.Add(time.Duration(i) * interval)}
		if set[i] {
			p.Value = vals[i]
			p.Set = true
			p.Source = model.SourceObserved
		}
		g.Points[i] = p
	}
	return g
}

func allSet(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

func observedOf(n int) *model.GridSeries {
	return gridOf(10*time.Minute, make([]float64, n), allSet(n))
}

func TestResample_GridTooLarge(t *testing.T) {
	tests := []struct {
		name string
		w    Window
	}{
		{"two years at one minute", Window{Start: t0, End: t0.Add(2 * 365 * 24 * time.Hour)}},
		{"span beyond time.Duration", Window{Start: time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Resample(nil, time.Minute, tt.w)
			if !errors.Is(err, ErrGridTooLarge) {
				t.Errorf("Resample() err = %v; want ErrGridTooLarge", err)
			}
			if g != nil {
				t.Errorf("Resample() grid has %d points; want nil", g.Len())
			}
		})
	}
}
