package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{Span(-2, 2, 5), Span(0, 3, 4)})
	calls := 0
	obj := func(_ context.Context, p map[string]float64) (float64, error) {
		calls++
		return (p["x"]-1)*(p["x"]-1) + (p["y"]-2)*(p["y"]-2), nil
	}

	params, score, err := g.Search(context.Background(), obj)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]float64{"x": 1, "y": 2}, params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if score != 0 {
		t.Errorf("score = %g, want 0", score)
	}
	if calls != 20 {
		t.Errorf("calls = %d, want 20", calls)
	}
}

func TestGridSearchTiesKeepFirst(t *testing.T) {
	g := NewGridSearch([]string{"q"}, [][]float64{{3, 1, 2}})
	params, _, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if params["q"] != 3 {
		t.Errorf("q = %g, want first grid value 3", params["q"])
	}
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g := NewGridSearch([]string{"q"}, [][]float64{{0, 1, 2}})
	params, score, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		switch p["q"] {
		case 0:
			return 0, errors.New("bad point")
		case 1:
			return math.NaN(), nil
		}
		return 5, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if params["q"] != 2 || score != 5 {
		t.Errorf("got q=%g score=%g, want q=2 score=5", params["q"], score)
	}
}

func TestGridSearchNoCandidate(t *testing.T) {
	g := NewGridSearch([]string{"q"}, [][]float64{{1, 2}})
	_, _, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return math.Inf(1), nil
	})
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("err = %v, want ErrNoCandidate", err)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"q"}, [][]float64{{1}})
	if _, _, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSpan(t *testing.T) {
	if diff := cmp.Diff([]float64{0, 0.5, 1}, Span(0, 1, 3)); diff != "" {
		t.Errorf("Span mismatch (-want +got):\n%s", diff)
	}
	if got := Span(4, 9, 1); len(got) != 1 || got[0] != 4 {
		t.Errorf("Span(n=1) = %v", got)
	}
}
