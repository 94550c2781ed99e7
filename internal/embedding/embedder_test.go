package embedding

import (
	"context"
	"math"
	"testing"
)

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestNormalizeL2Slice(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2Slice(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("got %v", v)
	}
	zero := []float32{0, 0}
	NormalizeL2Slice(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

func TestMeanPool(t *testing.T) {
	hidden := []float32{
		1, 2,
		3, 4,
		100, 100,
	}
	got := meanPool(hidden, []int64{1, 1, 0}, 2)
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("got %v, want [2 3]", got)
	}
	empty := meanPool(hidden, []int64{0, 0, 0}, 2)
	if empty[0] != 0 || empty[1] != 0 {
		t.Errorf("no attended tokens should pool to zero, got %v", empty)
	}
}

func TestMockEmbedder(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a, err := e.Embed(ctx, "the sky is blue")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "the sky is blue")
	c, _ := e.Embed(ctx, "grass is green")
	if len(a) != 16 {
		t.Fatalf("len = %d", len(a))
	}
	if math.Abs(norm(a)-1) > 1e-5 {
		t.Errorf("norm = %v, want 1", norm(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text should embed identically")
		}
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Error("different texts should embed differently")
	}
	batch, err := e.EmbedBatch(ctx, []string{"x", "y"})
	if err != nil || len(batch) != 2 {
		t.Fatalf("EmbedBatch: %v %d", err, len(batch))
	}
	if NewMockEmbedder(0).Dimensions() != 384 {
		t.Error("default dimensions should be 384")
	}
}

func TestMockEmbedder_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMockEmbedder(4).EmbedBatch(ctx, []string{"x"}); err == nil {
		t.Error("expected context error")
	}
}
