package embedding

import (
	"testing"

	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

func TestAggregateMean(t *testing.T) {
	batch := [][]float64{
		{1, 2, 3},
		{3, 4, 5},
		{5, 6, 7},
	}

	out, err := Aggregate(batch)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	want := []float64{3, 4, 5}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("Element %d: expected %f, got %f", i, w, out[i])
		}
	}
}

func TestAggregateSingle(t *testing.T) {
	out, err := Aggregate([][]float64{{0.5, -0.5}})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if out[0] != 0.5 || out[1] != -0.5 {
		t.Errorf("Single-element batch should pass through: %v", out)
	}
}

func TestAggregateEmptyBatch(t *testing.T) {
	_, err := Aggregate(nil)
	if err == nil {
		t.Fatal("Expected error for empty batch")
	}
	if !model.IsCode(err, model.CodeEmptyBatch) {
		t.Errorf("Expected code %s, got %s", model.CodeEmptyBatch, model.CodeOf(err))
	}
}
