package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"NoteValuator/internal/model"
)

func TestRenderVolatilityChart(t *testing.T) {
	start := time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC)
	points := make([]model.VolatilityPoint, 40)
	for i := range points {
		points[i] = model.VolatilityPoint{Time: start.AddDate(0, 0, i), Volatility: 0.1 + float64(i)*0.001}
	}
	path := filepath.Join(t.TempDir(), "vol.png")
	if err := RenderVolatilityChart(points, "Rolling Volatility", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("chart file is empty")
	}
}

func TestRenderVolatilityChart_Empty(t *testing.T) {
	if err := RenderVolatilityChart(nil, "empty", filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("expected error for empty series")
	}
}
