package billing

import (
	"testing"
	"time"
)

func TestFeeGracePeriodBoundaries(t *testing.T) {
	calc := NewCalculator(30)
	rate := 20.0

	tests := []struct {
		name    string
		minutes int
		want    float64
	}{
		{"zero minutes", 0, 0},
		{"inside grace", 15, 0},
		{"exactly at grace", 30, 0},
		{"one minute past grace", 31, 20},
		{"one full billable hour", 90, 20},
		{"one minute into second hour", 91, 40},
		{"ninety five minutes", 95, 40},
		{"two billable hours exact", 150, 40},
		{"long stay", 30 + 10*60, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.Fee(tt.minutes, rate); got != tt.want {
				t.Errorf("Fee(%d min) = %v, want %v", tt.minutes, got, tt.want)
			}
		})
	}
}

func TestFeeScalesWithRate(t *testing.T) {
	calc := NewCalculator(30)

	if got := calc.Fee(95, 35); got != 70 {
		t.Errorf("Fee(95 min, rate 35) = %v, want 70", got)
	}
}

func TestDurationMinutesFloors(t *testing.T) {
	calc := NewCalculator(30)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"partial minute dropped", start.Add(59 * time.Second), 0},
		{"exact minute", start.Add(1 * time.Minute), 1},
		{"ninety five and change", start.Add(95*time.Minute + 30*time.Second), 95},
		{"end before start clamps", start.Add(-5 * time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.DurationMinutes(start, tt.end); got != tt.want {
				t.Errorf("DurationMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBreakdown(t *testing.T) {
	calc := NewCalculator(30)

	b := calc.Breakdown(95, 20)
	if b.TotalDuration != 95 {
		t.Errorf("TotalDuration = %d, want 95", b.TotalDuration)
	}
	if b.FreeMinutes != 30 {
		t.Errorf("FreeMinutes = %d, want 30", b.FreeMinutes)
	}
	if b.BillableMinutes != 65 {
		t.Errorf("BillableMinutes = %d, want 65", b.BillableMinutes)
	}
	if b.BillableHours != 2 {
		t.Errorf("BillableHours = %d, want 2", b.BillableHours)
	}
	if b.Total != 40 {
		t.Errorf("Total = %v, want 40", b.Total)
	}
}

func TestBreakdownShortStay(t *testing.T) {
	calc := NewCalculator(30)

	b := calc.Breakdown(12, 20)
	if b.FreeMinutes != 12 {
		t.Errorf("FreeMinutes = %d, want 12", b.FreeMinutes)
	}
	if b.BillableMinutes != 0 || b.BillableHours != 0 || b.Total != 0 {
		t.Errorf("short stay should be free, got %+v", b)
	}
}
