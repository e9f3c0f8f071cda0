package ride

import "testing"

func TestCalculateFare(t *testing.T) {
	tests := []struct {
		name   string
		meters int64
		class  VehicleClass
		shared bool
		want   int64
	}{
		{"economy 5km", 5000, ClassEconomy, false, 700},
		{"comfort 5km", 5000, ClassComfort, false, 1100},
		{"premium 5km", 5000, ClassPremium, false, 1700},
		{"economy 5km shared", 5000, ClassEconomy, true, 560},
		{"zero distance charges the base", 0, ClassEconomy, false, 300},
		{"negative distance clamps to zero", -200, ClassComfort, false, 500},
		{"fractional km rounds half away", 1234, ClassEconomy, false, 399}, // 300 + 98.72
		{"shared rounding", 1234, ClassEconomy, true, 319},                 // 398.72 * 0.8 = 318.976
		{"unknown class falls back to economy", 5000, VehicleClass("luxury"), false, 700},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFare(tt.meters, tt.class, tt.shared)
			if got != tt.want {
				t.Errorf("CalculateFare(%d, %s, %v) = %d, want %d", tt.meters, tt.class, tt.shared, got, tt.want)
			}
		})
	}
}

func TestCalculateFareClassOrdering(t *testing.T) {
	for _, meters := range []int64{0, 1000, 2500, 10000, 42195} {
		eco := CalculateFare(meters, ClassEconomy, false)
		com := CalculateFare(meters, ClassComfort, false)
		pre := CalculateFare(meters, ClassPremium, false)
		if !(eco < com && com < pre) {
			t.Errorf("fares not strictly ordered at %dm: economy=%d comfort=%d premium=%d", meters, eco, com, pre)
		}
	}
}

func TestCalculateFareSharedIsCheaper(t *testing.T) {
	for _, class := range []VehicleClass{ClassEconomy, ClassComfort, ClassPremium} {
		full := CalculateFare(8000, class, false)
		shared := CalculateFare(8000, class, true)
		if shared >= full {
			t.Errorf("%s: shared fare %d not cheaper than %d", class, shared, full)
		}
	}
}
