package platform

import (
	"testing"
	"time"
)

func confirmYes(string) (bool, error) { return true, nil }
func confirmNo(string) (bool, error)  { return false, nil }

func confirmNever(t *testing.T) Confirm {
	return func(prompt string) (bool, error) {
		t.Fatalf("unexpected confirmation prompt: %s", prompt)
		return false, nil
	}
}

func TestValidateWeek_CurrentSeason(t *testing.T) {
	now := time.Date(2025, time.November, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		requested   string
		currentWeek int
		confirm     Confirm
		want        int
		wantErr     bool
	}{
		{name: "default resolves to previous week", requested: "default", currentWeek: 9, want: 8},
		{name: "explicit complete week accepted", requested: "3", currentWeek: 9, want: 3},
		{name: "explicit incomplete week confirmed", requested: "9", currentWeek: 9, confirm: confirmYes, want: 9},
		{name: "explicit incomplete week declined", requested: "9", currentWeek: 9, confirm: confirmNo, wantErr: true},
		{name: "week zero rejected", requested: "0", currentWeek: 9, wantErr: true},
		{name: "week beyond season rejected", requested: "19", currentWeek: 9, wantErr: true},
		{name: "non-numeric rejected", requested: "soon", currentWeek: 9, wantErr: true},
		{name: "default in week one requires confirmation", requested: "default", currentWeek: 1, confirm: confirmYes, want: 1},
		{name: "default in week one declined", requested: "default", currentWeek: 1, confirm: confirmNo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confirm := tt.confirm
			if confirm == nil {
				confirm = confirmNever(t)
			}
			got, err := ValidateWeek(tt.requested, tt.currentWeek, 2025, now, confirm)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateWeek(%q) = %d, want error", tt.requested, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateWeek(%q) error: %v", tt.requested, err)
			}
			if got != tt.want {
				t.Errorf("ValidateWeek(%q) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}

func TestValidateWeek_HistoricalSeason(t *testing.T) {
	now := time.Date(2025, time.November, 4, 0, 0, 0, 0, time.UTC)

	// A prior season is complete: any explicit week passes without
	// validation, and "default" means the final week.
	got, err := ValidateWeek("default", 3, 2022, now, confirmNever(t))
	if err != nil {
		t.Fatalf("historical default error: %v", err)
	}
	if got != 18 {
		t.Errorf("historical default = %d, want 18", got)
	}

	got, err = ValidateWeek("17", 3, 2022, now, confirmNever(t))
	if err != nil {
		t.Fatalf("historical explicit error: %v", err)
	}
	if got != 17 {
		t.Errorf("historical explicit = %d, want 17", got)
	}
}

func TestValidateWeek_OffseasonWindow(t *testing.T) {
	// February 2026 is inside the 2025 season's off-season window, so 2025
	// still counts as the current season and validation applies.
	now := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)

	got, err := ValidateWeek("17", 18, 2025, now, confirmNever(t))
	if err != nil {
		t.Fatalf("offseason explicit error: %v", err)
	}
	if got != 17 {
		t.Errorf("offseason explicit = %d, want 17", got)
	}

	if _, err := ValidateWeek("19", 18, 2025, now, confirmNever(t)); err == nil {
		t.Error("offseason out-of-range week accepted, want error")
	}

	confirmed := false
	confirm := func(string) (bool, error) {
		confirmed = true
		return true, nil
	}
	got, err = ValidateWeek("default", 1, 2025, now, confirm)
	if err != nil {
		t.Fatalf("offseason default error: %v", err)
	}
	if got != 1 || !confirmed {
		t.Errorf("offseason default = (%d, confirmed %v), want the incomplete-week prompt", got, confirmed)
	}

	// By September 2026 the 2025 season is historical.
	now = time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC)
	got, err = ValidateWeek("default", 3, 2025, now, confirmNever(t))
	if err != nil {
		t.Fatalf("historical default error: %v", err)
	}
	if got != 18 {
		t.Errorf("historical default = %d, want 18", got)
	}
}

func TestValidateWeek_Idempotent(t *testing.T) {
	now := time.Date(2025, time.October, 14, 0, 0, 0, 0, time.UTC)

	first, err := ValidateWeek("6", 6, 2025, now, confirmYes)
	if err != nil {
		t.Fatalf("first call error: %v", err)
	}
	second, err := ValidateWeek("6", 6, 2025, now, confirmYes)
	if err != nil {
		t.Fatalf("second call error: %v", err)
	}
	if first != second {
		t.Errorf("resolved week changed between calls: %d then %d", first, second)
	}
}
