package cli

import (
	"testing"
	"time"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{"mon", time.Monday, false},
		{"Saturday", time.Saturday, false},
		{" sun ", time.Sunday, false},
		{"3", time.Wednesday, false},
		{"7", 0, true},
		{"someday", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseWeekday(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseItemSpec(t *testing.T) {
	item, err := ParseItemSpec("Morning run @ 07:00-07:45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Name != "Morning run" || item.StartTime != "07:00" || item.EndTime != "07:45" {
		t.Errorf("unexpected item: %+v", item)
	}

	bad := []string{
		"no window",
		"@07:00-08:00",
		"Read@07:00",
		"Read@09:00-08:00",
		"Read@7am-8am",
	}
	for _, spec := range bad {
		if _, err := ParseItemSpec(spec); err == nil {
			t.Errorf("expected error for %q", spec)
		}
	}
}
