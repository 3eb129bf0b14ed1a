package config

import (
	"testing"
	"time"
)

func TestDurationOrDefault(t *testing.T) {
	cases := []struct {
		value    string
		fallback time.Duration
		want     time.Duration
	}{
		{"45s", 30 * time.Second, 45 * time.Second},
		{" 2h ", 12 * time.Hour, 2 * time.Hour},
		{"", 30 * time.Second, 30 * time.Second},
		{"banana", 30 * time.Second, 30 * time.Second},
		{"0s", 12 * time.Hour, 12 * time.Hour},
		{"-5m", 12 * time.Hour, 12 * time.Hour},
	}

	for _, tc := range cases {
		if got := durationOrDefault(tc.value, tc.fallback); got != tc.want {
			t.Errorf("durationOrDefault(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestPositiveInt(t *testing.T) {
	cases := []struct {
		value    string
		fallback int
		want     int
	}{
		{"6", 4, 6},
		{"", 4, 4},
		{"zero", 4, 4},
		{"0", 4, 4},
		{"-2", 4, 4},
	}

	for _, tc := range cases {
		if got := positiveInt(tc.value, tc.fallback); got != tc.want {
			t.Errorf("positiveInt(%q) = %d, want %d", tc.value, got, tc.want)
		}
	}
}
