package main

import "testing"

func TestValidTempo(t *testing.T) {
	for _, bpm := range []int{40, 120, 200} {
		if !ValidTempo(bpm) {
			t.Errorf("ValidTempo(%d) = false", bpm)
		}
	}
	for _, bpm := range []int{0, 39, 201, 600} {
		if ValidTempo(bpm) {
			t.Errorf("ValidTempo(%d) = true", bpm)
		}
	}
}

func TestValidTimeSig(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"4/4", 4, false},
		{"3/4", 3, false},
		{"6/8", 6, false},
		{"2/2", 2, false},
		{"3", 3, false},
		{" 6 ", 6, false},
		{"5/4", 0, true},
		{"4/3", 0, true},
		{"12/8", 0, true},
		{"4/4/4", 0, true},
		{"x/4", 0, true},
		{"4/x", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ValidTimeSig(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidTimeSig(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidTimeSig(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestResolveLogPath(t *testing.T) {
	got, err := resolveLogPath("/tmp/tempo.log")
	if err != nil || got != "/tmp/tempo.log" {
		t.Errorf("flag: got %q, %v", got, err)
	}

	t.Setenv("TEMPO_LOG_PATH", "/tmp/env.log")
	got, err = resolveLogPath("")
	if err != nil || got != "/tmp/env.log" {
		t.Errorf("env: got %q, %v", got, err)
	}

	t.Setenv("TEMPO_LOG_PATH", "")
	got, err = resolveLogPath("")
	if err != nil || got == "" {
		t.Errorf("default: got %q, %v", got, err)
	}
}
