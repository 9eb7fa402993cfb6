package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigFormats(t *testing.T) {
	tests := []struct {
		ext  string
		body string
	}{
		{".json", `{"tempo": 90, "timesig": "3/4", "volume": 0.2, "presets": [{"key": "waltz", "tempo": 84, "timesig": "3"}]}`},
		{".toml", "tempo = 90\ntimesig = \"3/4\"\nvolume = 0.2\n\n[[presets]]\nkey = \"waltz\"\ntempo = 84\ntimesig = \"3\"\n"},
		{".yaml", "tempo: 90\ntimesig: 3/4\nvolume: 0.2\npresets:\n  - key: waltz\n    tempo: 84\n    timesig: \"3\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			cm := &ConfigManager{Config: DefaultConfig()}
			if err := cm.LoadConfig(strings.NewReader(tt.body), tt.ext); err != nil {
				t.Fatal(err)
			}
			c := cm.Config
			if c.Tempo != 90 || c.Timesig != "3/4" || c.Volume != 0.2 {
				t.Errorf("config %+v", c)
			}
			if c.Output != "speaker" {
				t.Errorf("default output lost: %q", c.Output)
			}
			if p := cm.GetPresetByKey("waltz"); p == nil || p.Tempo != 84 {
				t.Errorf("preset %+v", p)
			}
		})
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cm := &ConfigManager{Config: DefaultConfig()}
	if err := cm.LoadConfig(strings.NewReader(""), ".json"); err != nil {
		t.Fatal(err)
	}
	if cm.Config.Tempo != 120 {
		t.Errorf("tempo %d", cm.Config.Tempo)
	}
}

func TestLoadConfigUnknownFormat(t *testing.T) {
	cm := &ConfigManager{Config: DefaultConfig()}
	if err := cm.LoadConfig(strings.NewReader(""), ".ini"); err == nil {
		t.Error("expected error")
	}
}

func TestApplyPreset(t *testing.T) {
	cm := &ConfigManager{Config: DefaultConfig()}
	cm.Config.Presets = []Preset{{Key: "slow", Tempo: 60}}

	if err := cm.ApplyPreset("slow"); err != nil {
		t.Fatal(err)
	}
	if cm.Config.Tempo != 60 || cm.Config.Timesig != "4/4" {
		t.Errorf("config %+v", cm.Config)
	}
	if err := cm.ApplyPreset("fast"); err == nil {
		t.Error("missing preset did not fail")
	}
}

func TestNewConfigManagerFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempo.toml")
	if err := os.WriteFile(path, []byte("tempo = 150\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cm, err := NewConfigManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if cm.Config.Tempo != 150 || cm.ConfigPath != path {
		t.Errorf("got %+v from %q", cm.Config, cm.ConfigPath)
	}
}

func TestNewConfigManagerDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cm, err := NewConfigManager("")
	if err != nil {
		t.Fatal(err)
	}
	if cm.ConfigPath != "" || cm.Config.Tempo != 120 {
		t.Errorf("got %+v from %q", cm.Config, cm.ConfigPath)
	}
}
