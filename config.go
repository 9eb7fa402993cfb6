package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dimfu/tempo/internal/metronome"
)

type Preset struct {
	Key     string  `json:"key" toml:"key" yaml:"key"`
	Tempo   int     `json:"tempo" toml:"tempo" yaml:"tempo"`
	Timesig string  `json:"timesig" toml:"timesig" yaml:"timesig"`
	Volume  float64 `json:"volume" toml:"volume" yaml:"volume"`
}

type Config struct {
	Tempo   int      `json:"tempo" toml:"tempo" yaml:"tempo"`
	Timesig string   `json:"timesig" toml:"timesig" yaml:"timesig"`
	Volume  float64  `json:"volume" toml:"volume" yaml:"volume"`
	Output  string   `json:"output" toml:"output" yaml:"output"`
	UI      string   `json:"ui" toml:"ui" yaml:"ui"`
	Presets []Preset `json:"presets" toml:"presets" yaml:"presets"`
}

func DefaultConfig() *Config {
	return &Config{
		Tempo:   metronome.DefaultTempo,
		Timesig: fmt.Sprintf("%d/4", metronome.DefaultTimeSignature),
		Volume:  metronome.DefaultVolume,
		Output:  "speaker",
		UI:      "auto",
	}
}

// ConfigManager finds and reads the config file. Presets are read only.
type ConfigManager struct {
	Config     *Config
	ConfigPath string
}

// configSearchPaths returns the config files tried in order.
func configSearchPaths() []string {
	home := UserHomeDir()
	return []string{
		home + ".tempo.json",
		home + ".tempo.toml",
		home + ".tempo.yaml",
		home + ".tempo.yml",
	}
}

// NewConfigManager loads path, or the first existing default config file
// when path is empty. A missing default file yields DefaultConfig.
func NewConfigManager(path string) (*ConfigManager, error) {
	cm := &ConfigManager{Config: DefaultConfig()}

	if path == "" {
		for _, p := range configSearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			return cm, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	if err := cm.LoadConfig(f, filepath.Ext(path)); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	cm.ConfigPath = path
	return cm, nil
}

// LoadConfig decodes r on top of the current config. ext selects the format.
func (cm *ConfigManager) LoadConfig(r io.Reader, ext string) error {
	switch strings.ToLower(ext) {
	case ".json", "":
		if err := json.NewDecoder(r).Decode(cm.Config); err != nil && err != io.EOF {
			return err
		}
	case ".toml":
		if _, err := toml.NewDecoder(r).Decode(cm.Config); err != nil {
			return err
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(cm.Config); err != nil && err != io.EOF {
			return err
		}
	default:
		return errors.Errorf("unknown config format %q", ext)
	}
	return nil
}

func (cm *ConfigManager) GetPresetByKey(key string) *Preset {
	for _, preset := range cm.Config.Presets {
		if preset.Key == key {
			return &preset
		}
	}
	return nil
}

// ApplyPreset overrides the config with the non zero fields of the preset
// named key.
func (cm *ConfigManager) ApplyPreset(key string) error {
	p := cm.GetPresetByKey(key)
	if p == nil {
		return fmt.Errorf("`%v` preset not found", key)
	}
	if p.Tempo != 0 {
		cm.Config.Tempo = p.Tempo
	}
	if p.Timesig != "" {
		cm.Config.Timesig = p.Timesig
	}
	if p.Volume != 0 {
		cm.Config.Volume = p.Volume
	}
	return nil
}
