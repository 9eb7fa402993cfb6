package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/dimfu/tempo/internal/metronome"
)

// note values accepted below the beat count, e.g. the 4 in "3/4"
var noteValues = []int{2, 4, 8}

func ValidTempo(input int) bool {
	return input >= metronome.MinTempo && input <= metronome.MaxTempo
}

// ValidTimeSig parses "3" or "3/4" and returns the beats per measure.
func ValidTimeSig(input string) (int, error) {
	parts := strings.Split(strings.TrimSpace(input), "/")
	if len(parts) > 2 {
		return 0, errors.New("invalid time signature format")
	}

	beats, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.New("invalid number in time signature")
	}

	if len(parts) == 2 {
		noteValue, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, errors.New("invalid number in time signature")
		}
		if !contains(noteValues, noteValue) {
			return 0, errors.New("time signature not found")
		}
	}

	if !metronome.ValidTimeSignature(beats) {
		return 0, errors.New("time signature not found")
	}
	return beats, nil
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func UserHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + string(os.PathSeparator)
}
