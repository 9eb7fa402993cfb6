//go:build !linux

package click

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func newPulse(zerolog.Logger) (Output, error) {
	return nil, errors.Wrap(ErrUnsupportedOutput, "pulse is only available on linux")
}
