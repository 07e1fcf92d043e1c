// Package flash drives the capture light from a GPIO pin.
package flash

import (
	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/xerror"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

type Light interface {
	On() error
	Off() error
}

var hostInit = func() error {
	_, err := host.Init()
	return err
}

var pinByName = func(name string) gpio.PinIO {
	return gpioreg.ByName(name)
}

// Open returns a light on pinName, or one that does nothing when no pin
// is configured. The light starts off.
func Open(pinName string) (Light, error) {
	if pinName == "" {
		return Noop{}, nil
	}

	if err := hostInit(); err != nil {
		return nil, xerror.Errorf("unable to initialise gpio host: %w", err)
	}

	pin := pinByName(pinName)
	if pin == nil {
		return nil, xerror.New("unknown flash pin").WithParam("pin", pinName)
	}

	l := &GPIOLight{name: pinName, pin: pin}
	if err := l.Off(); err != nil {
		return nil, err
	}
	log.Debug("Flash light ready on pin %s", pinName)
	return l, nil
}

type GPIOLight struct {
	name string
	pin  gpio.PinOut
}

func (l *GPIOLight) On() error {
	if err := l.pin.Out(gpio.High); err != nil {
		return xerror.Errorf("failed to set flash pin %s high: %w", l.name, err)
	}
	return nil
}

func (l *GPIOLight) Off() error {
	if err := l.pin.Out(gpio.Low); err != nil {
		return xerror.Errorf("failed to set flash pin %s low: %w", l.name, err)
	}
	return nil
}

type Noop struct{}

func (Noop) On() error  { return nil }
func (Noop) Off() error { return nil }
