package flash

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiotest"
)

func overloadGPIO(pin gpio.PinIO, initErr error) func() {
	hostInitRef, pinByNameRef := hostInit, pinByName
	hostInit = func() error { return initErr }
	pinByName = func(string) gpio.PinIO { return pin }
	return func() {
		hostInit, pinByName = hostInitRef, pinByNameRef
	}
}

func TestOpenWithoutPinIsNoop(t *testing.T) {
	is := is.New(t)

	l, err := Open("")
	is.NoErr(err)
	is.Equal(l, Noop{})
	is.NoErr(l.On())
	is.NoErr(l.Off())
}

func TestOpenDrivesPin(t *testing.T) {
	is := is.New(t)

	pin := &gpiotest.Pin{N: "GPIO4", Num: 4, L: gpio.High}
	defer overloadGPIO(pin, nil)()

	l, err := Open("GPIO4")
	is.NoErr(err)
	is.Equal(pin.L, gpio.Low)

	is.NoErr(l.On())
	is.Equal(pin.L, gpio.High)

	is.NoErr(l.Off())
	is.Equal(pin.L, gpio.Low)
}

func TestOpenUnknownPin(t *testing.T) {
	is := is.New(t)

	defer overloadGPIO(nil, nil)()

	_, err := Open("GPIO99")
	is.True(err != nil)
}

func TestOpenHostInitFailure(t *testing.T) {
	is := is.New(t)

	defer overloadGPIO(nil, errors.New("no gpio driver"))()

	_, err := Open("GPIO4")
	is.Equal(err.Error(), "unable to initialise gpio host: no gpio driver")
}
