// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trigger

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgePollTimeout bounds each wait so cancellation is noticed.
const edgePollTimeout = 200 * time.Millisecond

type edgeWaiter interface {
	WaitForEdge(timeout time.Duration) bool
}

// GPIO fires on each rising edge of an input pin, e.g. a sensor's
// data-ready line.
type GPIO struct {
	name string
	pin  edgeWaiter
}

// NewGPIO initializes the periph host and arms edge detection on the
// named pin.
func NewGPIO(pinName string) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("trigger: periph host init: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("trigger: GPIO pin %q not found", pinName)
	}
	if err := pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("trigger: arm edge on %s: %w", pinName, err)
	}

	return &GPIO{name: pinName, pin: pin}, nil
}

func (g *GPIO) Run(ctx context.Context, fire func(time.Time)) error {
	defer g.disarm()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if g.pin.WaitForEdge(edgePollTimeout) {
			fire(time.Now())
		}
	}
}

func (g *GPIO) disarm() {
	if p, ok := g.pin.(gpio.PinIn); ok {
		_ = p.In(gpio.PullNoChange, gpio.NoEdge)
	}
}
