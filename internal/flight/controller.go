package flight

import (
	"fmt"
	"math"
)

// Controller applies the stabilization law against a mutable target
// altitude. The constants are fixed unless retuned through SetParam.
type Controller struct {
	k      Constants
	target float64
}

func NewController(k Constants, targetAltitude float64) *Controller {
	return &Controller{k: k, target: targetAltitude}
}

func (c *Controller) Actuate(s Sample, d Disturbance) Command {
	return Actuate(s, d, c.k, c.target)
}

func (c *Controller) Constants() Constants { return c.k }

func (c *Controller) TargetAltitude() float64 { return c.target }

func (c *Controller) SetTargetAltitude(v float64) { c.target = v }

// AdjustTargetAltitude moves the target by delta and returns the new value.
func (c *Controller) AdjustTargetAltitude(delta float64) float64 {
	c.target += delta
	return c.target
}

// GetParams returns tunable parameters for live adjustment
func (c *Controller) GetParams() map[string]float64 {
	return map[string]float64{
		"VerticalThrust": c.k.VerticalThrust,
		"VerticalOffset": c.k.VerticalOffset,
		"VerticalP":      c.k.VerticalP,
		"RollP":          c.k.RollP,
		"PitchP":         c.k.PitchP,
		"YawP":           c.k.YawP,
		"Target":         c.target,
	}
}

// SetParam adjusts a single parameter by name.
func (c *Controller) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("flight: %s must be finite", name)
	}
	switch name {
	case "VerticalThrust":
		c.k.VerticalThrust = value
	case "VerticalOffset":
		c.k.VerticalOffset = value
	case "VerticalP":
		c.k.VerticalP = value
	case "RollP":
		c.k.RollP = value
	case "PitchP":
		c.k.PitchP = value
	case "YawP":
		c.k.YawP = value
	case "Target":
		c.target = value
	default:
		return fmt.Errorf("flight: unknown parameter %q", name)
	}
	return nil
}
