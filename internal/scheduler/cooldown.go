package scheduler

import "time"

// CooldownKind distinguishes the short pause between light jobs from the
// long thermal recovery window in the middle of a full battery.
type CooldownKind int

const (
	CooldownStandard CooldownKind = iota
	CooldownThermal
)

func (k CooldownKind) String() string {
	if k == CooldownThermal {
		return "thermal"
	}
	return "standard"
}

// CooldownPolicy decides how long to pause between jobs. The thermal window
// only applies inside a full battery, where the later renders are heavy
// enough that back-to-back runs would throttle the machine and distort the
// timings.
type CooldownPolicy struct {
	// Standard is the pause between lighter jobs.
	Standard time.Duration

	// Thermal is the recovery window before heavy jobs in a full battery.
	Thermal time.Duration

	// ThermalStep is the countdown granularity of the thermal window.
	ThermalStep time.Duration

	// ThermalBatterySize is the battery size that triggers thermal
	// cooldowns.
	ThermalBatterySize int
}

const (
	defaultStandardCooldown = 10 * time.Second
	defaultThermalCooldown  = 5 * time.Minute
	defaultThermalStep      = 30 * time.Second
)

// DefaultCooldownPolicy returns the standard policy.
func DefaultCooldownPolicy() CooldownPolicy {
	return CooldownPolicy{
		Standard:           defaultStandardCooldown,
		Thermal:            defaultThermalCooldown,
		ThermalStep:        defaultThermalStep,
		ThermalBatterySize: 4,
	}
}

func (p CooldownPolicy) withDefaults() CooldownPolicy {
	if p.Standard <= 0 {
		p.Standard = defaultStandardCooldown
	}
	if p.Thermal <= 0 {
		p.Thermal = defaultThermalCooldown
	}
	if p.ThermalStep <= 0 {
		p.ThermalStep = defaultThermalStep
	}
	if p.ThermalBatterySize <= 0 {
		p.ThermalBatterySize = 4
	}
	return p
}

// Kind returns the cooldown kind for the transition after job i (0-based)
// in a battery of the given size. Thermal windows apply only in a full
// battery, and only from the second transition on.
func (p CooldownPolicy) Kind(i, total int) CooldownKind {
	if total == p.ThermalBatterySize && i >= 1 {
		return CooldownThermal
	}
	return CooldownStandard
}
