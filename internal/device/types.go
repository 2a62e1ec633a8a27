package device

import (
	"slices"
	"time"
)

// Command names understood by the upstream API. A device advertises the
// subset it accepts in SupportedCommands.
const (
	CommandTurn       = "turn"
	CommandColor      = "color"
	CommandBrightness = "brightness"
	CommandColorTem   = "colorTem"
)

// Device is one entry of the vendor's device inventory.
//
// Field names follow the upstream wire format so the same JSON is used for
// API responses and for the cached directory payload.
type Device struct {
	ID                string      `json:"device"`
	Model             string      `json:"model"`
	Name              string      `json:"deviceName"`
	Controllable      bool        `json:"controllable"`
	Retrievable       bool        `json:"retrievable"`
	SupportedCommands []string    `json:"supportCmds"`
	Properties        *Properties `json:"properties,omitempty"`
}

// Properties holds optional per-model capability details.
type Properties struct {
	ColorTem *ColorTemRange `json:"colorTem,omitempty"`
}

// ColorTemRange is the colour temperature range in Kelvin a device accepts.
type ColorTemRange struct {
	Range struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"range"`
}

// Supports reports whether the device advertises the named command.
func (d Device) Supports(cmd string) bool {
	return slices.Contains(d.SupportedCommands, cmd)
}

// Directory is the full device inventory, in upstream order.
// It is always read or replaced as a whole.
type Directory []Device

// IDs returns the device identifiers in directory order.
func (dir Directory) IDs() []string {
	ids := make([]string, len(dir))
	for i, d := range dir {
		ids[i] = d.ID
	}
	return ids
}

// PowerState is the on/off state of a device.
type PowerState string

// Power states as sent to and received from the upstream API.
const (
	PowerOn  PowerState = "on"
	PowerOff PowerState = "off"
)

// ParsePowerState validates a power state string.
//
// Returns:
//   - PowerState: PowerOn or PowerOff
//   - error: ErrInvalidPowerState for anything else
func ParsePowerState(s string) (PowerState, error) {
	switch PowerState(s) {
	case PowerOn, PowerOff:
		return PowerState(s), nil
	default:
		return "", &InvalidInputError{Field: "state", Value: s, Err: ErrInvalidPowerState}
	}
}

// State is a point-in-time reading of one device. It is fetched live and
// never cached.
type State struct {
	ID               string     `json:"device"`
	Model            string     `json:"model"`
	Name             string     `json:"deviceName,omitempty"`
	Online           bool       `json:"online"`
	Power            PowerState `json:"powerState"`
	Brightness       int        `json:"brightness"`
	Color            *Color     `json:"color,omitempty"`
	ColorTemperature int        `json:"colorTem,omitempty"`
}

// Command describes a control operation that reached the upstream API.
// It is handed to CommandSinks after the upstream accepted it.
type Command struct {
	DeviceID  string    `json:"device"`
	Model     string    `json:"model"`
	Name      string    `json:"name"`
	Value     any       `json:"value"`
	IssuedAt  time.Time `json:"issued_at"`
	RequestID string    `json:"request_id,omitempty"`
}
