package govee

import (
	"encoding/json"
	"strconv"

	"github.com/nerrad567/govee-web/internal/device"
)

// envelope is the common response wrapper.
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type devicesData struct {
	Devices device.Directory `json:"devices"`
}

// stateData carries properties as a list of single-key objects, e.g.
// [{"online":"true"},{"powerState":"on"},{"brightness":80}].
type stateData struct {
	Device     string                       `json:"device"`
	Model      string                       `json:"model"`
	Properties []map[string]json.RawMessage `json:"properties"`
}

type controlRequest struct {
	Device string         `json:"device"`
	Model  string         `json:"model"`
	Cmd    controlCommand `json:"cmd"`
}

type controlCommand struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// toState flattens the property list into a device.State.
// Unknown properties are ignored.
func (s stateData) toState() (device.State, error) {
	st := device.State{ID: s.Device, Model: s.Model, Power: device.PowerOff}

	for _, prop := range s.Properties {
		for name, raw := range prop {
			var err error
			switch name {
			case "online":
				st.Online, err = decodeLooseBool(raw)
			case "powerState":
				var p string
				if err = json.Unmarshal(raw, &p); err == nil {
					st.Power = device.PowerState(p)
				}
			case "brightness":
				err = json.Unmarshal(raw, &st.Brightness)
			case "color":
				var c device.Color
				if err = json.Unmarshal(raw, &c); err == nil {
					st.Color = &c
				}
			case "colorTem", "colorTemInKelvin":
				err = json.Unmarshal(raw, &st.ColorTemperature)
			}
			if err != nil {
				return device.State{}, err
			}
		}
	}
	return st, nil
}

// decodeLooseBool accepts both true and "true"; the API uses either.
func decodeLooseBool(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, err
	}
	return strconv.ParseBool(s)
}
