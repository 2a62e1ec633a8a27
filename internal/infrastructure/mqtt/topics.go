package mqtt

import "strings"

// DefaultTopicPrefix roots every topic when none is configured.
const DefaultTopicPrefix = "govee"

// Topics builds the topic hierarchy under a prefix:
//
//	{prefix}/devices/{id}/command   command events, not retained
//	{prefix}/devices/{id}/state     latest live state, retained
//	{prefix}/system/status          online/offline, retained, LWT
type Topics struct {
	prefix string
}

// NewTopics returns a builder for prefix, trimming slashes.
func NewTopics(prefix string) Topics {
	p := strings.Trim(prefix, "/")
	if p == "" {
		p = DefaultTopicPrefix
	}
	return Topics{prefix: p}
}

// Prefix returns the root segment.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// DeviceCommand returns the topic for accepted commands on a device.
func (t Topics) DeviceCommand(deviceID string) string {
	return t.Prefix() + "/devices/" + sanitizeSegment(deviceID) + "/command"
}

// DeviceState returns the topic for a device's latest state.
func (t Topics) DeviceState(deviceID string) string {
	return t.Prefix() + "/devices/" + sanitizeSegment(deviceID) + "/state"
}

// SystemStatus returns the service status topic.
func (t Topics) SystemStatus() string {
	return t.Prefix() + "/system/status"
}

// sanitizeSegment replaces characters that are not allowed or meaningful
// inside a single topic level.
var segmentReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

func sanitizeSegment(s string) string {
	return segmentReplacer.Replace(s)
}
