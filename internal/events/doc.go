// Package events publishes device activity to the MQTT broker.
//
// The Publisher is registered with the device.Controller as both a
// CommandSink and a StateSink:
//
//	govee/devices/{id}/command   accepted command, not retained
//	govee/devices/{id}/state     latest live state, retained
//
// Events are one-way notifications. Nothing read from the broker flows back
// into the directory cache.
package events
