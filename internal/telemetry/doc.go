// Package telemetry records live device readings in InfluxDB.
//
// Every successful state read becomes one device_state point tagged by
// device and model. Readings are only taken when a client asks for a
// device's state; this package never polls.
package telemetry
