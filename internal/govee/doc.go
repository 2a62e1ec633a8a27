// Package govee is a client for the Govee developer API (v1).
//
// It implements directory.Fetcher (FetchDirectory) and device.Upstream
// (State, Turn, SetColor). Every request carries the Govee-API-Key header.
// Commands are checked against the device's supportCmds before sending, so
// an unsupported command fails locally with ErrUnsupportedCommand.
package govee
