// Package device holds the Govee device model and the Controller that
// resolves device identifiers and forwards commands.
//
// # Architecture
//
//	HTTP handler ──▶ Controller ──▶ DirectoryCache (List, HealthCheck)
//	                     │
//	                     └────────▶ Upstream (State, Turn, SetColor)
//
// The Controller never stores devices. Every Resolve lists the directory
// through the cache and scans it; the cache decides whether that costs an
// upstream call.
//
// # Key Types
//
//   - Device: one inventory entry, in the upstream wire format
//   - Directory: the whole inventory, read and replaced as a unit
//   - State: a live reading, never cached
//   - Color, PowerState: validated command arguments
//
// # Usage
//
//	ctrl := device.NewController(cache, goveeClient)
//	ctrl.SetLogger(log)
//	ctrl.AddCommandSink(publisher)
//
//	if err := ctrl.SetPower(ctx, "AA:BB:CC", device.PowerOn); err != nil {
//	    if errors.Is(err, device.ErrDeviceNotFound) {
//	        // 404
//	    }
//	}
package device
