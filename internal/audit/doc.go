// Package audit keeps a durable trail of device commands.
//
// A Recorder is registered with the device.Controller as a CommandSink. It
// queues each accepted command on a bounded channel and writes it to the
// audit_logs table from a single goroutine, so a slow disk never holds up an
// HTTP request. When the queue is full the entry is dropped and the caller
// gets ErrQueueFull, which the controller logs.
//
// The Repository reads the trail back for the /api/v1/audit endpoint.
package audit
