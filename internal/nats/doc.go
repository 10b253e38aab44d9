// Package nats exposes the settings form over NATS next to the HTTP API.
//
// Requests are answered on these subjects, with Prefix defaulting to
// "rgbnode":
//
//	<prefix>.form.get    -> Reply{Form}
//	<prefix>.form.set    SetRequest{id, value} -> Reply{Reload, Form}
//	<prefix>.state.get   -> Reply{State}
//
// Device events are published as JSON:
//
//	<prefix>.events.applied   events.ProfileAppliedEvent
//	<prefix>.events.record    events.RecordStateEvent
//	<prefix>.events.reload    events.FormReloadEvent
//
// Several controllers can share one broker by giving each its own prefix.
// Without an external broker the daemon runs an embedded one on
// localhost, e.g.
//
//	nats req rgbnode.form.set '{"id":"w0","value":false}'
//	nats sub 'rgbnode.events.>'
package nats
