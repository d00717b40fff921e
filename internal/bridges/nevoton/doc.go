// Package nevoton bridges a Nevoton Komfort sauna controller onto the
// Gray Logic MQTT bus.
//
// The controller exposes an HTTP-ish M2M interface that no conforming
// HTTP client can talk to: the status line arrives twice and persistent
// connections are unreliable. The Client therefore speaks raw TCP with
// minimal HTTP/1.0 requests, reads until the peer closes, and digs the
// JSON body out from between the first '{' and the last '}'.
//
// The Bridge polls the controller on a fixed interval, publishes
// retained state messages when the snapshot changes, executes parameter
// write commands received over MQTT, and reports its health. A
// credential rejection (error_api 6) halts polling permanently; every
// other failure is retried on the next tick.
package nevoton
