// Package influx is a minimal HTTP/1.1 client for the InfluxDB v2 write and
// query endpoints over a single, exclusively owned TCP connection.
//
// The client frames each request by hand, sends header and body with one
// scatter-gather write loop that survives partial writes, and optionally
// parses the response (Content-Length or chunked bodies).
//
// # Usage
//
//	ep, err := influx.Resolve(ctx, influx.EndpointConfig{
//	    Host:  "127.0.0.1",
//	    Port:  8086,
//	    Org:   "lab",
//	    Bucket: "telemetry",
//	    Token: token,
//	})
//	if err != nil {
//	    return err
//	}
//	client, err := influx.Open(ctx, ep)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Write(lines)
//
// # Fire-and-forget
//
// When the endpoint does not await responses, Write returns as soon as the
// request bytes are handed to the kernel. The responses are left unread on
// the socket and are drained, in order, by the next request that does wait
// (WriteAndWait or Query).
//
// # Blocking
//
// All calls block. Reading a response has no deadline unless one is set
// with WithResponseTimeout, so an unresponsive server can block an awaiting
// caller indefinitely. There is no way to cancel a request in flight.
//
// # Errors
//
// Every failure is an *Error carrying a negative Code. The sentinel values
// (ErrWrite, ErrFraming, ErrStatus, ...) can be matched with errors.Is.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package influx
