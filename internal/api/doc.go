// Package api handles incoming HTTP requests, request validation and
// response formatting for the tutor. It adapts HTTP calls to the session
// registry and conversation controllers, and streams conversation events to
// browsers over a WebSocket feed.
package api
