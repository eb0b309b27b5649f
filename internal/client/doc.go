// Package client is the caller side of the account service: it talks to the
// HTTP API, persists the bearer token, derives the local session from it and
// decides which views a user may reach.
//
// The session derived here is a hint for navigation only. Every protected
// request is still verified by the server.
package client
