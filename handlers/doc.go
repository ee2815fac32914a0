// Package handlers holds the service layer of the bookshelf: one handler per command or event,
// each resolving its collaborators from the services container of its invocation.
//
// NewRegistry returns the routing table for the message bus and RegisterServices wires the
// services the handlers expect.
package handlers
