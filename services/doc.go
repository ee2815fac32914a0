// Package services resolves the collaborators a handler needs by their type.
//
// A Registry is filled once at startup with values (shared by every invocation) and factories (called once
// per Container). The message bus creates one Container per handler invocation, so every invocation gets its
// own unit of work while sharing hashers, senders and settings.
package services
