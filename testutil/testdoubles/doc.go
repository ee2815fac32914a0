// Package testdoubles provides spies for the logging, metrics, tracing and notification interfaces.
package testdoubles
