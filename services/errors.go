package services

import "errors"

// ErrServiceNotRegistered is returned by Get for a type that has neither a value nor a factory.
var ErrServiceNotRegistered = errors.New("service not registered")

// ErrFactoryFailed is joined with the factory's error when a service cannot be created.
var ErrFactoryFailed = errors.New("service factory failed")
