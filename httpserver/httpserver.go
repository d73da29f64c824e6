// Package httpserver defines the lifecycle shared by HTTP servers of the service.
package httpserver

import "io"

// Provider serves until Close is called.
type Provider interface {
	Start() error
	io.Closer
}

// Runner starts serving in the background.
type Runner interface {
	Run()
}

type RunableProvider interface {
	Provider
	Runner
}
