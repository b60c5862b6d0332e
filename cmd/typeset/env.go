package main

import (
	"io"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/literatipub/typeset"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now        func() time.Time
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	Environ    func() []string
	LoadDotEnv func() error
	Listen     func(network, addr string) (net.Listener, error)

	// Engine overrides the go-rod engine built from config when set.
	Engine typeset.Engine
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Getenv:     os.Getenv,
		Environ:    os.Environ,
		LoadDotEnv: func() error { return godotenv.Load() },
		Listen:     net.Listen,
	}
}
