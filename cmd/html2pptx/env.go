package main

import (
	"context"
	"io"
	"os"
	"time"

	html2pptx "github.com/alnah/go-html2pptx"
)

// batchFunc converts inputs with a pool of the given size.
type batchFunc func(ctx context.Context, workers int, inputs []html2pptx.Input, opts ...html2pptx.Option) ([]html2pptx.Result, error)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the conversion backend.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Batch  batchFunc
}

// DefaultEnv returns the production environment backed by headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Batch:  runBatch,
	}
}
