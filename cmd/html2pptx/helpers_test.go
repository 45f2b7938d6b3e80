package main

// Notes:
// - Test infrastructure shared by the command tests: a fake batch backend
//   recording what convert asked for, and fixture writers.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	html2pptx "github.com/alnah/go-html2pptx"
)

// ---------------------------------------------------------------------------
// fakeBatch - records inputs instead of launching Chrome
// ---------------------------------------------------------------------------

type fakeBatch struct {
	mu      sync.Mutex
	calls   int
	workers int
	inputs  []html2pptx.Input
	opts    int

	// fail maps an input base name to the error its Result carries.
	fail  map[string]error
	fonts html2pptx.FontStatus
	err   error
}

func (f *fakeBatch) run(_ context.Context, workers int, inputs []html2pptx.Input, opts ...html2pptx.Option) ([]html2pptx.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.workers = workers
	f.inputs = append([]html2pptx.Input(nil), inputs...)
	f.opts = len(opts)
	if f.err != nil {
		return nil, f.err
	}

	results := make([]html2pptx.Result, len(inputs))
	for i, in := range inputs {
		results[i] = html2pptx.Result{
			InputPath:  in.HTMLPath,
			OutputPath: in.OutputPath,
			Slides:     2,
			Fonts:      f.fonts,
			Duration:   15 * time.Millisecond,
			Err:        f.fail[filepath.Base(in.HTMLPath)],
		}
	}
	return results, nil
}

// testEnv returns an Environment writing to buffers and converting with fb.
func testEnv(fb *fakeBatch) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		Batch:  fb.run,
	}
	return env, &stdout, &stderr
}

// writeFile creates path (and its parents) with content.
func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleDeck = `<!DOCTYPE html>
<html><body>
<div class="slide">
  <div class="slide-header"><h1 class="title">Roadmap</h1><p class="subtitle">2024</p></div>
  <div class="slide-content">
    <div class="keyword-item"><i class="material-icons">bolt</i>
      <div class="keyword-title">Speed</div><div class="keyword-desc">Faster builds</div></div>
  </div>
</div>
<div class="slide">
  <div class="slide-content"><pre class="code-block">go test ./...</pre></div>
</div>
</body></html>
`

func containsAll(t *testing.T, got string, wants ...string) {
	t.Helper()

	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
}
