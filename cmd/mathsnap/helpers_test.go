package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake collaborators
// ---------------------------------------------------------------------------

// fakeCapturer writes a small file, like a screenshot tool would.
type fakeCapturer struct {
	dir string
	err error
}

func (f *fakeCapturer) Capture(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	p := filepath.Join(f.dir, "capture.png")
	return p, os.WriteFile(p, []byte("png"), 0o600)
}

type fakeRecognizer struct {
	text string
	err  error

	mu    sync.Mutex
	paths []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	return f.text, f.err
}

// fakeRenderer writes render_<n>.png for each call.
type fakeRenderer struct {
	dir string
	err error

	mu   sync.Mutex
	docs []string
}

func (f *fakeRenderer) Render(_ context.Context, doc string) (mathsnap.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return mathsnap.Artifact{}, f.err
	}
	p := filepath.Join(f.dir, fmt.Sprintf("render_%d.png", len(f.docs)))
	if err := os.WriteFile(p, []byte("png"), 0o600); err != nil {
		return mathsnap.Artifact{}, err
	}
	return mathsnap.Artifact{Path: p}, nil
}

func (f *fakeRenderer) Docs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.docs...)
}

// fakeSinks records the clipboard, notifications and viewer calls.
type fakeSinks struct {
	mu      sync.Mutex
	copied  []string
	notices []mathsnap.Notice
	opened  []string
}

func (f *fakeSinks) Copy(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copied = append(f.copied, text)
	return nil
}

func (f *fakeSinks) Notify(_ context.Context, n mathsnap.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
	return nil
}

func (f *fakeSinks) Open(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, path)
	return nil
}

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment
// ---------------------------------------------------------------------------

// testEnv is an Environment with buffered output, a fixed variable map and
// fake adapters.
type testEnv struct {
	*Environment
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
	vars       map[string]string
	dir        string
	capturer   *fakeCapturer
	recognizer *fakeRecognizer
	renderer   *fakeRenderer
	sinks      *fakeSinks
	adapterErr error
	gotConfig  *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	te := &testEnv{
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
		vars:       map[string]string{"MISTRAL_API_KEY": "test-key"},
		dir:        dir,
		capturer:   &fakeCapturer{dir: dir},
		recognizer: &fakeRecognizer{text: "hello world"},
		renderer:   &fakeRenderer{dir: dir},
		sinks:      &fakeSinks{},
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdin:  strings.NewReader(""),
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return te.vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(te.vars))
			for k, v := range te.vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		Adapters: func(cfg *config.Config) (*adapters, error) {
			te.gotConfig = cfg
			if te.adapterErr != nil {
				return nil, te.adapterErr
			}
			return &adapters{
				Capturer:   te.capturer,
				Recognizer: te.recognizer,
				Renderer:   te.renderer,
				Clipboard:  te.sinks,
				Notifier:   te.sinks,
				Opener:     te.sinks,
			}, nil
		},
	}
	return te
}

// writeConfig writes a YAML config into the test dir and returns its path.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, "mathsnap.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return p
}
