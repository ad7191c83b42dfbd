package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"photopost/internal/config"
	"photopost/internal/poster"
	"photopost/internal/storage"
	"photopost/internal/uploader"
)

type fakeRunner struct {
	opts uploader.Options
	res  uploader.Result
	err  error
	runs int
}

func (f *fakeRunner) Run(ctx context.Context, opts uploader.Options) (uploader.Result, error) {
	f.runs++
	f.opts = opts
	return f.res, f.err
}

func newTestRoot(t *testing.T, run *fakeRunner) *Root {
	t.Helper()
	tmp := t.TempDir()
	cfg := &config.Config{
		Paths: config.Paths{
			PendingDir:   filepath.Join(tmp, "images"),
			ArchiveDir:   filepath.Join(tmp, "uploaded"),
			SessionFile:  filepath.Join(tmp, "config", "session.json"),
			DatabasePath: filepath.Join(tmp, "photopost.db"),
		},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRoot(cfg, log)
	r.credentials = func() (config.Credentials, error) {
		return config.Credentials{Username: "user", Password: "pass"}, nil
	}
	r.newClient = func() poster.Client { return nil }
	r.newRunner = func(config.Credentials, poster.Client, *storage.Store) runner {
		return run
	}
	return r
}

func execute(t *testing.T, root *Root, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(root)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListVarsPrintsRegistryWithoutCredentials(t *testing.T) {
	run := &fakeRunner{}
	root := newTestRoot(t, run)
	root.credentials = func() (config.Credentials, error) {
		t.Fatal("list-vars must not read credentials")
		return config.Credentials{}, nil
	}

	out, err := execute(t, root, "--list-vars")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{
		"AVAILABLE CAPTION VARIABLES",
		"{FILE_NAME",
		"{IMAGE_ORIENTATION",
		"Total: 18 variables available",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if run.runs != 0 {
		t.Errorf("list-vars must not trigger an upload, got %d runs", run.runs)
	}
}

func TestRootDispatchesFlagsToRunner(t *testing.T) {
	run := &fakeRunner{}
	root := newTestRoot(t, run)

	if _, err := execute(t, root, "--image", "pics/a.jpg", "--caption", "hello"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if run.runs != 1 {
		t.Fatalf("expected one run, got %d", run.runs)
	}
	if run.opts.ImagePath != "pics/a.jpg" || run.opts.Caption != "hello" || !run.opts.HasCaption {
		t.Fatalf("options = %+v", run.opts)
	}
}

func TestRootWithoutCaptionFlagLeavesOverrideUnset(t *testing.T) {
	run := &fakeRunner{}
	root := newTestRoot(t, run)

	if _, err := execute(t, root); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if run.opts.HasCaption {
		t.Fatal("HasCaption should be false when --caption is absent")
	}
}

func TestEmptyCaptionFlagCountsAsOverride(t *testing.T) {
	run := &fakeRunner{}
	root := newTestRoot(t, run)

	if _, err := execute(t, root, "--caption", ""); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !run.opts.HasCaption || run.opts.Caption != "" {
		t.Fatalf("options = %+v, want empty override", run.opts)
	}
}

func TestRootPropagatesRunnerError(t *testing.T) {
	run := &fakeRunner{err: uploader.ErrNoImages}
	root := newTestRoot(t, run)

	_, err := execute(t, root)
	if !errors.Is(err, uploader.ErrNoImages) {
		t.Fatalf("err = %v, want ErrNoImages", err)
	}
}

func TestRootFailsFastOnMissingCredentials(t *testing.T) {
	run := &fakeRunner{}
	root := newTestRoot(t, run)
	root.credentials = func() (config.Credentials, error) {
		return config.Credentials{}, config.ErrMissingCredentials
	}

	_, err := execute(t, root)
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
	if run.runs != 0 {
		t.Fatalf("no run may happen without credentials, got %d", run.runs)
	}
}

func TestHistoryReportsRecordedUploads(t *testing.T) {
	run := &fakeRunner{}
	root := newTestRoot(t, run)

	store, err := root.openStore()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.RecordQueued(storage.UploadRecord{ID: "up-1", FilePath: "images/a.jpg", Status: "queued"}); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordResult("up-1", "completed", "media-1", ""); err != nil {
		t.Fatal(err)
	}
	store.Close()

	out, err := execute(t, root, "history")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "images/a.jpg") || !strings.Contains(out, "completed") || !strings.Contains(out, "media=media-1") {
		t.Fatalf("history output = %q", out)
	}
}

func TestHistoryEmpty(t *testing.T) {
	root := newTestRoot(t, &fakeRunner{})

	out, err := execute(t, root, "history")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "No uploads recorded yet.") {
		t.Fatalf("history output = %q", out)
	}
}
