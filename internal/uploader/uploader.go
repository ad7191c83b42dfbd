// Package uploader drives one upload attempt through its stages: select an
// image, resolve its caption, authenticate, upload, then archive the file.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"photopost/internal/caption"
	"photopost/internal/config"
	"photopost/internal/fsutil"
	"photopost/internal/metadata"
	"photopost/internal/poster"
	"photopost/internal/storage"
)

var (
	// ErrNoImages means the pending directory held no candidates. A benign
	// idle condition, but still a failed run.
	ErrNoImages = errors.New("no images available in pending directory")

	// ErrImageNotFound means an explicitly requested image does not exist.
	ErrImageNotFound = errors.New("specified image not found")
)

// Options carries per-run overrides from the CLI.
type Options struct {
	ImagePath  string // explicit image; empty selects from the pending directory
	Caption    string
	HasCaption bool // distinguishes an empty override from no override
}

// Result captures the outcome of one upload attempt.
type Result struct {
	ID        string
	ImagePath string
	Caption   string
	MediaID   string
	Stage     string
	Error     error
}

// Uploader orchestrates the select-upload-archive lifecycle.
type Uploader struct {
	cfg    *config.Config
	creds  config.Credentials
	client poster.Client
	store  *storage.Store
	log    *slog.Logger

	// RequestCode supplies a one-time verification code when the platform
	// raises a challenge. Nil makes challenges fatal.
	RequestCode func() (string, error)

	// Extract supplies image metadata for caption rendering. Defaults to
	// metadata.Extract; tests substitute a counter.
	Extract caption.ExtractFunc
}

// New builds an Uploader with the default metadata extractor.
func New(cfg *config.Config, creds config.Credentials, client poster.Client, store *storage.Store, log *slog.Logger) *Uploader {
	u := &Uploader{
		cfg:    cfg,
		creds:  creds,
		client: client,
		store:  store,
		log:    log,
	}
	u.Extract = func(path string) metadata.Metadata {
		return metadata.Extract(path, log)
	}
	return u
}

// Run performs a single upload attempt. On any failure the image and its
// sidecar stay in the pending directory.
func (u *Uploader) Run(ctx context.Context, opts Options) (Result, error) {
	res := Result{ID: newID(), Stage: "selecting"}

	imagePath, err := u.selectImage(opts.ImagePath)
	if err != nil {
		u.log.Error("image selection failed", "stage", res.Stage, "path", opts.ImagePath, "error", err)
		res.Error = err
		return res, err
	}
	res.ImagePath = imagePath
	u.log.Info("selected image", "path", imagePath)

	res.Stage = "caption"
	res.Caption = caption.Resolve(imagePath, opts.Caption, opts.HasCaption, u.Extract, u.log)

	_ = u.store.RecordQueued(storage.UploadRecord{
		ID:       res.ID,
		FilePath: imagePath,
		Caption:  res.Caption,
		Status:   "queued",
	})

	res.Stage = "authenticating"
	if err := u.authenticate(ctx); err != nil {
		u.log.Error("authentication failed", "stage", res.Stage, "path", imagePath, "error", err)
		_ = u.store.RecordResult(res.ID, "failed", "", err.Error())
		res.Error = err
		return res, err
	}

	res.Stage = "uploading"
	u.log.Info("uploading image", "path", imagePath, "caption", truncate(res.Caption, 50))
	mediaID, err := u.client.Upload(ctx, imagePath, res.Caption)
	if err != nil {
		err = fmt.Errorf("upload failed: %w", err)
		u.log.Error("upload failed", "stage", res.Stage, "path", imagePath, "error", err)
		_ = u.store.RecordResult(res.ID, "failed", "", err.Error())
		res.Error = err
		return res, err
	}
	res.MediaID = mediaID
	u.log.Info("upload succeeded", "path", imagePath, "media_id", mediaID)

	res.Stage = "archiving"
	if err := u.archive(imagePath); err != nil {
		// The photo is already posted; a failed move leaves local
		// bookkeeping inconsistent and must be surfaced, not swallowed.
		u.log.Error("archiving failed after successful upload", "stage", res.Stage, "path", imagePath, "error", err)
		_ = u.store.RecordResult(res.ID, "failed", mediaID, err.Error())
		res.Error = err
		return res, err
	}

	res.Stage = "done"
	_ = u.store.RecordResult(res.ID, "completed", mediaID, "")
	u.log.Info("upload process completed", "path", imagePath, "media_id", mediaID)
	return res, nil
}

func (u *Uploader) selectImage(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrImageNotFound, explicit)
		}
		return explicit, nil
	}

	candidates, err := fsutil.ListCandidates(u.cfg.Paths.PendingDir)
	if err != nil {
		return "", fmt.Errorf("cannot scan pending directory %s: %w", u.cfg.Paths.PendingDir, err)
	}
	if len(candidates) == 0 {
		return "", ErrNoImages
	}
	return candidates[0], nil
}

func (u *Uploader) authenticate(ctx context.Context) error {
	if err := u.client.LoadSession(); err == nil {
		return nil
	} else if !errors.Is(err, poster.ErrSessionInvalid) {
		u.log.Warn("session reuse failed", "error", err)
	}

	u.log.Info("logging in", "username", u.creds.Username)
	err := u.client.Login(ctx, u.creds.Username, u.creds.Password, "")
	if errors.Is(err, poster.ErrChallengeRequired) {
		if u.RequestCode == nil {
			return err
		}
		u.log.Info("verification code required")
		code, codeErr := u.RequestCode()
		if codeErr != nil {
			return fmt.Errorf("cannot read verification code: %w", codeErr)
		}
		err = u.client.Login(ctx, u.creds.Username, u.creds.Password, code)
	}
	if errors.Is(err, poster.ErrCheckpointRequired) {
		return fmt.Errorf("login blocked: %w; resolve it in a web browser before retrying", err)
	}
	if err != nil {
		return err
	}

	if err := u.client.SaveSession(); err != nil {
		u.log.Warn("cannot persist session artifact", "error", err)
	}
	return nil
}

func (u *Uploader) archive(imagePath string) error {
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		// Some upload paths consume the source file themselves.
		u.log.Warn("image already gone before archiving", "path", imagePath)
		return nil
	}
	if err := fsutil.Move(imagePath, u.cfg.Paths.ArchiveDir); err != nil {
		return fmt.Errorf("cannot move %s to archive: %w", imagePath, err)
	}
	u.log.Info("archived image", "path", imagePath, "dest", u.cfg.Paths.ArchiveDir)

	sidecar := fsutil.SidecarPath(imagePath)
	if _, err := os.Stat(sidecar); err == nil {
		if err := fsutil.Move(sidecar, u.cfg.Paths.ArchiveDir); err != nil {
			return fmt.Errorf("cannot move sidecar %s to archive: %w", sidecar, err)
		}
		u.log.Info("archived sidecar", "path", sidecar)
	}
	return nil
}

func newID() string {
	return fmt.Sprintf("up-%d", time.Now().UnixNano())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
