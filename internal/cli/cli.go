package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"photopost/internal/config"
	"photopost/internal/fsutil"
	"photopost/internal/poster"
	"photopost/internal/server"
	"photopost/internal/storage"
	"photopost/internal/uploader"
	"photopost/internal/watch"
)

// runner performs one upload attempt.
type runner interface {
	Run(ctx context.Context, opts uploader.Options) (uploader.Result, error)
}

// Root holds wiring for all commands. The function fields exist so tests can
// inject fakes without touching credentials, the network or the real store.
type Root struct {
	cfg *config.Config
	log *slog.Logger

	credentials func() (config.Credentials, error)
	openStore   func() (*storage.Store, error)
	newClient   func() poster.Client
	newRunner   func(creds config.Credentials, client poster.Client, store *storage.Store) runner
	requestCode func() (string, error)
	serveFn     func(ctx context.Context, addr string, store *storage.Store, events server.Subscriber, log *slog.Logger) error
}

// NewRoot builds the default production wiring.
func NewRoot(cfg *config.Config, log *slog.Logger) *Root {
	r := &Root{
		cfg:         cfg,
		log:         log,
		credentials: config.CredentialsFromEnv,
		requestCode: promptVerificationCode,
		serveFn:     defaultServe,
	}
	r.openStore = func() (*storage.Store, error) {
		return storage.New(cfg.Paths.DatabasePath)
	}
	r.newClient = func() poster.Client {
		return poster.NewHTTPClient(cfg.Upload.Endpoint, cfg.Upload.UserAgent, cfg.Paths.SessionFile, log)
	}
	r.newRunner = func(creds config.Credentials, client poster.Client, store *storage.Store) runner {
		u := uploader.New(cfg, creds, client, store, log)
		u.RequestCode = r.requestCode
		return u
	}
	return r
}

// NewRootCmd creates the root Cobra command.
func NewRootCmd(root *Root) *cobra.Command {
	var (
		imagePath string
		captText  string
		listVars  bool
	)

	rootCmd := &cobra.Command{
		Use:   "photopost",
		Short: "Photopost uploads photos with EXIF-templated captions",
		Long: `Photopost picks the first pending image from the images directory (or an
explicit --image), resolves {VARIABLE} placeholders in its caption against the
image's EXIF data, posts it to the configured platform instance, and moves the
uploaded file into the archive directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listVars {
				printVariables(cmd.OutOrStdout())
				return nil
			}
			return root.runOnce(cmd.Context(), uploader.Options{
				ImagePath:  imagePath,
				Caption:    captText,
				HasCaption: cmd.Flags().Changed("caption"),
			})
		},
	}

	rootCmd.Flags().StringVar(&imagePath, "image", "", "path to a specific image to upload (optional)")
	rootCmd.Flags().StringVar(&captText, "caption", "", "caption text, overrides any sidecar file (optional)")
	rootCmd.Flags().BoolVar(&listVars, "list-vars", false, "list all available caption variables and exit")

	rootCmd.AddCommand(newWatchCmd(root))
	rootCmd.AddCommand(newHistoryCmd(root))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// runOnce validates credentials, prepares directories, and performs a single
// upload attempt.
func (r *Root) runOnce(ctx context.Context, opts uploader.Options) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	if err := fsutil.EnsureDirs(r.cfg.Paths.PendingDir, r.cfg.Paths.ArchiveDir, filepath.Dir(r.cfg.Paths.SessionFile)); err != nil {
		return fmt.Errorf("cannot prepare directories: %w", err)
	}

	store, err := r.openStore()
	if err != nil {
		return fmt.Errorf("cannot open upload history: %w", err)
	}
	defer store.Close()

	run := r.newRunner(creds, r.newClient(), store)
	_, err = run.Run(ctx, opts)
	return err
}

func newWatchCmd(root *Root) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the pending directory and upload new images as they appear",
		Long: `Run continuously: whenever a new image lands in the pending directory, the
alphabetically-first candidate is uploaded and archived. An optional status
server exposes /healthz, /uploads, /stream and /ws.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := root.credentials()
			if err != nil {
				return err
			}
			if err := fsutil.EnsureDirs(root.cfg.Paths.PendingDir, root.cfg.Paths.ArchiveDir, filepath.Dir(root.cfg.Paths.SessionFile)); err != nil {
				return fmt.Errorf("cannot prepare directories: %w", err)
			}

			store, err := root.openStore()
			if err != nil {
				return fmt.Errorf("cannot open upload history: %w", err)
			}
			defer store.Close()

			run := root.newRunner(creds, root.newClient(), store)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watch.New(root.cfg.Paths.PendingDir, run, root.log)
			if err != nil {
				return fmt.Errorf("cannot create watcher: %w", err)
			}
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("cannot start watcher: %w", err)
			}
			defer w.Stop()

			if addr != "" {
				return root.serveFn(ctx, addr, store, w, root.log)
			}

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "status server address (host:port), disabled if empty")
	return cmd
}

func newHistoryCmd(root *Root) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent upload attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openStore()
			if err != nil {
				return fmt.Errorf("cannot open upload history: %w", err)
			}
			defer store.Close()

			recs, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				cmd.Println("No uploads recorded yet.")
				return nil
			}
			for _, rec := range recs {
				line := fmt.Sprintf("%s  %-9s  %s", rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Status, rec.FilePath)
				if rec.MediaID != "" {
					line += "  media=" + rec.MediaID
				}
				if rec.Error != "" {
					line += "  error=" + rec.Error
				}
				cmd.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries to show")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Photopost v1.0.0")
		},
	}
}

func defaultServe(ctx context.Context, addr string, store *storage.Store, events server.Subscriber, log *slog.Logger) error {
	return server.NewServer(addr, store, events, log).Start(ctx)
}

func promptVerificationCode() (string, error) {
	fmt.Print("Enter verification code: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
