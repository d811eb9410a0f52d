package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/keepsake/internal/api"
	"github.com/jon4hz/keepsake/internal/auth"
	"github.com/jon4hz/keepsake/internal/config"
	"github.com/jon4hz/keepsake/internal/credential"
	"github.com/jon4hz/keepsake/internal/database"
	"github.com/jon4hz/keepsake/internal/gallery"
	"github.com/jon4hz/keepsake/internal/notify/email"
	"github.com/jon4hz/keepsake/internal/scheduler"
	"github.com/jon4hz/keepsake/internal/session"
	"github.com/spf13/cobra"
)

const (
	thumbnailCleanupInterval = 24 * time.Hour
	thumbnailMaxAge          = 30 * 24 * time.Hour
	lowCacheSpace            = 500 * humanize.MiByte
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the keepsake server",
	Long:  `Start the keepsake server. The bootstrap user is created on first start.`,
	Example: `keepsake serve --config config.yml
keepsake serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	if log.GetLevel() != log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	creds := credential.New(db, cfg.Auth)
	if _, err := creds.EnsureBootstrapUser(ctx); err != nil {
		log.Fatalf("failed to create bootstrap user: %v", err)
	}

	store, err := session.NewStore(cfg.Session, db)
	if err != nil {
		log.Fatalf("failed to create session store: %v", err)
	}

	var opts []auth.Option
	if cfg.Email != nil && cfg.Email.Enabled {
		opts = append(opts, auth.WithNotifier(email.New(cfg.Email, cfg.ServerURL)))
	}
	authn := auth.New(creds, store, session.PolicyFromConfig(cfg.Session), opts...)
	g := gallery.New(cfg.Gallery)
	if usage, err := g.CacheDiskUsage(ctx); err != nil {
		log.Warn("failed to get thumbnail cache disk usage", "error", err)
	} else if usage.Free < lowCacheSpace {
		log.Warn("thumbnail cache is running low on disk space", "path", cfg.Gallery.ThumbnailCache, "free", humanize.IBytes(usage.Free))
	}

	sched, err := newScheduler(cfg, authn, g)
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", "error", err)
		}
	}()

	server, err := api.New(cfg, authn, g)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	log.Info("keepsake started successfully", "session_store", cfg.Session.Store)
	if err := server.Run(ctx); err != nil {
		log.Error("API server error", "error", err)
		return
	}
	log.Info("shut down gracefully")
}

func newScheduler(cfg *config.Config, authn *auth.Authenticator, g *gallery.Gallery) (*scheduler.Scheduler, error) {
	sched, err := scheduler.New()
	if err != nil {
		return nil, err
	}

	// cache stores expire their own entries
	if cfg.Session.Store == config.SessionStoreDatabase {
		err := sched.AddSingletonJob("prune-sessions", "Prune expired sessions", cfg.Session.PruneInterval, func(ctx context.Context) error {
			n, err := authn.Prune(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info("Pruned expired sessions", "count", n)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = sched.AddSingletonJob("cleanup-thumbnails", "Clean up cached thumbnails", thumbnailCleanupInterval, func(context.Context) error {
		n, err := g.CleanupThumbnails(thumbnailMaxAge)
		if err != nil {
			return err
		}
		log.Debug("Cleaned up cached thumbnails", "count", n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}
