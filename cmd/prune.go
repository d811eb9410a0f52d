package cmd

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/keepsake/internal/database"
	"github.com/jon4hz/keepsake/internal/gallery"
	"github.com/jon4hz/keepsake/internal/session"
	"github.com/spf13/cobra"
)

var pruneCmdFlags struct {
	Thumbnails bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired sessions",
	Long:  `Delete expired sessions from the database. Sessions kept in memory or redis expire on their own.`,
	Run:   prune,
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneCmdFlags.Thumbnails, "thumbnails", false, "Also delete cached thumbnails older than 30 days")

	rootCmd.AddCommand(pruneCmd)
}

func prune(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	n, err := session.NewDatabaseStore(db).Prune(cmd.Context(), time.Now())
	if err != nil {
		log.Fatalf("failed to prune sessions: %v", err)
	}
	log.Info("Pruned expired sessions", "count", n)

	if pruneCmdFlags.Thumbnails {
		removed, err := gallery.New(cfg.Gallery).CleanupThumbnails(thumbnailMaxAge)
		if err != nil {
			log.Fatalf("failed to clean up thumbnails: %v", err)
		}
		log.Info("Deleted cached thumbnails", "count", removed)
	}
}
