package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/auth"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/config"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/database"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/jobs"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/logger"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/mail"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/server"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func fatal(format string, args ...any) {
	logger.Errorf(format, args...)
	os.Exit(1)
}

// setup loads configuration, connects and migrates the database.
func setup() (*config.Config, *gorm.DB) {
	cfg, err := config.Load()
	if err != nil {
		fatal("config: %v", err)
	}
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel))
	for _, w := range cfg.Warnings() {
		logger.Warning(w)
	}

	db, err := database.Open(cfg)
	if err != nil {
		fatal("%v", err)
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		fatal("%v", err)
	}
	return cfg, db
}

func runServer() {
	cfg, db := setup()
	defer database.Close(db)

	scheduler, err := jobs.Start(db, cfg.AuditRetentionDays)
	if err != nil {
		fatal("schedule jobs: %v", err)
	}

	app := server.New(db, cfg, mail.New(cfg.SMTP))
	go func() {
		logger.Infof("listening on :%s", cfg.HTTPPort)
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			fatal("listen: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")

	<-scheduler.Stop().Done()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warningf("shutdown: %v", err)
	}
}

func runMigrate() {
	_, db := setup()
	database.Close(db)
}

func runCreateAdmin(req auth.RegisterRequest) {
	_, db := setup()
	defer database.Close(db)

	user, err := auth.CreateUser(context.Background(), db, req, models.RoleAdmin)
	if err != nil {
		database.Close(db)
		fatal("create admin: %v", err)
	}
	fmt.Printf("admin %s created with id %d\n", user.Email, user.ID)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Venue reservation API",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, background jobs and the HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrate()
		},
	}

	var admin auth.RegisterRequest
	createAdminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Run: func(cmd *cobra.Command, args []string) {
			runCreateAdmin(admin)
		},
	}
	createAdminCmd.Flags().StringVar(&admin.Name, "name", "", "admin display name")
	createAdminCmd.Flags().StringVar(&admin.Email, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&admin.Password, "password", "", "admin password (at least 6 characters)")
	createAdminCmd.Flags().StringVar(&admin.Telephone, "telephone", "", "admin telephone")
	for _, f := range []string{"name", "email", "password", "telephone"} {
		_ = createAdminCmd.MarkFlagRequired(f)
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
