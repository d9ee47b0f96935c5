package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/acquisitions/api/config"
	"github.com/acquisitions/api/database"
	"github.com/acquisitions/api/logger"
	"github.com/acquisitions/api/web"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func initLogging(cfg *config.Config) error {
	switch cfg.LogLevel {
	case config.Debug:
		logger.InitLogger(logging.DEBUG, cfg.LogFolder)
	case config.Info:
		logger.InitLogger(logging.INFO, cfg.LogFolder)
	case config.Notice:
		logger.InitLogger(logging.NOTICE, cfg.LogFolder)
	case config.Warn:
		logger.InitLogger(logging.WARNING, cfg.LogFolder)
	case config.Error:
		logger.InitLogger(logging.ERROR, cfg.LogFolder)
	default:
		return fmt.Errorf("unknown log level: %s", cfg.LogLevel)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	// Missing .env is fine; the environment may be set by the supervisor.
	_ = godotenv.Load()
	return config.Load()
}

func runWebServer() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := initLogging(cfg); err != nil {
		log.Fatal(err)
	}
	defer logger.CloseLogger()

	if err := database.InitDB(cfg.DBPath, cfg.LogLevel == config.Debug); err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close database err:", err)
		}
	}()

	server := web.NewServer(cfg)
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("received SIGHUP, restarting web server")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(cfg)
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func runMigrate() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := database.InitDB(cfg.DBPath, true); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()
	fmt.Println("database migrated:", cfg.DBPath)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "acquisitions",
		Short: "Acquisitions user-management API",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the web server",
			Run: func(cmd *cobra.Command, args []string) {
				runWebServer()
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or migrate the database schema and exit",
			Run: func(cmd *cobra.Command, args []string) {
				runMigrate()
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
