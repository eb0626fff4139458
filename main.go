package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nbazone/nbazone/config"
	"github.com/nbazone/nbazone/database"
	"github.com/nbazone/nbazone/database/store"
	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/web"
	"github.com/nbazone/nbazone/web/cache"
	"github.com/nbazone/nbazone/web/entity"
	"github.com/nbazone/nbazone/web/service"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config: ", err)
	}
	level, err := logger.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		log.Fatal("unknown log level: ", cfg.LogLevel)
	}
	logger.InitLogger(level, cfg.LogFolder)
	return cfg
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	cfg := loadConfig()
	defer logger.CloseLogger()

	generated, err := cfg.EnsureJWTSecret()
	if err != nil {
		log.Fatal(err)
	}
	if generated {
		logger.Warning("no JWT secret configured, using a random one; sessions end on restart")
	}

	if err := database.InitDB(&cfg.Database, cfg.Debug); err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close database:", err)
		}
	}()

	if err := cache.InitRedis(cfg.Cache); err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warning("close redis:", err)
		}
	}()

	server := web.NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Error("start server:", err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
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
				logger.Error("restart server:", err)
				return
			}
		default:
			logger.Infof("received %v, shutting down", sig)
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	cfg := loadConfig()
	if err := database.InitDB(&cfg.Database, cfg.Debug); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()
	fmt.Println("Migration done!")
}

func importPlayers(file string) {
	cfg := loadConfig()

	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatal(err)
	}
	var reqs []entity.PlayerRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		log.Fatalf("decode %s: %v", file, err)
	}

	if err := database.InitDB(&cfg.Database, cfg.Debug); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()

	// a running server only sees the invalidation through a shared redis
	if cfg.Cache.RedisAddr != "" {
		if err := cache.InitRedis(cfg.Cache); err != nil {
			log.Fatal(err)
		}
		defer cache.Close()
	}

	players := service.NewPlayerService(store.NewPlayerStore(database.GetDB()), 0)
	result, err := players.ImportPlayers(context.Background(), reqs)
	if result != nil {
		for _, s := range result.Skipped {
			fmt.Println("skipped", s)
		}
		fmt.Printf("imported %d of %d players\n", result.Added, len(reqs))
	}
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:     config.GetName(),
		Short:   "NBA player statistics API",
		Version: config.GetVersion(),
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and seed roles",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Load players from a JSON array of player payloads",
		Run: func(cmd *cobra.Command, args []string) {
			file, _ := cmd.Flags().GetString("file")
			importPlayers(file)
		},
	}
	importCmd.Flags().String("file", "players.json", "JSON file to import")

	rootCmd.AddCommand(runCmd, migrateCmd, importCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
