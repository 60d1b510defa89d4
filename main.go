package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"miabot/internal/activity"
	"miabot/internal/bot"
	"miabot/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	configFile := flag.String("config", "config.toml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load configuration: %s\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	// The token is the one secret and comes from the environment
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal().Msg("DISCORD_TOKEN is not set")
	}

	// Load the activity store
	store := activity.NewStore(cfg.Tracking.StoreFile)
	store.Load()

	// Create and run the bot
	bot := bot.CreateBot(token, cfg, store)
	if err := bot.Run(); err != nil {
		log.Fatal().Msg(fmt.Sprintf("Bot stopped: %s", err))
	}
}

// Log to the console and, if configured, to a rotating file as well
func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if cfg.File == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, rotating)).With().Timestamp().Logger()
}
