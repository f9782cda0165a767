package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/nameit/clients/content_client"
	"github.com/mcdev12/nameit/internal/appconfig"
	"github.com/mcdev12/nameit/internal/game/engine"
	"github.com/mcdev12/nameit/internal/game/rules"
	"github.com/mcdev12/nameit/internal/game/session"
	"github.com/mcdev12/nameit/internal/models"
	"github.com/mcdev12/nameit/internal/transport/natsfeed"
	"github.com/mcdev12/nameit/internal/transport/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	configPath := flag.String("config", "", "path to YAML config file")
	topicID := flag.Int("topic", 1, "topic to play")
	mode := flag.String("mode", string(models.ModeClassic), "game mode: CLASSIC, HIDE_SEEK, TRAP")
	sessionIDStr := flag.String("session", "", "session UUID to join")
	playerIDStr := flag.String("player", "", "local player UUID")
	flag.Parse()

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.LogLevel)

	sessionID := parseOrNewUUID(*sessionIDStr)
	playerID := parseOrNewUUID(*playerIDStr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Content fetch is a precondition for the whole session: no board, no
	// game. Failures here exit instead of retrying.
	content := content_client.NewContentClient(cfg.ContentBaseURL)
	if cfg.ContentAPIKey != "" {
		content.SetHeader("X-Api-Key", cfg.ContentAPIKey)
	}
	topic, err := content.GetTopic(ctx, *topicID)
	if err != nil {
		log.Fatal().Err(err).Int("topic_id", *topicID).Msg("failed to fetch topic")
	}
	items, err := content.GetTopicItems(ctx, *topicID)
	if err != nil {
		log.Fatal().Err(err).Int("topic_id", *topicID).Msg("failed to fetch items")
	}
	log.Info().
		Str("topic", topic.Name).
		Int("items", len(items)).
		Msg("loaded topic content")

	variant := rules.VariantFor(models.Mode(*mode))
	state := session.NewState(sessionID, playerID, variant, cfg.TurnDurationSec, items)

	gateway, err := dialGateway(ctx, cfg, sessionID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect gateway")
	}

	eng := engine.NewEngine(state, gateway, clockwork.NewRealClock())
	go drainNotices(eng)

	if err := eng.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("session engine failed")
	}
}

// dialGateway picks the configured event feed. Both feeds satisfy the same
// engine-facing interface.
func dialGateway(ctx context.Context, cfg appconfig.Config, sessionID uuid.UUID) (engine.Gateway, error) {
	if cfg.Transport == "nats" {
		feedCfg := natsfeed.DefaultConfig(sessionID)
		feedCfg.URL = cfg.NatsURL
		feed, err := natsfeed.Connect(ctx, sessionID, feedCfg)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := feed.Start(ctx); err != nil {
				log.Error().Err(err).Msg("session feed failed")
			}
		}()
		return feed, nil
	}

	return ws.Dial(ctx, ws.DefaultConfig(cfg.GatewayURL))
}

// drainNotices logs engine notices; a real UI would render them instead.
func drainNotices(eng *engine.Engine) {
	for notice := range eng.Notices() {
		log.Info().
			Str("kind", string(notice.Kind)).
			Str("message", notice.Message).
			Msg("notice")
	}
}

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func parseOrNewUUID(s string) uuid.UUID {
	if s == "" {
		return uuid.New()
	}
	id, err := uuid.Parse(s)
	if err != nil {
		log.Fatal().Err(err).Str("value", s).Msg("invalid UUID flag")
	}
	return id
}
