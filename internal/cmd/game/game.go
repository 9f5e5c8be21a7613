// Package game parses game command flags and starts the persistence runtime.
package game

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/duskhaven/duskhaven/internal/platform/cmd"
	"github.com/duskhaven/duskhaven/internal/services/game/account"
	"github.com/duskhaven/duskhaven/internal/services/game/domain/world"
	"github.com/duskhaven/duskhaven/internal/services/game/playerio"
	"github.com/duskhaven/duskhaven/internal/services/game/presence"
	"github.com/duskhaven/duskhaven/internal/services/game/storage/sqlite"
)

// Config holds game command configuration.
type Config struct {
	DBPath        string `env:"DUSKHAVEN_GAME_DB" envDefault:"game.db"`
	WorldID       uint   `env:"DUSKHAVEN_GAME_WORLD_ID" envDefault:"1"`
	WorldName     string `env:"DUSKHAVEN_GAME_WORLD_NAME" envDefault:"Duskhaven"`
	WorldType     string `env:"DUSKHAVEN_GAME_WORLD_TYPE" envDefault:"pvp"`
	WorldMOTD     string `env:"DUSKHAVEN_GAME_WORLD_MOTD"`
	WorldLocation string `env:"DUSKHAVEN_GAME_WORLD_LOCATION"`
	WorldIP       string `env:"DUSKHAVEN_GAME_WORLD_IP" envDefault:"127.0.0.1"`
	WorldPort     uint   `env:"DUSKHAVEN_GAME_WORLD_PORT" envDefault:"7172"`
	AuthMode      string `env:"DUSKHAVEN_GAME_AUTH_MODE" envDefault:"password"`
	SessionKey    string `env:"DUSKHAVEN_GAME_SESSION_KEY"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the game SQLite database")
	fs.UintVar(&cfg.WorldID, "world", cfg.WorldID, "World partition id this process serves")
	fs.StringVar(&cfg.AuthMode, "auth-mode", cfg.AuthMode, "Credential mode: password or session")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Runtime bundles the wired persistence services for one world.
type Runtime struct {
	Store         *sqlite.Store
	Pipeline      *playerio.Pipeline
	Saver         *playerio.SaveTransaction
	Presence      *presence.Tracker
	Authenticator *account.Authenticator
}

// Build wires the runtime from configuration: store, load pipeline, save
// transaction, presence tracker, and authenticator.
func Build(cfg Config) (*Runtime, error) {
	if cfg.WorldID == 0 {
		return nil, fmt.Errorf("world id is required")
	}

	store, err := sqlite.Open(cfg.DBPath, uint32(cfg.WorldID))
	if err != nil {
		return nil, fmt.Errorf("open game store: %w", err)
	}

	tracker, err := presence.NewTracker(store, store.WorldID())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var opts []account.Option
	if cfg.SessionKey != "" {
		opts = append(opts, account.WithSessionKey([]byte(cfg.SessionKey)))
	}
	auth, err := account.NewAuthenticator(store, account.AuthMode(cfg.AuthMode), opts...)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("configure authenticator: %w", err)
	}

	return &Runtime{
		Store:         store,
		Pipeline:      playerio.NewPipeline(store, store.WorldID()),
		Saver:         playerio.NewSaveTransaction(store.DB(), store),
		Presence:      tracker,
		Authenticator: auth,
	}, nil
}

// Run starts the game persistence service and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(ctx context.Context) error {
		runtime, err := Build(cfg)
		if err != nil {
			return err
		}
		defer runtime.Store.Close()

		err = runtime.Store.EnsureDefaultWorld(ctx, world.World{
			ID:        uint32(cfg.WorldID),
			Name:      cfg.WorldName,
			Type:      cfg.WorldType,
			MOTD:      cfg.WorldMOTD,
			Location:  cfg.WorldLocation,
			IP:        cfg.WorldIP,
			Port:      uint16(cfg.WorldPort),
			CreatedAt: time.Now().Unix(),
		})
		if err != nil {
			return fmt.Errorf("ensure default world: %w", err)
		}

		log.Printf("game store ready: world %d (%s), db %s", cfg.WorldID, cfg.WorldName, cfg.DBPath)

		<-ctx.Done()

		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := runtime.Presence.Drain(drainCtx); err != nil {
			log.Printf("presence drain: %v", err)
		}
		return nil
	})
}
