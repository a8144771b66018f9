package main

import (
	"context"
	"time"

	"github.com/MarcoPoloResearchLab/giftlist/internal/config"
	"github.com/MarcoPoloResearchLab/giftlist/internal/database"
	"github.com/MarcoPoloResearchLab/giftlist/internal/logging"
	"github.com/MarcoPoloResearchLab/giftlist/internal/ownership"
	"github.com/MarcoPoloResearchLab/giftlist/internal/registry"
	"github.com/MarcoPoloResearchLab/giftlist/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// application builds a runtime per command invocation from the bound configuration.
type application struct {
	viper *viper.Viper
}

// runtime is the explicit context every command works against: one profile store,
// its creator token source and the list store on top of it.
type runtime struct {
	cfg    config.AppConfig
	logger *zap.Logger
	store  *registry.Store
	tokens *ownership.TokenSource
	close  func() error
}

func (a *application) run(cmd *cobra.Command, action func(ctx context.Context, rt *runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := a.open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.close(); closeErr != nil {
			rt.logger.Warn("profile close failed", zap.Error(closeErr))
		}
		_ = rt.logger.Sync()
	}()
	return action(ctx, rt)
}

func (a *application) open() (*runtime, error) {
	appConfig, err := config.Load(a.viper)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return nil, err
	}

	kv, closeKV, err := openProfile(appConfig, logger)
	if err != nil {
		return nil, err
	}

	listIDs, err := registry.ListIDProviderFor(appConfig.IDScheme)
	if err != nil {
		_ = closeKV()
		return nil, err
	}

	store, err := registry.NewStore(registry.Config{
		KV:      kv,
		Clock:   time.Now,
		ListIDs: listIDs,
		GiftIDs: registry.NewGiftIDs(),
		Logger:  logger,
	})
	if err != nil {
		_ = closeKV()
		return nil, err
	}

	tokens, err := ownership.NewTokenSource(ownership.TokenSourceConfig{
		KV:     kv,
		Clock:  time.Now,
		Logger: logger,
	})
	if err != nil {
		_ = closeKV()
		return nil, err
	}

	return &runtime{
		cfg:    appConfig,
		logger: logger,
		store:  store,
		tokens: tokens,
		close:  closeKV,
	}, nil
}

func openProfile(appConfig config.AppConfig, logger *zap.Logger) (storage.KV, func() error, error) {
	if appConfig.MemoryProfile {
		return storage.NewMemory(), func() error { return nil }, nil
	}

	db, err := database.OpenSQLite(appConfig.ProfilePath, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	kv, err := storage.NewSQL(storage.SQLConfig{
		Database: db,
		Clock:    time.Now,
		Logger:   logger,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return kv, sqlDB.Close, nil
}

// capability returns the caller's creator token: the --token override when set,
// otherwise the profile's own token (issued on first use).
func (rt *runtime) capability(ctx context.Context) (ownership.Capability, error) {
	if rt.cfg.CreatorToken != "" {
		return ownership.NewCapability(rt.cfg.CreatorToken)
	}
	return rt.tokens.Capability(ctx)
}

