package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/meridian-admin/meridian/cmd/meridian/cli"
	"github.com/meridian-admin/meridian/internal/app"
	"github.com/meridian-admin/meridian/internal/console"
	"github.com/meridian-admin/meridian/internal/gateway/pg"
	"github.com/meridian-admin/meridian/internal/invalidate"
	"github.com/meridian-admin/meridian/internal/platform/cache"
	"github.com/meridian-admin/meridian/internal/platform/db"
	"github.com/meridian-admin/meridian/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	opts := []console.Option{}
	if cfg.AuditToDB {
		opts = append(opts, console.WithAudit(pg.NewAudit(pool)))
	} else {
		opts = append(opts, console.WithAudit(shared.SlogAudit{Logger: logger}))
	}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, invalidation notices disabled", slog.Any("error", err))
		} else {
			defer redisClient.Close()
			opts = append(opts, console.WithInvalidations(invalidate.NewBroadcaster(redisClient, logger)))
		}
	}

	gateways := console.Gateways{
		Users:         pg.NewUsers(pool),
		Groups:        pg.NewGroups(pool),
		Roles:         pg.NewRoles(pool),
		Resources:     pg.NewResources(pool),
		Permissions:   pg.NewPermissions(pool),
		UserGroups:    pg.NewUserGroups(pool),
		GroupRoles:    pg.NewGroupRoles(pool),
		RoleResources: pg.NewRoleResources(pool),
	}
	access, err := cli.LoadAccessMap(cfg.AccessMapPath)
	if err != nil {
		logger.Error("load access map", slog.Any("error", err))
		os.Exit(1)
	}
	service := console.NewService(logger, gateways, access, opts...)

	if err := cli.Run(ctx, service, os.Args[1:]); err != nil {
		logger.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
