package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/catalog"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("cart service stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//DB接続（postgres保存 or postgres価格参照の時だけ）
	var gormDB *gorm.DB
	if cfg.CartStore == config.StorePostgres || cfg.CatalogSource == config.CatalogPostgres {
		d, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		if cfg.CartStore == config.StorePostgres {
			if err := d.AutoMigrate(&model.Cart{}); err != nil {
				return err
			}
		}
		gormDB = d
	}

	//カートの保存先
	var carts repo.CartRepository
	switch cfg.CartStore {
	case config.StorePostgres:
		carts = infraRepo.NewCartGormRepository(gormDB)
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		carts = infraRepo.NewCartRedisRepository(rdb, 0)
	default:
		log.Warn("using in-memory cart store")
		carts = infraRepo.NewCartMemoryRepository()
	}

	//価格・商品情報の参照先
	var prices repo.PriceLookup
	var details repo.ProductDetailsLookup
	switch cfg.CatalogSource {
	case config.CatalogPostgres:
		p := infraRepo.NewProductGormRepository(gormDB)
		prices, details = p, p
	default:
		c := catalog.NewHTTPClient(cfg.CatalogURL)
		prices, details = c, c
	}

	//Usecase生成
	resolver := usecase.NewPriceResolver(prices, cfg.PriceLookupTimeout, cfg.PriceLookupConcurrency, log)
	detailsResolver := usecase.NewDetailsResolver(details, cfg.PriceLookupTimeout, cfg.PriceLookupConcurrency, log)
	cartUC := usecase.NewCartUsecase(
		carts,
		resolver,
		validator.NewCartValidator(),
		&uuidGenerator{},
		usecase.CartOptions{
			Pricing: usecase.Pricing{
				TaxRate:      cfg.TaxRate,
				DiscountRate: cfg.DiscountRate,
			},
			MaxRetries: cfg.CartMaxRetries,
			Details:    detailsResolver,
		},
		log,
	)

	//Handler生成
	cartH := handler.NewCartHandler(cartUC)
	e := server.New(log, cartH, middleware.AuthJWT(cfg.JWTSecret))

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	return server.Start(ctx, e, addr, log)
}
