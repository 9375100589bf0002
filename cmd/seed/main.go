package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-movie-catalog/config"
	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
	"github.com/oksasatya/go-movie-catalog/internal/domain/repository"
	mongoinfra "github.com/oksasatya/go-movie-catalog/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/go-movie-catalog/internal/infrastructure/postgres"
	"github.com/oksasatya/go-movie-catalog/pkg/helpers"
)

var samples = []entity.Entry{
	{
		Category:    entity.CategoryMovie,
		Name:        "Dune",
		Image:       "https://images.example.com/dune.jpg",
		Rating:      4.5,
		Review:      "Great visuals and a patient story.",
		Description: "Sci-fi epic on the desert planet Arrakis.",
	},
	{
		Category:    entity.CategorySeries,
		Name:        "The Expanse",
		Image:       "https://images.example.com/expanse.jpg",
		Rating:      5,
		Review:      "Hard science fiction done right.",
		Description: "Detective, captain and politician collide in a colonized solar system.",
	},
	{
		Category:    entity.CategoryGame,
		Name:        "Outer Wilds",
		Image:       "https://images.example.com/outer-wilds.jpg",
		Rating:      4,
		Review:      "Curiosity is the only upgrade you need.",
		Description: "Explore a solar system trapped in a time loop.",
	},
}

func main() {
	ownerID := flag.String("owner", uuid.NewString(), "owner id for seeded entries")
	email := flag.String("email", "demo@example.com", "email claim of the dev token")
	revoke := flag.String("revoke", "", "revoke the token with this jti and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *revoke != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.NewTokenRevocations(rdb).Revoke(ctx, *revoke, cfg.AccessTTL); err != nil {
			log.Fatalf("failed to revoke token: %v", err)
		}
		fmt.Printf("revoked jti=%s for %s\n", *revoke, cfg.AccessTTL)
		return
	}

	repo, closeFn, err := open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer closeFn()

	for i := range samples {
		e := samples[i]
		e.OwnerID = *ownerID
		created, err := repo.Create(ctx, &e)
		if err != nil {
			log.Fatalf("failed to seed %q: %v", e.Name, err)
		}
		fmt.Printf("seeded entry: id=%s name=%s category=%s\n", created.ID, created.Name, created.Category)
	}

	token, exp, err := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL).GenerateAccessToken(*ownerID, *email)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Printf("owner=%s email=%s\ntoken (expires %s):\n%s\n", *ownerID, *email, exp.Format(time.RFC3339), token)
}

func open(ctx context.Context, cfg *config.Config) (repository.EntryRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
		if err != nil {
			return nil, nil, err
		}
		return pginfra.NewEntryRepository(pool), pool.Close, nil
	case config.StorageMongo:
		m, err := mongoinfra.New(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return m, func() { _ = m.Close(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("seeding needs a persistent driver, got %q", cfg.StorageDriver)
	}
}
