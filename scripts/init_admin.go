package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"kindbite/internal/config"
	"kindbite/internal/model/auth"
	"kindbite/internal/model/chat"
	"kindbite/internal/pkg/id"
	"kindbite/internal/pkg/logger"
	"kindbite/internal/pkg/mongodb"
	"kindbite/internal/pkg/password"
	authrepo "kindbite/internal/repository/auth"
	chatrepo "kindbite/internal/repository/chat"
)

func main() {
	// 1. 加载配置（与 cmd/root.go 保持一致的搜索路径）
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.kindbite")

	viper.SetEnvPrefix("KINDBITE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
		os.Exit(1)
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	// 2. 连接 MongoDB
	client, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongo")
	}
	defer func() {
		_ = client.Close(context.Background())
	}()

	db := client.Database()
	ctx := context.Background()

	// 3. 初始化管理员账号
	email := os.Getenv("INIT_ADMIN_EMAIL")
	if email == "" {
		email = "admin@kindbite.local"
	}
	passwordPlain := os.Getenv("INIT_ADMIN_PASSWORD")
	if passwordPlain == "" {
		passwordPlain = "admin123"
	}

	userRepo := authrepo.NewUserRepo(db)

	user, err := userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if err := createAdmin(ctx, userRepo, email, passwordPlain); err != nil {
				log.Fatal().Err(err).Msg("create admin user failed")
			}
			log.Info().Str("email", email).Msg("admin user created")
		} else {
			log.Fatal().Err(err).Msg("failed to query user")
		}
	} else {
		// 已存在，确保角色和激活状态正确
		log.Info().Str("email", email).Msg("admin user exists, will update role/status")
		update := bson.M{
			"$set": bson.M{
				"role":      auth.RoleAdmin,
				"is_active": true,
			},
		}
		if err := userRepo.Update(ctx, user.ID, update); err != nil {
			log.Fatal().Err(err).Msg("update admin user failed")
		}
	}

	// 4. 写入知识库种子条目（已有同名条目时跳过）
	knowledgeRepo := chatrepo.NewKnowledgeRepo(db)
	seeded, err := seedKnowledge(ctx, db, knowledgeRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("seed knowledge base failed")
	}

	fmt.Printf("Admin initialized: email=%s role=admin\n", email)
	fmt.Printf("Knowledge base: %d new entries seeded\n", seeded)
}

func createAdmin(ctx context.Context, repo *authrepo.UserRepo, email, pwd string) error {
	hashed, err := password.Hash(pwd)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &auth.User{
		ID:        id.New(),
		Email:     email,
		Password:  hashed,
		FirstName: "KindBite",
		LastName:  "Admin",
		Role:      auth.RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return repo.Create(ctx, user)
}

// seedEntries 知识库初始素材，AI规则回退路径的检索内容
var seedEntries = []chat.KnowledgeEntry{
	{
		Title:    "Listing surplus food",
		Category: chat.CategoryPlatform,
		Content:  "Providers can list surplus food with quantity, pickup window, and a discounted price. Listings stay visible until the available quantity runs out or the pickup window closes.",
		Keywords: []string{"listing", "surplus", "provider", "publish"},
		Priority: 10,
	},
	{
		Title:    "Reserving food",
		Category: chat.CategoryPlatform,
		Content:  "Seekers reserve a quantity from an available listing. Each reservation earns KindCoins and must be picked up within the listing's pickup window.",
		Keywords: []string{"reserve", "reservation", "booking", "quantity"},
		Priority: 10,
	},
	{
		Title:    "Checking food freshness",
		Category: chat.CategoryFoodSafety,
		Content:  "Trust your senses. Discard food with off smells, unusual colors, or slimy texture. Best-before dates indicate quality, not safety, so many foods remain fine to eat shortly after.",
		Keywords: []string{"freshness", "smell", "date", "spoiled"},
		Priority: 8,
	},
	{
		Title:    "Keeping food fresh longer",
		Category: chat.CategoryFoodSafety,
		Content:  "Refrigerate perishables below 4°C within two hours. Store leftovers in airtight containers and eat them within three to four days.",
		Keywords: []string{"fridge", "container", "leftover", "temperature"},
		Priority: 8,
	},
	{
		Title:    "Why rescuing food matters",
		Category: chat.CategorySustainability,
		Content:  "Roughly a third of all food produced is wasted. Every rescued meal saves the water, energy, and emissions that went into producing it.",
		Keywords: []string{"impact", "emissions", "rescue", "planet"},
		Priority: 6,
	},
}

func seedKnowledge(ctx context.Context, db *mongo.Database, repo *chatrepo.KnowledgeRepo) (int, error) {
	coll := db.Collection((&chat.KnowledgeEntry{}).Collection())

	seeded := 0
	for _, entry := range seedEntries {
		count, err := coll.CountDocuments(ctx, bson.M{"title": entry.Title})
		if err != nil {
			return seeded, err
		}
		if count > 0 {
			continue
		}

		entry.ID = id.New()
		entry.IsActive = true
		if err := repo.Create(ctx, &entry); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
