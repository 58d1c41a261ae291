package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"PogoMap-App/internal/database"
	"PogoMap-App/internal/domain/cache"
	"PogoMap-App/internal/domain/repository"
	"PogoMap-App/internal/domain/service"
	"PogoMap-App/internal/handler"
	"PogoMap-App/internal/infrastructure/codec"
	pgdatabase "PogoMap-App/internal/infrastructure/database"
	"PogoMap-App/internal/infrastructure/firestore"
	"PogoMap-App/internal/infrastructure/transport"
	repoImpl "PogoMap-App/internal/repository"
	"PogoMap-App/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("設定の読み込み失敗: %v", err)
	}

	ctx := context.Background()

	rpcClient := transport.NewRPCClient(cfg.RPCURL, cfg.AuthToken, cfg.RPCTimeout)
	session := transport.NewSession(rpcClient, cfg.StartPosition)
	worldView := service.NewWorldView(session, codec.NewJSONCodec(), cache.SystemClock)
	worldView.SetCacheEnabled(cfg.CacheEnabled)
	worldView.SetExpiry(cfg.CacheExpiry)
	log.Printf("🗺️ WorldView初期化 (キャッシュ: %v, 有効期限: %v)", cfg.CacheEnabled, cfg.CacheExpiry)

	// 永続化先は任意。未設定の場合はその機能を無効にする
	var spawnPointsRepo repository.SpawnPointsRepository
	var postgresClient *pgdatabase.PostgreSQLClient
	if client, err := pgdatabase.NewPostgreSQLClient(); err != nil {
		log.Printf("⚠️ PostgreSQL未設定のため出現ポイントのアーカイブを無効化: %v", err)
	} else if err := client.EnsureSchema(ctx); err != nil {
		log.Printf("⚠️ spawn_pointsテーブルの準備に失敗: %v", err)
		client.Close()
	} else {
		defer client.Close()
		postgresClient = client
		spawnPointsRepo = repoImpl.NewPostgresSpawnPointsRepository(client)
	}

	var sightingsRepo repository.SightingsRepository
	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		log.Printf("⚠️ Supabase未設定のため目撃記録のアーカイブを無効化")
	} else if supabaseClient, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey); err != nil {
		log.Printf("⚠️ Supabaseクライアント初期化失敗: %v", err)
	} else if err := supabaseClient.HealthCheck(); err != nil {
		log.Printf("⚠️ Supabaseヘルスチェック失敗: %v", err)
	} else {
		sightingsRepo = repoImpl.NewSupabaseSightingsRepository(supabaseClient)
	}

	var fortDetailsRepo repository.FortDetailsRepository
	if cfg.FirestoreProjectID == "" {
		log.Printf("⚠️ Firestore未設定のためフォート詳細のキャッシュを無効化")
	} else if firestoreClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID); err != nil {
		log.Printf("⚠️ Firestoreクライアント初期化失敗: %v", err)
	} else {
		defer firestoreClient.Close()
		fortDetailsRepo = repoImpl.NewFirestoreFortDetailsRepository(firestoreClient.GetClient())
	}

	scanUseCase := usecase.NewMapScanUseCase(worldView, spawnPointsRepo, sightingsRepo, fortDetailsRepo)
	mapHandler := handler.NewMapObjectsHandler(worldView, scanUseCase)
	streamHandler := handler.NewMapStreamHandler(worldView)

	r := gin.Default()
	r.GET("/api/health", func(c *gin.Context) {
		archive := "disabled"
		if postgresClient != nil {
			archive = "ok"
			if err := postgresClient.HealthCheck(); err != nil {
				archive = "unreachable"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "PogoMap-App", "archive": archive})
	})
	mapHandler.RegisterRoutes(r)
	r.GET("/map/stream", streamHandler.Stream)

	log.Printf("🚀 PogoMap-App server starting on :%s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("サーバー起動失敗: %v", err)
	}
}
