package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgreSQLClient PostgreSQL直接接続クライアント
type PostgreSQLClient struct {
	DB *sql.DB
}

// NewPostgreSQLClient 環境変数から接続文字列を組み立ててクライアントを作成
// DATABASE_URL があればそれを優先し、なければ SUPABASE_URL と SUPABASE_DB_PASSWORD から構築する
func NewPostgreSQLClient() (*PostgreSQLClient, error) {
	connStr, err := connectionStringFromEnv()
	if err != nil {
		return nil, err
	}
	return NewPostgreSQLClientWithDSN(connStr)
}

// NewPostgreSQLClientWithDSN 接続文字列を指定してクライアントを作成
func NewPostgreSQLClientWithDSN(connStr string) (*PostgreSQLClient, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL接続の初期化に失敗: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// 接続テスト
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("PostgreSQLへの接続に失敗: %w", err)
	}

	return &PostgreSQLClient{
		DB: db,
	}, nil
}

func connectionStringFromEnv() (string, error) {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		return databaseURL, nil
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabasePassword := os.Getenv("SUPABASE_DB_PASSWORD")
	if supabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL または SUPABASE_URL環境変数が設定されていません")
	}
	if supabasePassword == "" {
		return "", fmt.Errorf("SUPABASE_DB_PASSWORD環境変数が設定されていません")
	}

	// SupabaseのURLからホスト名を抽出 (https://xxx.supabase.co -> xxx.supabase.co)
	host := strings.TrimPrefix(supabaseURL, "https://")

	// SupabaseのPostgreSQL接続文字列を構築（ポート6543を使用）
	return fmt.Sprintf(
		"host=db.%s port=6543 user=postgres password=%s dbname=postgres sslmode=require",
		host, supabasePassword,
	), nil
}

// EnsureSchema 出現ポイント記録用のテーブルを作成する
func (pc *PostgreSQLClient) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS spawn_points (
	id         TEXT PRIMARY KEY,
	cell_id    BIGINT NOT NULL,
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	decimated  BOOLEAN NOT NULL DEFAULT FALSE,
	first_seen TIMESTAMPTZ NOT NULL,
	last_seen  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS spawn_points_lat_lng_idx ON spawn_points (latitude, longitude);`

	if _, err := pc.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("spawn_pointsテーブルの作成に失敗: %w", err)
	}
	return nil
}

// Close データベース接続を閉じる
func (pc *PostgreSQLClient) Close() error {
	if pc.DB != nil {
		return pc.DB.Close()
	}
	return nil
}

// HealthCheck データベース接続のヘルスチェック
func (pc *PostgreSQLClient) HealthCheck() error {
	if pc.DB == nil {
		return fmt.Errorf("PostgreSQLクライアントが初期化されていません")
	}
	return pc.DB.Ping()
}
