package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY,
            alias TEXT NOT NULL DEFAULT '',
            birthday DATE NOT NULL,
            verification_status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS match_queue (
            user_id UUID PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_match_queue_created_at ON match_queue (created_at);`,
		`CREATE TABLE IF NOT EXISTS stranger_rooms (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_a UUID NOT NULL,
            user_b UUID NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            CHECK (user_a <> user_b)
        );`,
		`CREATE TABLE IF NOT EXISTS stranger_messages (
            id SERIAL PRIMARY KEY,
            room_id UUID NOT NULL REFERENCES stranger_rooms(id) ON DELETE CASCADE,
            sender_id UUID NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_stranger_messages_room ON stranger_messages (room_id, created_at);`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
