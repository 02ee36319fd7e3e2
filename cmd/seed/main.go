// seed inserts a verified dev user, two tags, and a handful of tagged
// posts into the local database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bendechrai/social-tracker/internal/infrastructure/postgres"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "correct-horse-battery"
)

type tagSpec struct {
	name      string
	color     string
	subreddit string
	terms     []string
}

var tags = []tagSpec{
	{"Go", "#00add8", "golang", []string{"generics", "goroutine", "slog"}},
	{"Self-hosting", "#6366f1", "selfhosted", []string{"backup", "postgres"}},
}

type postSpec struct {
	tag       string
	redditID  string
	subreddit string
	title     string
	body      string
	author    string
}

var posts = []postSpec{
	{"Go", "t3_seed01", "golang", "Understanding goroutine leaks in long-running services", "I keep seeing goroutine counts climb in production...", "gopher42"},
	{"Go", "t3_seed02", "golang", "slog vs zap in 2026", "", "loglady"},
	{"Self-hosting", "t3_seed03", "selfhosted", "My postgres backup strategy after losing a disk", "Lost a drive last week. Here is what saved me: nightly base backups plus WAL archiving...", "rackmounted"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert dev user, pre-verified so login works immediately
	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, email_verified, notify_enabled)
		VALUES ($1, $2, TRUE, TRUE)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		seedEmail, string(hash),
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	tagIDs := make(map[string]string, len(tags))
	for _, spec := range tags {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO tags (user_id, name, color, subreddit, terms)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, name) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			userID, spec.name, spec.color, spec.subreddit, spec.terms,
		).Scan(&id)
		if err != nil {
			log.Fatalf("upsert tag %s: %v", spec.name, err)
		}
		tagIDs[spec.name] = id
	}

	postedAt := time.Now().Add(-time.Hour)

	var inserted, skipped int
	for _, spec := range posts {
		var body *string
		if spec.body != "" {
			body = &spec.body
		}
		ct, err := pool.Exec(ctx, `
			INSERT INTO posts (
				user_id, tag_id, reddit_id, subreddit, title, body,
				author, permalink, status, posted_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'new', $9)
			ON CONFLICT (tag_id, reddit_id) DO NOTHING`,
			userID, tagIDs[spec.tag], spec.redditID, spec.subreddit,
			spec.title, body, spec.author,
			fmt.Sprintf("/r/%s/comments/%s/", spec.subreddit, spec.redditID),
			postedAt,
		)
		if err != nil {
			log.Fatalf("insert post %s: %v", spec.redditID, err)
		}
		if ct.RowsAffected() == 0 {
			skipped++
		} else {
			inserted++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:          %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:       %s\n", userID)
	fmt.Printf("  Tags:          %d\n", len(tags))
	fmt.Printf("  Posts created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println("    # → {\"token\":\"eyJ...\"}")
	fmt.Println()
	fmt.Println("  Step 2 — list tagged posts:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/posts -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3 — run the notifier (ENV=local logs the digest instead of sending):")
	fmt.Println()
	fmt.Println("    go run ./cmd/notifier")
}
