package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/quizhub/config"
	"github.com/oksasatya/quizhub/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo.teacher@karunya.edu"
	password := "password123"
	name := "Demo Teacher"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var teacherID string
	err = db.QueryRow(`
		INSERT INTO users (email, name, password_hash, role, is_verified)
		VALUES ($1, $2, $3, 'teacher', TRUE)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, name, hash).Scan(&teacherID)
	if err != nil {
		log.Fatalf("failed to seed teacher: %v", err)
	}
	fmt.Printf("seeded teacher: id=%s email=%s password=%s\n", teacherID, email, password)

	var quizID string
	err = db.QueryRow(`
		INSERT INTO quizzes (title, teacher_id)
		VALUES ('General Knowledge Warmup', $1)
		RETURNING id
	`, teacherID).Scan(&quizID)
	if err != nil {
		log.Fatalf("failed to seed quiz: %v", err)
	}

	questions := []struct {
		text, a, b, c, d, ans string
	}{
		{"What is the capital of France?", "Berlin", "Paris", "Rome", "Madrid", "B"},
		{"2 + 2 * 2 equals?", "6", "8", "4", "2", "A"},
		{"Which planet is known as the Red Planet?", "Venus", "Jupiter", "Mars", "Saturn", "C"},
	}
	for i, q := range questions {
		if _, err := db.Exec(`
			INSERT INTO questions (quiz_id, question_text, option_a, option_b, option_c, option_d, correct_answer, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, quizID, q.text, q.a, q.b, q.c, q.d, q.ans, i); err != nil {
			log.Fatalf("failed to seed question %d: %v", i, err)
		}
	}
	fmt.Printf("seeded quiz %s with %d questions\n", quizID, len(questions))
}
