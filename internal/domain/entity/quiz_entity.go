package entity

import "time"

// Quiz is owned by the teacher who created it.
type Quiz struct {
	ID        string
	Title     string
	TeacherID string
	CreatedAt time.Time
}

// Question carries four options; CorrectAnswer is the letter A-D.
type Question struct {
	ID            string
	QuizID        string
	Text          string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
	Position      int
}

// Score records one quiz attempt by a user.
type Score struct {
	ID        string
	UserID    string
	QuizID    string
	Score     int
	Total     int
	CreatedAt time.Time
}

// LeaderboardEntry aggregates a user's points across all attempts.
type LeaderboardEntry struct {
	UserID     string
	Name       string
	TotalScore int
	Attempts   int
}
