// models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment states.
const (
	EnrollmentInProgress = "IN_PROGRESS"
	EnrollmentCompleted  = "COMPLETED"
)

type Course struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	PassingScore float64            `bson:"passingScore" json:"passingScore"`
	Questions    []QuizQuestion     `bson:"questions,omitempty" json:"questions,omitempty"`
	CreatedBy    primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type QuizQuestion struct {
	ID      string       `bson:"id" json:"id"`
	Prompt  string       `bson:"prompt" json:"prompt"`
	Options []QuizOption `bson:"options" json:"options"`
}

type QuizOption struct {
	ID        string `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	IsCorrect bool   `bson:"isCorrect" json:"-"`
}

type Enrollment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	CourseID    primitive.ObjectID `bson:"courseId" json:"courseId"`
	Status      string             `bson:"status" json:"status"`
	Score       *float64           `bson:"score,omitempty" json:"score,omitempty"`
	StartedAt   *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

type QuizAttempt struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID    primitive.ObjectID `bson:"courseId" json:"courseId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Answers     map[string]string  `bson:"answers" json:"answers"` // questionID → optionID
	Score       float64            `bson:"score" json:"score"`
	Passed      bool               `bson:"passed" json:"passed"`
	SubmittedAt time.Time          `bson:"submittedAt" json:"submittedAt"`
}

// LeaderboardEntry is one row of the quiz leaderboard aggregation.
type LeaderboardEntry struct {
	UserID    primitive.ObjectID `bson:"_id" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	BestScore float64            `bson:"bestScore" json:"bestScore"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	Passed    int                `bson:"passed" json:"passed"`
}
