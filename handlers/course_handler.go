// handlers/course_handler.go
package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/utils"
)

// ListCourses returns all courses. Questions are included but the correct
// flags never serialize, so handing this to the mobile app is safe.
func ListCourses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := courseCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Printf("courses Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err = cursor.All(ctx, &courses); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode courses")
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	utils.RespondWithJSON(w, http.StatusOK, courses)
}

type createCourseRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	PassingScore float64               `json:"passingScore"`
	Questions    []createQuestionInput `json:"questions"`
}

type createQuestionInput struct {
	Prompt  string `json:"prompt"`
	Options []struct {
		Text      string `json:"text"`
		IsCorrect bool   `json:"isCorrect"`
	} `json:"options"`
}

// CreateCourse stores a course with its quiz. Each question needs exactly
// one correct option.
func CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.PassingScore < 0 || req.PassingScore > 100 {
		utils.RespondWithError(w, http.StatusBadRequest, "passingScore must be 0-100")
		return
	}

	questions := make([]models.QuizQuestion, 0, len(req.Questions))
	for qi, q := range req.Questions {
		if q.Prompt == "" || len(q.Options) < 2 {
			utils.RespondWithError(w, http.StatusBadRequest, "each question needs a prompt and at least two options")
			return
		}
		correct := 0
		question := models.QuizQuestion{
			ID:      fmt.Sprintf("q%d", qi+1),
			Prompt:  q.Prompt,
			Options: make([]models.QuizOption, 0, len(q.Options)),
		}
		for oi, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
			question.Options = append(question.Options, models.QuizOption{
				ID:        fmt.Sprintf("q%d_o%d", qi+1, oi+1),
				Text:      o.Text,
				IsCorrect: o.IsCorrect,
			})
		}
		if correct != 1 {
			utils.RespondWithError(w, http.StatusBadRequest, "each question needs exactly one correct option")
			return
		}
		questions = append(questions, question)
	}

	now := time.Now()
	course := models.Course{
		Title:        req.Title,
		Description:  req.Description,
		PassingScore: req.PassingScore,
		Questions:    questions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if idStr, ok := r.Context().Value("userID").(string); ok {
		if id, err := primitive.ObjectIDFromHex(idStr); err == nil {
			course.CreatedBy = id
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := courseCollection.InsertOne(ctx, course)
	if err != nil {
		log.Printf("course insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create course")
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		course.ID = id
	}

	RecordAudit(ctx, auditFromRequest(r, "CREATE_COURSE", "Course", course.ID.Hex(), bson.M{"title": course.Title}))
	utils.RespondWithJSON(w, http.StatusCreated, course)
}

// EnrollInCourse starts the caller on a course. Enrolling twice is an error.
func EnrollInCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	userIDStr, _ := r.Context().Value("userID").(string)
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := courseCollection.FindOne(ctx, bson.M{"_id": courseID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Course not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	count, err := enrollmentCollection.CountDocuments(ctx, bson.M{"userId": userID, "courseId": courseID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Already enrolled in this course")
		return
	}

	now := time.Now()
	enrollment := models.Enrollment{
		UserID:    userID,
		CourseID:  courseID,
		Status:    models.EnrollmentInProgress,
		StartedAt: &now,
	}
	res, err := enrollmentCollection.InsertOne(ctx, enrollment)
	if err != nil {
		log.Printf("enrollment insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to enroll")
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		enrollment.ID = id
	}

	utils.RespondWithJSON(w, http.StatusCreated, enrollment)
}

type submitQuizRequest struct {
	Answers map[string]string `json:"answers"` // questionID → optionID
}

type submitQuizResponse struct {
	Score   float64 `json:"score"`
	Passed  bool    `json:"passed"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
}

// SubmitQuiz grades the caller's answers against the course's questions,
// records the attempt, and marks the enrollment completed on a pass.
func SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	courseID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	userIDStr, _ := r.Context().Value("userID").(string)
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	var req submitQuizRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var course models.Course
	if err := courseCollection.FindOne(ctx, bson.M{"_id": courseID}).Decode(&course); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Course not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if len(course.Questions) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "course has no quiz")
		return
	}

	correct := 0
	for _, q := range course.Questions {
		chosen := req.Answers[q.ID]
		for _, o := range q.Options {
			if o.ID == chosen && o.IsCorrect {
				correct++
				break
			}
		}
	}
	total := len(course.Questions)
	score := float64(correct) / float64(total) * 100
	passed := score >= course.PassingScore

	attempt := models.QuizAttempt{
		CourseID:    courseID,
		UserID:      userID,
		Answers:     req.Answers,
		Score:       score,
		Passed:      passed,
		SubmittedAt: time.Now(),
	}
	if _, err := attemptCollection.InsertOne(ctx, attempt); err != nil {
		log.Printf("quiz attempt insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to record attempt")
		return
	}

	if passed {
		now := time.Now()
		_, err := enrollmentCollection.UpdateOne(ctx,
			bson.M{"userId": userID, "courseId": courseID},
			bson.M{"$set": bson.M{
				"status":      models.EnrollmentCompleted,
				"score":       score,
				"completedAt": now,
			}},
		)
		if err != nil {
			log.Printf("enrollment completion update failed: %v", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, submitQuizResponse{
		Score:   score,
		Passed:  passed,
		Correct: correct,
		Total:   total,
	})
}

// GetLeaderboard aggregates quiz attempts into a best-score ranking,
// optionally scoped to one course via ?courseId=.
func GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	match := bson.M{}
	if s := r.URL.Query().Get("courseId"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid courseId")
			return
		}
		match["courseId"] = id
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$userId",
			"bestScore": bson.M{"$max": "$score"},
			"attempts":  bson.M{"$sum": 1},
			"passed":    bson.M{"$sum": bson.M{"$cond": bson.A{"$passed", 1, 0}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "bestScore", Value: -1}, {Key: "passed", Value: -1}}}},
		{{Key: "$limit", Value: 25}},
	}

	cursor, err := attemptCollection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("leaderboard aggregation error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var entries []models.LeaderboardEntry
	if err = cursor.All(ctx, &entries); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode leaderboard")
		return
	}

	// Resolve display names outside the pipeline; users live in a different
	// collection and the list is capped at 25.
	for i := range entries {
		var u models.User
		if err := userCollection.FindOne(ctx, bson.M{"_id": entries[i].UserID}).Decode(&u); err == nil {
			entries[i].UserName = u.Name
		}
	}

	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	utils.RespondWithJSON(w, http.StatusOK, entries)
}
