// handlers/auth_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/utils"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login checks credentials and issues a JWT.
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("login lookup error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		RecordAudit(ctx, models.AuditLog{
			ActorID:   user.ID.Hex(),
			Action:    "FAILED_LOGIN",
			Entity:    "User",
			EntityID:  user.ID.Hex(),
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if user.Status == models.UserStatusBlocked {
		utils.RespondWithError(w, http.StatusForbidden, "account is blocked")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Name, user.Role)
	if err != nil {
		log.Printf("JWT generation failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	RecordAudit(ctx, models.AuditLog{
		ActorID:   user.ID.Hex(),
		Action:    "LOGIN",
		Entity:    "User",
		EntityID:  user.ID.Hex(),
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})

	utils.RespondWithJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Logout exists for the audit trail; tokens are stateless.
func Logout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := r.Context().Value("userID").(string); ok && userID != "" {
		RecordAudit(r.Context(), models.AuditLog{
			ActorID:   userID,
			Action:    "LOGOUT",
			Entity:    "User",
			EntityID:  userID,
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ValidateToken confirms the bearer token is still good.
func ValidateToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	claims, err := utils.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bson.M{
		"valid":  true,
		"userID": claims.UserID,
		"name":   claims.Name,
		"role":   claims.Role,
	})
}

// GetCurrentUser returns the authenticated user's record.
func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userIDStr, ok := r.Context().Value("userID").(string)
	if !ok || userIDStr == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the caller's password.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	userIDStr, _ := r.Context().Value("userID").(string)
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req changePasswordRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.NewPassword) < 8 {
		utils.RespondWithError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	_, err = userCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Printf("password update error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser registers a portal account (admin only).
func CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	switch req.Role {
	case models.RoleAdmin, models.RoleInspector, models.RoleDriver:
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "invalid role")
		return
	}

	password := req.Password
	if password == "" {
		password = utils.GenerateRandomPassword(12)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	now := time.Now()
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := userCollection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "email already registered")
			return
		}
		log.Printf("user insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}

	RecordAudit(ctx, auditFromRequest(r, "CREATE_USER", "User", user.ID.Hex(), bson.M{"role": user.Role, "email": user.Email}))

	utils.RespondWithJSON(w, http.StatusCreated, user)
}

// ListUsers returns portal users (admin/inspector only).
func ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"status": bson.M{"$ne": models.UserStatusArchived}}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["role"] = role
	}

	cursor, err := userCollection.Find(ctx, filter)
	if err != nil {
		log.Printf("users Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode users")
		return
	}

	if users == nil {
		users = []models.User{}
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}
