// handlers/dashboard_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndersonTREL/TREL-MDM/compliance"
	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/utils"
)

type dashboardStats struct {
	Devices struct {
		Total    int64            `json:"total"`
		ByStatus map[string]int64 `json:"byStatus"`
	} `json:"devices"`
	People           int64                      `json:"people"`
	PendingDocuments int64                      `json:"pendingDocuments"`
	RecentTransfers  []models.HistoryWithPeople `json:"recentTransfers"`
}

// GetDashboardStats is the landing-page summary: device counts by status,
// headcount, pending review queue and the latest transfers.
func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var stats dashboardStats
	stats.Devices.ByStatus = map[string]int64{}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := deviceCollection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("dashboard device aggregation error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	var grouped []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &grouped); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	for _, g := range grouped {
		stats.Devices.ByStatus[g.Status] = g.Count
		stats.Devices.Total += g.Count
	}

	if stats.People, err = personCollection.CountDocuments(ctx, bson.M{}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	stats.PendingDocuments, err = documentCollection.CountDocuments(ctx, bson.M{"status": models.DocStatusPending})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	stats.RecentTransfers = []models.HistoryWithPeople{}
	histOpts := options.Find().SetSort(bson.D{{Key: "transferredAt", Value: -1}}).SetLimit(10)
	if cursor, err := historyCollection.Find(ctx, bson.M{}, histOpts); err == nil {
		var history []models.AssignmentHistory
		if err := cursor.All(ctx, &history); err == nil {
			for _, h := range history {
				item := models.HistoryWithPeople{AssignmentHistory: h}
				if h.FromPersonID != nil {
					item.FromPerson = personByID(ctx, *h.FromPersonID)
				}
				if h.ToPersonID != nil {
					item.ToPerson = personByID(ctx, *h.ToPersonID)
				}
				stats.RecentTransfers = append(stats.RecentTransfers, item)
			}
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, stats)
}

type complianceOverviewRow struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Percentage int    `json:"compliancePercentage"`
	Missing    int    `json:"missing"`
}

// GetComplianceOverview runs the compliance calculator for every active
// driver and inspector, worst first.
func GetComplianceOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	cursor, err := userCollection.Find(ctx, bson.M{
		"role":   bson.M{"$in": []string{models.RoleDriver, models.RoleInspector}},
		"status": bson.M{"$ne": models.UserStatusArchived},
	})
	if err != nil {
		log.Printf("compliance overview users query error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	rows := make([]complianceOverviewRow, 0, len(users))
	for _, u := range users {
		docs, err := documentsForUser(ctx, u.ID)
		if err != nil {
			log.Printf("compliance overview docs query error for %s: %v", u.ID.Hex(), err)
			continue
		}
		status := complianceRules.ComplianceStatus(u.Role, docs)
		rows = append(rows, complianceOverviewRow{
			UserID:     u.ID.Hex(),
			Name:       u.Name,
			Role:       u.Role,
			Percentage: status.CompliancePercentage,
			Missing:    status.Missing,
		})
	}

	// Worst compliance first.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Percentage < rows[j].Percentage })

	utils.RespondWithJSON(w, http.StatusOK, rows)
}

func documentsForUser(ctx context.Context, userID primitive.ObjectID) ([]compliance.SubmittedDocument, error) {
	cursor, err := documentCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]compliance.SubmittedDocument, 0, len(docs))
	for _, d := range docs {
		docType := d.Type
		if d.Title != "" {
			docType = d.Title
		}
		out = append(out, compliance.SubmittedDocument{Type: docType, Status: d.Status})
	}
	return out, nil
}
