// handlers/person_handler.go
package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/utils"
)

// ListPeople returns everyone, alphabetical, with the device each person
// currently holds.
func ListPeople(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := personCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Printf("people Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var people []models.Person
	if err = cursor.All(ctx, &people); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode people")
		return
	}

	items := make([]models.PersonWithAssignment, 0, len(people))
	for _, p := range people {
		item := models.PersonWithAssignment{Person: p}

		var a models.Assignment
		if err := assignmentCollection.FindOne(ctx, bson.M{"personId": p.ID}).Decode(&a); err == nil {
			withDevice := &models.AssignmentWithDevice{Assignment: a}
			var d models.Device
			if err := deviceCollection.FindOne(ctx, bson.M{"_id": a.DeviceID}).Decode(&d); err == nil {
				withDevice.Device = &d
			}
			item.Assignment = withDevice
		}
		items = append(items, item)
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

type personInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Station string `json:"station"`
}

// CreatePeople bulk-imports people from a JSON array or an uploaded CSV.
// Rows whose email already exists are skipped, not failed.
func CreatePeople(w http.ResponseWriter, r *http.Request) {
	var toCreate []personInput
	var err error

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		toCreate, err = peopleFromCSV(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		if err := utils.ParseJSON(r, &toCreate); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Expected array or file")
			return
		}
	}

	valid := make([]personInput, 0, len(toCreate))
	for _, p := range toCreate {
		if p.Name == "" || p.Email == "" {
			continue
		}
		if p.Role == "" {
			p.Role = "Employee"
		}
		p.Email = strings.ToLower(p.Email)
		valid = append(valid, p)
	}

	if len(valid) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No valid data found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	// Filter out emails that already exist instead of failing the batch.
	emails := make([]string, len(valid))
	for i, p := range valid {
		emails[i] = p.Email
	}

	cursor, err := personCollection.Find(ctx, bson.M{"email": bson.M{"$in": emails}},
		options.Find().SetProjection(bson.M{"email": 1}))
	if err != nil {
		log.Printf("people dedupe query error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	var existing []models.Person
	if err := cursor.All(ctx, &existing); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	existingEmails := make(map[string]bool, len(existing))
	for _, e := range existing {
		existingEmails[e.Email] = true
	}

	now := time.Now()
	var docs []interface{}
	for _, p := range valid {
		if existingEmails[p.Email] {
			continue
		}
		docs = append(docs, models.Person{
			Name:      p.Name,
			Email:     p.Email,
			Role:      p.Role,
			Station:   p.Station,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	created := 0
	if len(docs) > 0 {
		res, err := personCollection.InsertMany(ctx, docs)
		if err != nil {
			log.Printf("people insert error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to create people")
			return
		}
		created = len(res.InsertedIDs)
	}

	RecordAudit(ctx, auditFromRequest(r, "IMPORT_PEOPLE", "Person", "", bson.M{"count": created}))

	utils.RespondWithJSON(w, http.StatusOK, bson.M{
		"success": true,
		"count":   created,
		"skipped": len(valid) - created,
	})
}

// peopleFromCSV reads rows from an uploaded CSV with case-insensitive
// header matching (first name / last name / station, with a few aliases).
func peopleFromCSV(r *http.Request) ([]personInput, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return nil, fmt.Errorf("invalid multipart form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("No file uploaded")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("empty or unreadable CSV")
	}

	findCol := func(aliases ...string) int {
		for i, h := range header {
			name := strings.ToLower(strings.TrimSpace(h))
			for _, a := range aliases {
				if name == a {
					return i
				}
			}
		}
		return -1
	}

	firstCol := findCol("first name", "firstname", "name", "fname")
	lastCol := findCol("last name", "lastname", "surname", "lname")
	stationCol := findCol("station", "location", "hub")

	var out []personInput
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed CSV row")
		}

		get := func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		first, last, station := get(firstCol), get(lastCol), get(stationCol)
		if first == "" || last == "" || station == "" {
			log.Printf("Skipping CSV row due to missing fields: %v", row)
			continue
		}

		out = append(out, personInput{
			Name:    first + " " + last,
			Email:   fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), strings.ToLower(last)),
			Role:    "Employee",
			Station: station,
		})
	}
	return out, nil
}

// DeletePerson removes a person unless they still hold a device.
func DeletePerson(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing ID")
		return
	}

	personID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := assignmentCollection.CountDocuments(ctx, bson.M{"personId": personID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Cannot delete person with active device assignments.")
		return
	}

	res, err := personCollection.DeleteOne(ctx, bson.M{"_id": personID})
	if err != nil {
		log.Printf("person delete error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete person")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "person not found")
		return
	}

	RecordAudit(ctx, auditFromRequest(r, "DELETE_PERSON", "Person", id, nil))
	utils.RespondWithJSON(w, http.StatusOK, bson.M{"success": true})
}
