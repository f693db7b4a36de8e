// Package compliance computes how far through the document checklist a user
// is: pure set arithmetic over the submitted documents, no storage access.
package compliance

import (
	"math"
	"strings"
)

// SubmittedDocument is the slice of a stored document the calculator needs.
type SubmittedDocument struct {
	Type   string
	Status string // APPROVED, PENDING_REVIEW, REJECTED, EXPIRED
}

// Status is the compliance summary for one user.
type Status struct {
	TotalRequired        int `json:"totalRequired"`
	Submitted            int `json:"submitted"`
	Approved             int `json:"approved"`
	Pending              int `json:"pending"`
	Missing              int `json:"missing"`
	CompliancePercentage int `json:"compliancePercentage"`
}

// MissingDocuments returns the checklist entries not yet covered by an
// approved document. Matching is deliberately loose: case-insensitive
// substring containment in either direction between the document's type and
// the requirement's title. Known to be fuzzy; kept as-is on purpose.
func (r *Rules) MissingDocuments(role string, docs []SubmittedDocument) []RequiredDocument {
	required := r.RequiredForRole(role)

	var approvedTypes []string
	for _, d := range docs {
		if d.Status == "APPROVED" {
			approvedTypes = append(approvedTypes, strings.ToLower(d.Type))
		}
	}

	var missing []RequiredDocument
	for _, req := range required {
		title := strings.ToLower(req.Title)
		covered := false
		for _, t := range approvedTypes {
			if strings.Contains(t, title) || strings.Contains(title, t) {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, req)
		}
	}
	return missing
}

// ComplianceStatus computes the summary. Percentage is
// round(approved / totalRequired * 100); an empty checklist counts as fully
// compliant.
func (r *Rules) ComplianceStatus(role string, docs []SubmittedDocument) Status {
	required := r.RequiredForRole(role)

	totalRequired := 0
	for _, req := range required {
		if req.Required {
			totalRequired++
		}
	}

	var submitted, approved, pending int
	for _, d := range docs {
		switch d.Status {
		case "APPROVED":
			approved++
			submitted++
		case "PENDING_REVIEW":
			pending++
			submitted++
		}
	}

	missing := 0
	for _, m := range r.MissingDocuments(role, docs) {
		if m.Required {
			missing++
		}
	}

	pct := 100
	if totalRequired > 0 {
		pct = int(math.Round(float64(approved) / float64(totalRequired) * 100))
	}

	return Status{
		TotalRequired:        totalRequired,
		Submitted:            submitted,
		Approved:             approved,
		Pending:              pending,
		Missing:              missing,
		CompliancePercentage: pct,
	}
}
