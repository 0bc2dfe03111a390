package visit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/apierr"
)

// Visit statuses.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true,
}

// IsStatus reports whether s is a known visit status.
func IsStatus(s string) bool { return validStatuses[s] }

// IsOpen reports whether a visit in status s still holds its doctor slot.
func IsOpen(s string) bool { return s == StatusScheduled || s == StatusInProgress }

type PatientInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

type DoctorInfo struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Specialization *string   `json:"specialization,omitempty"`
}

// Visit is an appointment joined with its patient and doctor display fields.
type Visit struct {
	ID          uuid.UUID   `json:"id"`
	Patient     PatientInfo `json:"patient"`
	Doctor      DoctorInfo  `json:"doctor"`
	ScheduledAt time.Time   `json:"date"`
	TimeOfDay   string      `json:"time"`
	Status      string      `json:"status"`
	Notes       string      `json:"notes"`
	Symptoms    string      `json:"symptoms"`
	Diagnosis   string      `json:"diagnosis"`
	TotalAmount float64     `json:"totalAmount"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TimeOfDay renders the HH:MM:SS part of t in UTC.
func TimeOfDay(t time.Time) string {
	return t.UTC().Format("15:04:05")
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate accepts RFC 3339 or a zone-less local date-time, read as UTC.
// Precision is kept to the millisecond.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

type CreateRequest struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
}

// UpdateRequest is the full update: only non-empty fields are applied.
type UpdateRequest struct {
	Status    string `json:"status"`
	Symptoms  string `json:"symptoms"`
	Diagnosis string `json:"diagnosis"`
	Notes     string `json:"notes"`
}

// Patch is a partial update. Nil fields are left untouched; a non-nil empty
// string clears the field.
type Patch struct {
	Status    *string
	Notes     *string
	Symptoms  *string
	Diagnosis *string
}

// ParsePatch builds a Patch from a decoded JSON object. Only the mutable
// fields are accepted.
func ParsePatch(body map[string]json.RawMessage) (Patch, error) {
	var p Patch
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var dst **string
		switch k {
		case "status":
			dst = &p.Status
		case "notes":
			dst = &p.Notes
		case "symptoms":
			dst = &p.Symptoms
		case "diagnosis":
			dst = &p.Diagnosis
		default:
			return Patch{}, apierr.Validation("Field cannot be updated: " + k)
		}
		var v string
		if err := json.Unmarshal(body[k], &v); err != nil {
			return Patch{}, apierr.Validation("Field must be a string: " + k)
		}
		*dst = &v
	}
	return p, nil
}

func (p Patch) Empty() bool {
	return p.Status == nil && p.Notes == nil && p.Symptoms == nil && p.Diagnosis == nil
}

// Apply copies the patch onto v and validates the resulting status.
func (p Patch) Apply(v *Row) error {
	if p.Status != nil {
		if !IsStatus(*p.Status) {
			return apierr.Validation("Invalid status")
		}
		v.Status = *p.Status
	}
	if p.Notes != nil {
		v.Notes = *p.Notes
	}
	if p.Symptoms != nil {
		v.Symptoms = *p.Symptoms
	}
	if p.Diagnosis != nil {
		v.Diagnosis = *p.Diagnosis
	}
	return nil
}

// Patch converts a full update into the equivalent partial update.
func (r UpdateRequest) Patch() Patch {
	var p Patch
	set := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	set(&p.Status, r.Status)
	set(&p.Symptoms, r.Symptoms)
	set(&p.Diagnosis, r.Diagnosis)
	set(&p.Notes, r.Notes)
	return p
}

// Filter selects visits. Id and status filters run in the database; the
// name filters are case-insensitive substring matches applied afterwards.
type Filter struct {
	VisitID     *uuid.UUID
	PatientID   *uuid.UUID
	DoctorID    *uuid.UUID
	Status      string
	DoctorName  string
	PatientName string
}

// ParseFilter reads a Filter from query parameters.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	for _, p := range []struct {
		key string
		dst **uuid.UUID
	}{
		{"visitId", &f.VisitID},
		{"patientId", &f.PatientID},
		{"doctorId", &f.DoctorID},
	} {
		raw := strings.TrimSpace(q.Get(p.key))
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return Filter{}, apierr.Validation("Invalid " + p.key)
		}
		*p.dst = &id
	}

	f.Status = strings.TrimSpace(q.Get("status"))
	if f.Status != "" && !IsStatus(f.Status) {
		return Filter{}, apierr.Validation("Invalid status")
	}
	f.DoctorName = strings.TrimSpace(q.Get("doctorName"))
	f.PatientName = strings.TrimSpace(q.Get("patientName"))
	return f, nil
}

// Match applies the name filters. The doctor name is ignored once a doctor id
// is set.
func (f Filter) Match(v *Visit) bool {
	if f.DoctorID == nil && f.DoctorName != "" &&
		!strings.Contains(strings.ToLower(v.Doctor.Name), strings.ToLower(f.DoctorName)) {
		return false
	}
	if f.PatientName != "" &&
		!strings.Contains(strings.ToLower(v.Patient.Name), strings.ToLower(f.PatientName)) {
		return false
	}
	return true
}

type StatusTotal struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

// Summary aggregates the amounts of a set of visits.
type Summary struct {
	Count       int                    `json:"count"`
	TotalAmount float64                `json:"totalAmount"`
	ByStatus    map[string]StatusTotal `json:"byStatus"`
}
