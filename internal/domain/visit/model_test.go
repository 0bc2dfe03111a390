package visit

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2026-03-01T10:30:00Z",
		"2026-03-01T12:30:00+02:00",
		"2026-03-01T10:30:00.000Z",
		"2026-03-01T10:30:00",
		"2026-03-01T10:30",
	} {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("%s: unexpected error %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("%s: expected %s, got %s", in, want, got)
		}
	}
	a, _ := ParseDate("2026-03-01T10:00:00.100Z")
	b, _ := ParseDate("2026-03-01T10:00:00.900Z")
	if a.Equal(b) {
		t.Errorf("sub-second instants must stay distinct, got %s and %s", a, b)
	}
	if want := time.Date(2026, 3, 1, 10, 0, 0, 100*int(time.Millisecond), time.UTC); !a.Equal(want) {
		t.Errorf("expected %s, got %s", want, a)
	}
	if c, _ := ParseDate("2026-03-01T10:00:00.1239Z"); c.Nanosecond() != 123*int(time.Millisecond) {
		t.Errorf("expected millisecond precision, got %d ns", c.Nanosecond())
	}
	if _, err := ParseDate("01/03/2026"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestTimeOfDay(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 5, 9, 0, time.FixedZone("x", 2*3600))
	if got := TimeOfDay(at); got != "10:05:09" {
		t.Errorf("expected 10:05:09, got %s", got)
	}
}

func TestParsePatch_AllowList(t *testing.T) {
	p, err := ParsePatch(map[string]json.RawMessage{
		"status": json.RawMessage(`"completed"`),
		"notes":  json.RawMessage(`""`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status == nil || *p.Status != StatusCompleted {
		t.Errorf("expected status, got %v", p.Status)
	}
	if p.Notes == nil || *p.Notes != "" {
		t.Error("expected empty notes to be kept as a clear")
	}
	if p.Symptoms != nil || p.Diagnosis != nil {
		t.Error("absent keys must stay nil")
	}

	for _, key := range []string{"totalAmount", "doctor", "patientId", "_id"} {
		_, err := ParsePatch(map[string]json.RawMessage{key: json.RawMessage(`"x"`)})
		if err == nil || err.Error() != "Field cannot be updated: "+key {
			t.Errorf("%s: expected rejection, got %v", key, err)
		}
	}

	if _, err := ParsePatch(map[string]json.RawMessage{"notes": json.RawMessage(`42`)}); err == nil {
		t.Error("expected error for non-string value")
	}
}

func TestPatch_Apply(t *testing.T) {
	row := &Row{Status: StatusScheduled, Notes: "n", Symptoms: "s"}
	bad := "finished"
	if err := (Patch{Status: &bad}).Apply(row); err == nil {
		t.Fatal("expected invalid status error")
	}
	if row.Status != StatusScheduled {
		t.Error("row must be unchanged after a rejected status")
	}

	diag := "flu"
	if err := (Patch{Diagnosis: &diag}).Apply(row); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Diagnosis != "flu" || row.Notes != "n" {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestUpdateRequest_PatchSkipsEmpty(t *testing.T) {
	p := UpdateRequest{Status: StatusCompleted, Notes: ""}.Patch()
	if p.Status == nil || p.Notes != nil || p.Symptoms != nil {
		t.Errorf("unexpected patch %+v", p)
	}
	if !(UpdateRequest{}).Patch().Empty() {
		t.Error("expected empty patch")
	}
}

func TestParseFilter(t *testing.T) {
	id := uuid.New()
	f, err := ParseFilter(url.Values{
		"doctorId":    {id.String()},
		"status":      {"scheduled"},
		"patientName": {" ann "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.DoctorID == nil || *f.DoctorID != id || f.Status != StatusScheduled || f.PatientName != "ann" {
		t.Errorf("unexpected filter %+v", f)
	}

	if _, err := ParseFilter(url.Values{"visitId": {"nope"}}); err == nil {
		t.Error("expected error for malformed visitId")
	}
	if _, err := ParseFilter(url.Values{"status": {"done"}}); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestFilter_Match(t *testing.T) {
	v := &Visit{Doctor: DoctorInfo{Name: "Dr. House"}, Patient: PatientInfo{Name: "Ann Lee"}}
	if !(Filter{DoctorName: "HOUSE", PatientName: "lee"}).Match(v) {
		t.Error("expected case-insensitive match")
	}
	if (Filter{DoctorName: "wilson"}).Match(v) {
		t.Error("expected doctor name mismatch")
	}
	id := uuid.New()
	if !(Filter{DoctorID: &id, DoctorName: "wilson"}).Match(v) {
		t.Error("doctor name must be ignored when a doctor id is set")
	}
}
