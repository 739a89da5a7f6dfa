package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/fanout/id"
)

func TestNewJobID(t *testing.T) {
	jobID := id.NewJobID()

	if jobID.IsNil() {
		t.Fatal("NewJobID returned the nil ID")
	}
	if jobID.Prefix() != id.PrefixJob {
		t.Errorf("Prefix = %q, want %q", jobID.Prefix(), id.PrefixJob)
	}
	if !strings.HasPrefix(jobID.String(), "job_") {
		t.Errorf("String = %q, want job_ prefix", jobID.String())
	}
}

func TestNew_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		s := id.NewJobID().String()
		if seen[s] {
			t.Fatalf("duplicate ID generated: %s", s)
		}
		seen[s] = true
	}
}

func TestParse_RoundTrip(t *testing.T) {
	original := id.NewJobID()

	parsed, err := id.Parse(original.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.String() != original.String() {
		t.Errorf("round trip: %q != %q", parsed.String(), original.String())
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "not-a-typeid", "job_!!!invalid!!!"} {
		if _, err := id.Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestParseJobID_WrongPrefix(t *testing.T) {
	other := id.New("task")

	if _, err := id.ParseJobID(other.String()); err == nil {
		t.Error("ParseJobID accepted a non-job prefix")
	}
	if _, err := id.ParseJobID(id.NewJobID().String()); err != nil {
		t.Errorf("ParseJobID rejected a job ID: %v", err)
	}
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse did not panic on invalid input")
		}
	}()
	id.MustParse("garbage")
}

func TestNil(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Error("Nil.IsNil() = false")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil.String() = %q, want empty", id.Nil.String())
	}
	if id.Nil.Prefix() != "" {
		t.Errorf("Nil.Prefix() = %q, want empty", id.Nil.Prefix())
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	original := id.NewJobID()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `"` + original.String() + `"`; string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var decoded id.ID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.String() != original.String() {
		t.Errorf("round trip: %q != %q", decoded.String(), original.String())
	}
}

func TestJSON_NilEncodesEmpty(t *testing.T) {
	data, err := json.Marshal(id.Nil)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `""` {
		t.Errorf("Marshal(Nil) = %s, want \"\"", data)
	}

	var decoded id.ID
	if err := json.Unmarshal([]byte(`""`), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.IsNil() {
		t.Error("empty string should decode to the nil ID")
	}
}
