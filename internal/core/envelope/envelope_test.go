package envelope

import (
	"testing"
)

type lot struct {
	ID   int    `json:"id"`
	Name string `json:"prime_location_name"`
}

func TestList_NestedFlatAndMissing(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"nested", `{"status":"success","data":{"lots":[{"id":1},{"id":2}]},"message":"List of lots"}`, 2},
		{"flat", `{"lots":[{"id":7}]}`, 1},
		{"empty object", `{}`, 0},
		{"null nested falls back to flat", `{"data":{"lots":null},"lots":[{"id":3}]}`, 1},
		{"not json", `<html>oops</html>`, 0},
		{"empty body", ``, 0},
		{"wrong type", `{"data":{"lots":"nope"}}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := List[lot](Parse([]byte(tc.body)), "lots")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil {
				t.Fatalf("expected non-nil slice")
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d lots, got %d (%+v)", tc.want, len(got), got)
			}
		})
	}
}

func TestList_PrefersNested(t *testing.T) {
	body := `{"data":{"lots":[{"id":1}]},"lots":[{"id":2},{"id":3}]}`
	got, err := List[lot](Parse([]byte(body)), "lots")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected nested list, got %+v", got)
	}
}

func TestList_MalformedElements(t *testing.T) {
	_, err := List[lot](Parse([]byte(`{"lots":[{"id":"x"}]}`)), "lots")
	if err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestObject_DataThenBody(t *testing.T) {
	type charts struct {
		SpotsByLot []map[string]any `json:"spots_by_lot"`
	}

	nested, err := Object[charts](Parse([]byte(`{"data":{"spots_by_lot":[{"lot_id":1}]}}`)), "")
	if err != nil || len(nested.SpotsByLot) != 1 {
		t.Fatalf("nested: %+v %v", nested, err)
	}

	flat, err := Object[charts](Parse([]byte(`{"spots_by_lot":[{"lot_id":1},{"lot_id":2}]}`)), "")
	if err != nil || len(flat.SpotsByLot) != 2 {
		t.Fatalf("flat: %+v %v", flat, err)
	}

	empty, err := Object[charts](Parse([]byte(`[]`)), "")
	if err != nil || empty.SpotsByLot != nil {
		t.Fatalf("empty: %+v %v", empty, err)
	}
}

func TestParse_EnvelopeFields(t *testing.T) {
	e := Parse([]byte(`{"status":"success","data":{},"message":"Login success"}`))
	if e.Status != "success" || e.Message != "Login success" {
		t.Fatalf("unexpected envelope: %+v", e)
	}
	if !e.Has("") {
		t.Fatalf("expected data to be present")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage([]byte(`{"status":"error","data":{},"message":"Invalid credentials"}`)); got != "Invalid credentials" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ErrorMessage([]byte(`{"error":"forbidden"}`)); got != "forbidden" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ErrorMessage([]byte(`bad gateway`)); got != "" {
		t.Fatalf("expected empty message, got %q", got)
	}
}

func TestString(t *testing.T) {
	e := Parse([]byte(`{"status":"started","task_id":"abc"}`))
	if got := String(e, "task_id"); got != "abc" {
		t.Fatalf("unexpected task id %q", got)
	}
}
