package evaluator

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decodeJSON(t *testing.T, data string) interface{} {
	t.Helper()
	var doc interface{}
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatalf("failed to decode test document: %v", err)
	}
	return doc
}

func TestResolve(t *testing.T) {
	doc := decodeJSON(t, `{
		"name": "Rhosonics",
		"customer": {"status": "active", "contact": null},
		"a": {"b": [10, 20, 30]},
		"count": 5,
		"flag": false
	}`)

	tests := []struct {
		name string
		path string
		want interface{}
	}{
		{"plain key", "name", "Rhosonics"},
		{"nested key", "customer.status", "active"},
		{"dollar prefix", "$.customer.status", "active"},
		{"bare dollar prefix", "$customer.status", "active"},
		{"array index", "a.b[1]", float64(20)},
		{"array index zero", "a.b[0]", float64(10)},
		{"out of range index", "a.b[5]", nil},
		{"missing key", "missing", nil},
		{"missing nested key", "customer.missing", nil},
		{"deep missing key", "x.y.z", nil},
		{"index into scalar", "count.b", nil},
		{"indexed segment on scalar", "count[0]", nil},
		{"indexed segment on non-array", "customer[0]", nil},
		{"null short-circuits", "customer.contact.email", nil},
		{"boolean value", "flag", false},
		{"wildcard treated as literal", "a.b[*]", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(doc, tt.path)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolveRoot(t *testing.T) {
	doc := decodeJSON(t, `{"a": 1}`)

	for _, path := range []string{"", "$"} {
		got := Resolve(doc, path)
		if !reflect.DeepEqual(got, doc) {
			t.Errorf("Resolve(%q) = %v, want whole document", path, got)
		}
	}
}

func TestResolveNonObjectDocument(t *testing.T) {
	if got := Resolve("scalar", "a.b"); got != nil {
		t.Errorf("Resolve on scalar document = %v, want nil", got)
	}
	if got := Resolve(nil, "a"); got != nil {
		t.Errorf("Resolve on nil document = %v, want nil", got)
	}
}
