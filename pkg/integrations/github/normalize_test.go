package github

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/repoexplorer/pkg/repo"
)

func decodeNode(t *testing.T, s string) RawNode {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var n RawNode
	if err := dec.Decode(&n); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return n
}

func TestNormalizeComplete(t *testing.T) {
	n := decodeNode(t, `{"id":"R_1","name":"kit","description":"A kit","url":"https://github.com/a/kit",
		"primaryLanguage":{"name":"Go"},"stargazerCount":1500,"forkCount":3,"updatedAt":"2025-06-01T10:00:00Z"}`)

	r := Normalize(n)

	if r.ID != "R_1" || r.Name != "kit" || r.URL != "https://github.com/a/kit" {
		t.Errorf("identity fields = %+v", r)
	}
	if r.Description == nil || *r.Description != "A kit" {
		t.Errorf("Description = %v", r.Description)
	}
	if r.PrimaryLanguage == nil || r.PrimaryLanguage.Name != "Go" {
		t.Errorf("PrimaryLanguage = %v", r.PrimaryLanguage)
	}
	if r.StargazerCount != 1500 || r.ForkCount != 3 {
		t.Errorf("counts = %d/%d", r.StargazerCount, r.ForkCount)
	}
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if !r.UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", r.UpdatedAt, want)
	}
}

// Every node, however malformed, normalizes to a record with sane defaults.
func TestNormalizeTotal(t *testing.T) {
	tests := []struct {
		name string
		node string
	}{
		{"empty object", `{}`},
		{"nulls", `{"id":null,"name":null,"description":null,"url":null,"primaryLanguage":null,"stargazerCount":null,"forkCount":null,"updatedAt":null}`},
		{"wrong types", `{"id":true,"name":3,"description":7,"primaryLanguage":"Go","stargazerCount":"many","forkCount":[],"updatedAt":12}`},
		{"negative counts", `{"stargazerCount":-5,"forkCount":-1}`},
		{"language without name", `{"primaryLanguage":{}}`},
		{"language with empty name", `{"primaryLanguage":{"name":""}}`},
		{"bad date", `{"updatedAt":"yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Normalize(decodeNode(t, tt.node))

			if r.StargazerCount != 0 || r.ForkCount != 0 {
				t.Errorf("counts = %d/%d, want 0/0", r.StargazerCount, r.ForkCount)
			}
			if r.PrimaryLanguage != nil {
				t.Errorf("PrimaryLanguage = %v, want nil", r.PrimaryLanguage)
			}
			if r.Description != nil {
				t.Errorf("Description = %q, want nil", *r.Description)
			}
			if !r.UpdatedAt.IsZero() {
				t.Errorf("UpdatedAt = %v, want zero", r.UpdatedAt)
			}
		})
	}
}

func TestNormalizeNilNode(t *testing.T) {
	r := Normalize(nil)
	if r.Name != "" || r.Description != nil || r.PrimaryLanguage != nil {
		t.Errorf("Normalize(nil) = %+v", r)
	}
}

func TestNormalizeEmptyDescriptionIsPresent(t *testing.T) {
	r := Normalize(decodeNode(t, `{"description":""}`))
	if r.Description == nil {
		t.Fatal("empty description should stay distinct from absent")
	}
	if got := r.DescriptionText(repo.NoDescription); got != repo.NoDescription {
		t.Errorf("DescriptionText() = %q", got)
	}
}

func TestNormalizeNumericID(t *testing.T) {
	r := Normalize(decodeNode(t, `{"id":123456789012}`))
	if r.ID != "123456789012" {
		t.Errorf("ID = %q", r.ID)
	}
}

func TestNormalizeFractionalCount(t *testing.T) {
	r := Normalize(decodeNode(t, `{"stargazerCount":4.9,"forkCount":1e3}`))
	if r.StargazerCount != 4 || r.ForkCount != 1000 {
		t.Errorf("counts = %d/%d, want 4/1000", r.StargazerCount, r.ForkCount)
	}
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	nodes := []RawNode{
		decodeNode(t, `{"id":"b","name":"b"}`),
		decodeNode(t, `{"id":"a","name":"a"}`),
		nil,
	}
	got := NormalizeAll(nodes)
	if len(got) != 3 || got[0].ID != "b" || got[1].ID != "a" || got[2].ID != "" {
		t.Errorf("NormalizeAll() = %+v", got)
	}
}
