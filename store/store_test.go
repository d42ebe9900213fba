package store

import (
	"encoding/json"
	"io/ioutil"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/run-ci/recurse/org"
	yaml "gopkg.in/yaml.v2"
)

func TestCompanyJSON(t *testing.T) {
	c := Company{
		ID:        7,
		Name:      "acme",
		Owner:     "user@test",
		Structure: &org.Tree{Node: org.Example()},
	}

	buf, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("got error marshaling company: %v", err)
	}

	var actual Company
	err = json.Unmarshal(buf, &actual)
	if err != nil {
		t.Fatalf("got error unmarshaling company: %v", err)
	}

	if diff := cmp.Diff(c, actual); diff != "" {
		t.Fatalf("company changed through JSON (-want +got):\n%s", diff)
	}
}

func TestCompanyPreviewJSON(t *testing.T) {
	buf, err := json.Marshal(Company{ID: 1, Name: "acme", Owner: "user@test"})
	if err != nil {
		t.Fatalf("got error marshaling company: %v", err)
	}

	expected := `{"id":1,"name":"acme","owner":"user@test"}`
	if string(buf) != expected {
		t.Fatalf("expected %v, got %v", expected, string(buf))
	}

	if (Company{}).Root() != nil {
		t.Fatal("expected company without structure to have a nil root")
	}
}

func TestSeedData(t *testing.T) {
	buf, err := ioutil.ReadFile("../dev/seed.yaml")
	if err != nil {
		t.Fatalf("got error reading seed data: %v", err)
	}

	var d struct {
		Users     []User    `yaml:"users"`
		Companies []Company `yaml:"companies"`
	}
	err = yaml.Unmarshal(buf, &d)
	if err != nil {
		t.Fatalf("got error loading YAML: %v", err)
	}

	if len(d.Users) != 1 || d.Users[0].Email != "user@test" {
		t.Fatalf("expected one user user@test, got %+v", d.Users)
	}

	if len(d.Companies) != 2 {
		t.Fatalf("expected 2 companies, got %v", len(d.Companies))
	}

	if diff := cmp.Diff(org.Example(), d.Companies[0].Root()); diff != "" {
		t.Fatalf("seeded structure mismatch (-want +got):\n%s", diff)
	}

	if total := org.SumSalaries(d.Companies[1].Root()); total != 500 {
		t.Fatalf("expected leaf company to total 500, got %v", total)
	}
}
