package org

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v2"
)

const exampleJSON = `{
	"sales": [{"name": "John", "salary": 1000}, {"name": "Alice", "salary": 1600}],
	"development": {
		"sites": [{"name": "Peter", "salary": 2000}, {"name": "Alex", "salary": 1800}],
		"internals": [{"name": "Jack", "salary": 1300}]
	}
}`

const exampleYAML = `
sales:
  - name: John
    salary: 1000
  - name: Alice
    salary: 1600
development:
  sites:
    - name: Peter
      salary: 2000
    - name: Alex
      salary: 1800
  internals:
    - name: Jack
      salary: 1300
`

func TestDecodeJSON(t *testing.T) {
	n, err := DecodeJSON([]byte(exampleJSON))
	if err != nil {
		t.Fatalf("got error decoding JSON: %v", err)
	}

	if diff := cmp.Diff(Example(), n); diff != "" {
		t.Fatalf("decoded tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeYAML(t *testing.T) {
	n, err := DecodeYAML([]byte(exampleYAML))
	if err != nil {
		t.Fatalf("got error decoding YAML: %v", err)
	}

	if diff := cmp.Diff(Example(), n); diff != "" {
		t.Fatalf("decoded tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLeaf(t *testing.T) {
	n, err := DecodeJSON([]byte(`[{"name": "a", "salary": 10}, {"salary": 5.5}]`))
	if err != nil {
		t.Fatalf("got error decoding JSON: %v", err)
	}

	expected := Staff{{Name: "a", Salary: 10}, {Salary: 5.5}}
	if diff := cmp.Diff(expected, n); diff != "" {
		t.Fatalf("decoded leaf mismatch (-want +got):\n%s", diff)
	}

	n, err = DecodeYAML([]byte("- name: a\n  salary: 10\n- salary: 5.5\n"))
	if err != nil {
		t.Fatalf("got error decoding YAML: %v", err)
	}

	if diff := cmp.Diff(expected, n); diff != "" {
		t.Fatalf("decoded leaf mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEmpties(t *testing.T) {
	n, err := DecodeJSON([]byte(`{"a": {}, "b": []}`))
	if err != nil {
		t.Fatalf("got error decoding JSON: %v", err)
	}

	expected := Departments{
		{Name: "a", Node: Departments{}},
		{Name: "b", Node: Staff{}},
	}
	if diff := cmp.Diff(expected, n); diff != "" {
		t.Fatalf("decoded tree mismatch (-want +got):\n%s", diff)
	}

	if SumSalaries(n) != 0 {
		t.Fatalf("expected empty tree to sum to 0, got %v", SumSalaries(n))
	}
}

func TestDecodeMalformed(t *testing.T) {
	inputs := map[string]string{
		"scalar":           `5`,
		"empty":            ``,
		"scalar child":     `{"sales": 5}`,
		"missing salary":   `{"sales": [{"name": "John"}]}`,
		"string salary":    `{"sales": [{"name": "John", "salary": "lots"}]}`,
		"numeric name":     `[{"name": 7, "salary": 1}]`,
		"non-object entry": `[1000, 1600]`,
	}

	for label, input := range inputs {
		t.Run(label, func(t *testing.T) {
			_, err := DecodeJSON([]byte(input))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDecodeMalformedNamesPath(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"development": {"sites": [{"salary": 1}, {"name": "x"}]}}`))
	if err == nil {
		t.Fatal("expected an error")
	}

	expected := "development/sites[1]: missing salary: malformed org structure"
	if err.Error() != expected {
		t.Fatalf("expected %q, got %q", expected, err.Error())
	}
}

func TestEncodeJSONKeepsOrder(t *testing.T) {
	buf, err := json.Marshal(Example())
	if err != nil {
		t.Fatalf("got error marshaling tree: %v", err)
	}

	expected := `{"sales":[{"name":"John","salary":1000},{"name":"Alice","salary":1600}],` +
		`"development":{"sites":[{"name":"Peter","salary":2000},{"name":"Alex","salary":1800}],` +
		`"internals":[{"name":"Jack","salary":1300}]}}`
	if string(buf) != expected {
		t.Fatalf("expected %v, got %v", expected, string(buf))
	}

	n, err := DecodeJSON(buf)
	if err != nil {
		t.Fatalf("got error decoding marshaled tree: %v", err)
	}

	if diff := cmp.Diff(Example(), n); diff != "" {
		t.Fatalf("tree changed through JSON (-want +got):\n%s", diff)
	}
}

func TestEncodeYAMLKeepsOrder(t *testing.T) {
	buf, err := yaml.Marshal(Tree{Node: Example()})
	if err != nil {
		t.Fatalf("got error marshaling tree: %v", err)
	}

	n, err := DecodeYAML(buf)
	if err != nil {
		t.Fatalf("got error decoding marshaled tree: %v", err)
	}

	if diff := cmp.Diff(Example(), n); diff != "" {
		t.Fatalf("tree changed through YAML (-want +got):\n%s", diff)
	}
}

func TestEncodeYAMLMapping(t *testing.T) {
	buf, err := yaml.Marshal(Tree{Node: Departments{
		{Name: "sales", Node: Staff{{Name: "John", Salary: 1000}}},
		{Name: "support", Node: Staff{}},
	}})
	if err != nil {
		t.Fatalf("got error marshaling tree: %v", err)
	}

	expected := "sales:\n- name: John\n  salary: 1000\nsupport: []\n"
	if string(buf) != expected {
		t.Fatalf("expected %q, got %q", expected, string(buf))
	}
}

func TestYAMLLeafRoundTrip(t *testing.T) {
	staff := Staff{{Name: "a", Salary: 10}, {Name: "b", Salary: 5.5}}

	buf, err := yaml.Marshal(Tree{Node: staff})
	if err != nil {
		t.Fatalf("got error marshaling tree: %v", err)
	}

	n, err := DecodeYAML(buf)
	if err != nil {
		t.Fatalf("got error decoding marshaled tree: %v", err)
	}

	if diff := cmp.Diff(Node(staff), n); diff != "" {
		t.Fatalf("leaf changed through YAML (-want +got):\n%s", diff)
	}
}

func TestDecodeYAMLEmpties(t *testing.T) {
	tests := []struct {
		input    string
		expected Node
	}{
		{input: "[]", expected: Staff{}},
		{input: "{}", expected: Departments{}},
		{input: "a: {}\nb: []\n", expected: Departments{
			{Name: "a", Node: Departments{}},
			{Name: "b", Node: Staff{}},
		}},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			n, err := DecodeYAML([]byte(test.input))
			if err != nil {
				t.Fatalf("got error decoding YAML: %v", err)
			}

			if diff := cmp.Diff(test.expected, n); diff != "" {
				t.Fatalf("decoded tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeYAMLMalformed(t *testing.T) {
	inputs := map[string]string{
		"scalar":         "5\n",
		"empty":          "",
		"missing salary": "sales:\n  - name: John\n",
		"scalar child":   "sales: 5\n",
	}

	for label, input := range inputs {
		t.Run(label, func(t *testing.T) {
			_, err := DecodeYAML([]byte(input))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestTreeInStruct(t *testing.T) {
	var doc struct {
		Name      string `json:"name"`
		Structure Tree   `json:"structure"`
	}

	err := json.Unmarshal([]byte(`{"name": "acme", "structure": `+exampleJSON+`}`), &doc)
	if err != nil {
		t.Fatalf("got error unmarshaling document: %v", err)
	}

	if SumSalaries(doc.Structure.Node) != 7700 {
		t.Fatalf("expected 7700, got %v", SumSalaries(doc.Structure.Node))
	}
}
