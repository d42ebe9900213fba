package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const companyJSON = `{
	"sales": [{"name": "John", "salary": 1000}, {"name": "Alice", "salary": 1600}],
	"development": {
		"sites": [{"name": "Peter", "salary": 2000}, {"name": "Alex", "salary": 1800}],
		"internals": [{"name": "Jack", "salary": 1300}]
	}
}`

func TestSumSalaries(t *testing.T) {
	tests := []struct {
		label    string
		body     string
		path     string
		status   int
		expected salariesResponse
	}{
		{
			label:    "worked example",
			body:     companyJSON,
			status:   http.StatusOK,
			expected: salariesResponse{Total: 7700, Headcount: 5, Depth: 3},
		},
		{
			label:    "subtree",
			body:     companyJSON,
			path:     "development",
			status:   http.StatusOK,
			expected: salariesResponse{Path: "development", Total: 5100, Headcount: 3, Depth: 2},
		},
		{
			label:    "leaf",
			body:     `[{"name": "a", "salary": 10}, {"name": "b", "salary": 20}]`,
			status:   http.StatusOK,
			expected: salariesResponse{Total: 30, Headcount: 2, Depth: 1},
		},
		{
			label:    "empty mapping",
			body:     `{}`,
			status:   http.StatusOK,
			expected: salariesResponse{Total: 0, Headcount: 0, Depth: 1},
		},
		{
			label:  "missing path",
			body:   companyJSON,
			path:   "development/ops",
			status: http.StatusNotFound,
		},
		{
			label:  "malformed",
			body:   `{"sales": 12}`,
			status: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.label, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://test/salaries?path="+test.path,
				bytes.NewBufferString(test.body))
			req = req.WithContext(context.WithValue(context.Background(), keyReqID, "test"))
			rw := httptest.NewRecorder()

			handleSumSalaries(rw, req)

			if rw.Code != test.status {
				t.Fatalf("expected status %v, got %v", test.status, rw.Code)
			}

			if test.status != http.StatusOK {
				return
			}

			var actual salariesResponse
			err := json.Unmarshal(rw.Body.Bytes(), &actual)
			if err != nil {
				t.Fatalf("got error unmarshaling response body: %v", err)
			}

			if actual != test.expected {
				t.Fatalf("expected %+v, got %+v", test.expected, actual)
			}
		})
	}
}
