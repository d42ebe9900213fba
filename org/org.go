// Package org models a company as a tree of departments whose leaves
// are lists of employees, and aggregates over that tree recursively.
//
// A Node is either Staff (a leaf) or Departments (an ordered mapping of
// department name to child Node). The tree is assumed to be finite and
// acyclic; nothing here checks for cycles.
package org

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Entry

var (
	// ErrNotFound is returned by Lookup when a path segment doesn't name
	// a department.
	ErrNotFound = errors.New("department not found")
	// ErrMalformed is returned by the decoders when a node is neither a
	// list of employees nor a mapping of departments.
	ErrMalformed = errors.New("malformed org structure")
)

func init() {
	logger = logrus.WithField("package", "org")
}

// Node is either Staff or Departments.
type Node interface {
	isNode()
}

// Employee is a single record in a Staff leaf.
type Employee struct {
	Name   string  `json:"name" yaml:"name"`
	Salary float64 `json:"salary" yaml:"salary"`
}

// Staff is a leaf of the tree.
type Staff []Employee

// Department is one named entry of a Departments mapping.
type Department struct {
	Name string
	Node Node
}

// Departments maps department names to child nodes, in insertion order.
type Departments []Department

func (Staff) isNode()       {}
func (Departments) isNode() {}

// Get returns the first child named name.
func (ds Departments) Get(name string) (Node, bool) {
	for _, d := range ds {
		if d.Name == name {
			return d.Node, true
		}
	}

	return nil, false
}

// SumSalaries returns the sum of every salary reachable from n.
func SumSalaries(n Node) float64 {
	switch n := n.(type) {
	case Staff:
		sum := 0.0
		for _, e := range n {
			sum += e.Salary
		}
		return sum

	case Departments:
		sum := 0.0
		for _, d := range n {
			sum += SumSalaries(d.Node)
		}
		return sum
	}

	return 0
}

// Headcount returns the number of employees reachable from n.
func Headcount(n Node) int {
	switch n := n.(type) {
	case Staff:
		return len(n)

	case Departments:
		count := 0
		for _, d := range n {
			count += Headcount(d.Node)
		}
		return count
	}

	return 0
}

// Depth returns the number of levels in the tree rooted at n. This is
// also how deep SumSalaries recurses. A leaf or an empty mapping is one
// level; a nil node is zero.
func Depth(n Node) int {
	ds, ok := n.(Departments)
	if !ok {
		if n == nil {
			return 0
		}
		return 1
	}

	deepest := 0
	for _, d := range ds {
		if depth := Depth(d.Node); depth > deepest {
			deepest = depth
		}
	}

	return deepest + 1
}

// Lookup walks down from n following the department names in path. An
// empty path returns n itself.
func Lookup(n Node, path ...string) (Node, error) {
	if len(path) == 0 {
		return n, nil
	}

	ds, ok := n.(Departments)
	if !ok {
		return nil, fmt.Errorf("%v: %w", path[0], ErrNotFound)
	}

	child, ok := ds.Get(path[0])
	if !ok {
		return nil, fmt.Errorf("%v: %w", path[0], ErrNotFound)
	}

	found, err := Lookup(child, path[1:]...)
	if err != nil {
		return nil, fmt.Errorf("%v/%w", path[0], err)
	}

	return found, nil
}

// SplitPath turns "development/sites" into its segments, ignoring empty
// ones so that "", "/" and "a//b" behave sensibly.
func SplitPath(p string) []string {
	segs := []string{}
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}

	return segs
}

// Example returns the company used throughout the recursion tutorial.
// Its salaries add up to 7700.
func Example() Node {
	return Departments{
		{Name: "sales", Node: Staff{
			{Name: "John", Salary: 1000},
			{Name: "Alice", Salary: 1600},
		}},
		{Name: "development", Node: Departments{
			{Name: "sites", Node: Staff{
				{Name: "Peter", Salary: 2000},
				{Name: "Alex", Salary: 1800},
			}},
			{Name: "internals", Node: Staff{
				{Name: "Jack", Salary: 1300},
			}},
		}},
	}
}
