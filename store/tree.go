package store

import (
	"database/sql"
	"fmt"

	"github.com/run-ci/recurse/org"
)

const (
	kindStaff       = "staff"
	kindDepartments = "departments"
)

// deptrow and emprow are rows as they come out of the departments and
// employees tables, in position order.
type deptrow struct {
	id     int
	parent sql.NullInt64
	name   string
	kind   string
}

type emprow struct {
	deptID int
	org.Employee
}

// rows is the part of *sql.Rows that scanning needs.
type rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanDepts(rs rows) ([]deptrow, error) {
	depts := []deptrow{}
	for rs.Next() {
		var d deptrow
		err := rs.Scan(&d.id, &d.parent, &d.name, &d.kind)
		if err != nil {
			return nil, err
		}

		depts = append(depts, d)
	}

	return depts, rs.Err()
}

func scanEmps(rs rows) ([]emprow, error) {
	emps := []emprow{}
	for rs.Next() {
		var e emprow
		err := rs.Scan(&e.deptID, &e.Name, &e.Salary)
		if err != nil {
			return nil, err
		}

		emps = append(emps, e)
	}

	return emps, rs.Err()
}

type deptnode struct {
	name     string
	kind     string
	children []*deptnode
	staff    org.Staff
}

func (n *deptnode) toNode() org.Node {
	if n.kind == kindStaff {
		if n.staff == nil {
			return org.Staff{}
		}
		return n.staff
	}

	ds := make(org.Departments, 0, len(n.children))
	for _, child := range n.children {
		ds = append(ds, org.Department{Name: child.name, Node: child.toNode()})
	}

	return ds
}

// buildTree assembles the flat rows of one company into its org tree.
// There must be exactly one root row, and every other row must hang
// off it.
func buildTree(depts []deptrow, emps []emprow) (org.Node, error) {
	nodes := make(map[int]*deptnode, len(depts))
	for _, d := range depts {
		if d.kind != kindStaff && d.kind != kindDepartments {
			return nil, fmt.Errorf("department %v has kind %q: %w", d.id, d.kind, org.ErrMalformed)
		}

		nodes[d.id] = &deptnode{name: d.name, kind: d.kind}
	}

	var root *deptnode
	for _, d := range depts {
		n := nodes[d.id]

		if !d.parent.Valid {
			if root != nil {
				return nil, fmt.Errorf("more than one root department: %w", org.ErrMalformed)
			}
			root = n
			continue
		}

		parent, ok := nodes[int(d.parent.Int64)]
		if !ok || parent.kind != kindDepartments {
			return nil, fmt.Errorf("department %v has no usable parent: %w", d.id, org.ErrMalformed)
		}

		parent.children = append(parent.children, n)
	}

	if root == nil {
		return nil, fmt.Errorf("no root department: %w", org.ErrMalformed)
	}

	for _, e := range emps {
		n, ok := nodes[e.deptID]
		if !ok || n.kind != kindStaff {
			return nil, fmt.Errorf("employee %q is not in a staff department: %w", e.Name, org.ErrMalformed)
		}

		n.staff = append(n.staff, e.Employee)
	}

	if reached := count(root); reached != len(depts) {
		return nil, fmt.Errorf("%v departments unreachable from root: %w", len(depts)-reached, org.ErrMalformed)
	}

	return root.toNode(), nil
}

func count(n *deptnode) int {
	total := 1
	for _, child := range n.children {
		total += count(child)
	}

	return total
}
