package store

import (
	"database/sql"

	_ "github.com/lib/pq" // load the postgres driver
	"github.com/run-ci/recurse/org"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Postgres is a PostgreSQL database that's also an OrgStore.
type Postgres struct {
	db *sql.DB
}

var _ OrgStore = (*Postgres)(nil)

// NewPostgres returns an OrgStore backed by PostgreSQL. It connects to the
// database using connstr.
func NewPostgres(connstr string) (*Postgres, error) {
	logger := logger.WithField("store", "postgres")

	logger.Debug("connecting to database")

	db, err := sql.Open("postgres", connstr)
	if err != nil {
		logger.WithField("error", err).Debug("unable to connect to database")
		return nil, err
	}

	return &Postgres{
		db: db,
	}, nil
}

// Close closes the underlying connection pool.
func (st *Postgres) Close() error {
	return st.db.Close()
}

// CreateCompany saves the company and every department and employee in
// its structure in one transaction, and sets the ID to what Postgres
// assigned it.
func (st *Postgres) CreateCompany(c *Company) error {
	logger := logger.WithFields(log.Fields{
		"name":  c.Name,
		"owner": c.Owner,
		"query": "create_company",
	})
	logger.Debug("saving company to postgres")

	tx, err := st.db.Begin()
	if err != nil {
		logger.WithError(err).Debug("unable to begin transaction")
		return err
	}

	sqlinsert := `
	INSERT INTO companies (name, user_email)
	VALUES
		($1, $2)
	RETURNING id;
	`

	// Using QueryRow because the insert is returning "id".
	err = tx.QueryRow(sqlinsert, c.Name, c.Owner).Scan(&c.ID)
	if err != nil {
		logger.WithError(err).Debug("unable to create company")
		tx.Rollback()
		return err
	}

	root := c.Root()
	if root == nil {
		root = org.Departments{}
	}

	err = insertNode(tx, c.ID, sql.NullInt64{}, c.Name, 0, root)
	if err != nil {
		logger.WithError(err).Debug("unable to save company structure")
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// insertNode saves n under parent and then recurses into its children.
func insertNode(tx *sql.Tx, companyID int, parent sql.NullInt64, name string, pos int, n org.Node) error {
	kind := kindDepartments
	if _, ok := n.(org.Staff); ok {
		kind = kindStaff
	}

	sqlinsert := `
	INSERT INTO departments (company_id, parent_id, name, kind, position)
	VALUES
		($1, $2, $3, $4, $5)
	RETURNING id;
	`

	var id int64
	err := tx.QueryRow(sqlinsert, companyID, parent, name, kind, pos).Scan(&id)
	if err != nil {
		return err
	}

	switch n := n.(type) {
	case org.Staff:
		sqlemp := `
		INSERT INTO employees (department_id, name, salary, position)
		VALUES
			($1, $2, $3, $4)
		`

		for i, e := range n {
			_, err := tx.Exec(sqlemp, id, e.Name, e.Salary, i)
			if err != nil {
				return err
			}
		}

	case org.Departments:
		for i, d := range n {
			child := d.Node
			if child == nil {
				child = org.Staff{}
			}

			err := insertNode(tx, companyID, sql.NullInt64{Int64: id, Valid: true}, d.Name, i, child)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// GetCompany retrieves the company with the given id from postgres and
// assembles its structure. If the user doesn't own it, it returns
// ErrCompanyNotFound.
func (st *Postgres) GetCompany(user string, id int) (Company, error) {
	logger := logger.WithFields(log.Fields{
		"company_id": id,
		"query":      "get_company",
	})
	logger.Debug("getting company from postgres")

	sqlq := `
	SELECT c.name, c.user_email
	FROM companies AS c
	WHERE c.id = $1 AND c.user_email = $2;
	`

	c := Company{ID: id}
	err := st.db.QueryRow(sqlq, id, user).Scan(&c.Name, &c.Owner)
	if err != nil {
		logger.WithError(err).Debug("unable to query row")
		if err == sql.ErrNoRows {
			return c, ErrCompanyNotFound
		}
		return c, err
	}

	sqldepts := `
	SELECT d.id, d.parent_id, d.name, d.kind
	FROM departments AS d
	WHERE d.company_id = $1
	ORDER BY d.parent_id NULLS FIRST, d.position;
	`

	deptrows, err := st.db.Query(sqldepts, id)
	if err != nil {
		logger.WithError(err).Debug("unable to query departments")
		return c, err
	}
	defer deptrows.Close()

	depts, err := scanDepts(deptrows)
	if err != nil {
		logger.WithError(err).Debug("unable to read department rows")
		return c, err
	}

	sqlemps := `
	SELECT e.department_id, e.name, e.salary
	FROM employees AS e
	INNER JOIN departments AS d
	ON e.department_id = d.id
	WHERE d.company_id = $1
	ORDER BY e.department_id, e.position;
	`

	emprows, err := st.db.Query(sqlemps, id)
	if err != nil {
		logger.WithError(err).Debug("unable to query employees")
		return c, err
	}
	defer emprows.Close()

	emps, err := scanEmps(emprows)
	if err != nil {
		logger.WithError(err).Debug("unable to read employee rows")
		return c, err
	}

	root, err := buildTree(depts, emps)
	if err != nil {
		logger.WithError(err).Debug("unable to assemble company structure")
		return c, err
	}

	c.Structure = &org.Tree{Node: root}

	return c, nil
}

// GetCompanies retrieves previews of all the user's companies.
func (st *Postgres) GetCompanies(user string) ([]Company, error) {
	logger := logger.WithField("query", "get_companies")
	logger.Debug("fetching all companies from postgres")

	sqlq := `
	SELECT c.id, c.name, c.user_email
	FROM companies AS c
	WHERE c.user_email = $1
	ORDER BY c.id;
	`

	rows, err := st.db.Query(sqlq, user)
	if err != nil {
		logger.WithError(err).Debug("unable to query database")
		return nil, err
	}
	defer rows.Close()

	cs := []Company{}
	for rows.Next() {
		c := Company{}
		err := rows.Scan(&c.ID, &c.Name, &c.Owner)
		if err != nil {
			logger.WithError(err).Debug("unable to scan row")
			return cs, err
		}

		cs = append(cs, c)
	}

	return cs, rows.Err()
}

// CreateUser creates the passed in user in the database, storing only a
// hash of the password.
func (st *Postgres) CreateUser(u *User) error {
	logger := logger.WithField("email", u.Email)
	logger.Debug("saving user")

	password, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.WithError(err).Debug("unable to encrypt password")
		return err
	}

	sqlq := `
	INSERT INTO users (email, name, password)
	VALUES
		($1, $2, $3)
	`

	_, err = st.db.Exec(sqlq, u.Email, u.Name, password)
	return err
}

// Authenticate checks the password for the user with the given email address.
func (st *Postgres) Authenticate(email, pass string) error {
	logger := logger.WithField("email", email)
	logger.Debug("authenticating user")

	sqlq := `
	SELECT password
	FROM users
	WHERE users.email = $1
	`

	cryptpass := []byte{}
	err := st.db.QueryRow(sqlq, email).Scan(&cryptpass)
	if err != nil {
		logger.WithError(err).Debug("unable to query row")
		if err == sql.ErrNoRows {
			return ErrNotAuthenticated
		}
		return err
	}

	err = bcrypt.CompareHashAndPassword(cryptpass, []byte(pass))
	if err != nil {
		logger.WithError(err).Debug("unable to authenticate")
		return ErrNotAuthenticated
	}

	return nil
}
