package store

import (
	"errors"

	"github.com/run-ci/recurse/org"
	log "github.com/sirupsen/logrus"
)

var logger *log.Entry

var (
	// ErrCompanyNotFound is returned when a company couldn't be found
	// in the store for the requesting user.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrNotAuthenticated is returned when a user's credentials don't
	// match what's in the store.
	ErrNotAuthenticated = errors.New("not authenticated")
)

func init() {
	logger = log.WithFields(log.Fields{
		"package": "store",
	})
}

// OrgStore is everything a store needs to do so that implementations
// can be swapped out. Consumers should define their own interfaces with
// the subset of these methods they use.
type OrgStore interface {
	// CreateCompany saves a company and its whole structure, setting
	// the ID on the input.
	CreateCompany(*Company) error
	// GetCompany returns the company with the given ID, including its
	// structure, if the user owns it. Otherwise it returns
	// ErrCompanyNotFound.
	GetCompany(user string, id int) (Company, error)
	// GetCompanies returns previews of the user's companies, without
	// their structure.
	GetCompanies(user string) ([]Company, error)

	CreateUser(*User) error
	// Authenticate returns ErrNotAuthenticated if the password doesn't
	// belong to the user with the given email.
	Authenticate(email, pass string) error
}

// Company is a named org tree owned by a user.
type Company struct {
	ID    int    `json:"id" yaml:"-"`
	Name  string `json:"name" yaml:"name"`
	Owner string `json:"owner" yaml:"owner"`

	Structure *org.Tree `json:"structure,omitempty" yaml:"structure,omitempty"`
}

// Root returns the top of the company's structure, or nil if the
// company was loaded without one.
func (c Company) Root() org.Node {
	if c.Structure == nil {
		return nil
	}

	return c.Structure.Node
}

// User is someone allowed to manage companies.
type User struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password,omitempty" yaml:"password"`
}
