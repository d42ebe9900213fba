package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/run-ci/recurse/org"
	"github.com/run-ci/recurse/store"
	yaml "gopkg.in/yaml.v2"
)

func usage() {
	fmt.Println("usage: go run dev/seed-db/main.go -- $POSTGRES_CONNECTION_STRING $DATA_YAML_PATH")
}

type data struct {
	Users     []store.User    `yaml:"users"`
	Companies []store.Company `yaml:"companies"`
}

func main() {
	// This is 4 because passing arguments to `go run` requires the `--` and
	// that also counts as one of the arguments in `os.Args`.
	if len(os.Args) != 4 {
		usage()
		os.Exit(1)
	}

	args := os.Args[2:]

	connstr := args[0]
	if connstr == "" {
		usage()
		return
	}

	path := args[1]
	if path == "" {
		usage()
		return
	}

	fmt.Printf("seeding database with data from %v\n", path)

	buf, err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Printf("got error reading file: %v\n", err)
		os.Exit(1)
	}

	var d data
	err = yaml.Unmarshal(buf, &d)
	if err != nil {
		fmt.Printf("got error loading YAML: %v\n", err)
		os.Exit(1)
	}

	st, err := store.NewPostgres(connstr)
	if err != nil {
		fmt.Printf("got error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	for i := range d.Users {
		u := &d.Users[i]

		if err := st.CreateUser(u); err != nil {
			fmt.Printf("got error creating user %v: %v\n", u.Email, err)
			os.Exit(1)
		}

		fmt.Printf("created user %v\n", u.Email)
	}

	for i := range d.Companies {
		c := &d.Companies[i]

		if err := st.CreateCompany(c); err != nil {
			fmt.Printf("got error creating company %v: %v\n", c.Name, err)
			os.Exit(1)
		}

		fmt.Printf("created company %v (id %v) with salaries totaling %v\n",
			c.Name, c.ID, org.SumSalaries(c.Root()))
	}
}
