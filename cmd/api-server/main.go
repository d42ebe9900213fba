package main

import (
	"fmt"
	"os"

	"github.com/run-ci/recurse/cmd/api-server/http"
	"github.com/run-ci/recurse/cmd/api-server/queue"
	"github.com/run-ci/recurse/store"

	nats "github.com/nats-io/go-nats"

	"github.com/sirupsen/logrus"
)

const eventSubject = "companies"

var logger *logrus.Entry

var pgconnstr, natsURL, jwtsecret, addr string

func init() {
	lvl, err := logrus.ParseLevel(os.Getenv("RECURSE_LOG_LEVEL"))
	if err != nil {
		lvl = logrus.InfoLevel
	}

	logrus.SetLevel(lvl)

	logger = logrus.WithField("package", "main")

	pguser := os.Getenv("RECURSE_POSTGRES_USER")
	if pguser == "" {
		logger.Fatal("need RECURSE_POSTGRES_USER")
	}

	pgpass := os.Getenv("RECURSE_POSTGRES_PASS")
	if pgpass == "" {
		logger.Fatal("need RECURSE_POSTGRES_PASS")
	}

	pghref := os.Getenv("RECURSE_POSTGRES_HREF")
	if pghref == "" {
		logger.Fatal("need RECURSE_POSTGRES_HREF")
	}

	pgdb := os.Getenv("RECURSE_POSTGRES_DB")
	if pgdb == "" {
		logger.Fatal("need RECURSE_POSTGRES_DB")
	}

	pgssl := os.Getenv("RECURSE_POSTGRES_SSL")
	if pgssl == "" {
		logger.Info("RECURSE_POSTGRES_SSL not set - defaulting to verify-full")
		pgssl = "verify-full"
	}

	pgconnstr = fmt.Sprintf("postgres://%v:%v@%v/%v?sslmode=%v",
		pguser, pgpass, pghref, pgdb, pgssl)

	natsURL = os.Getenv("RECURSE_NATS_URL")
	if natsURL == "" {
		logger.Warnf("setting NATS url to %v", nats.DefaultURL)
		natsURL = nats.DefaultURL
	}

	jwtsecret = os.Getenv("RECURSE_JWT_SECRET")
	if jwtsecret == "" {
		logger.Warn("RECURSE_JWT_SECRET not set - defaulting to \"\" (HIGHLY INSECURE!)")
	}

	addr = os.Getenv("RECURSE_LISTEN_ADDR")
	if addr == "" {
		addr = ":9001"
	}
}

func main() {
	logger.Info("booting server...")

	logger.Info("connecting to database")
	st, err := store.NewPostgres(pgconnstr)
	if err != nil {
		logger.WithField("error", err).Fatal("unable to connect to postgres")
	}

	logger.Info("setting up NATS connection")

	var send chan<- []byte
	bus, err := queue.NewNATS(natsURL)
	if err != nil {
		logger.WithField("error", err).Warn("unable to connect to NATS, company events will be dropped")
		send = queue.Discard(eventSubject)
	} else {
		send = bus.SenderOn(eventSubject)
	}

	srv := http.NewServer(addr, send, st, jwtsecret)

	logger.WithField("addr", addr).Info("listening")

	err = srv.ListenAndServe()

	// logger.Fatal exits without running deferred calls.
	bus.Close()
	st.Close()

	if err != nil {
		logger.WithField("error", err).Fatal("shutting down server")
	}
}
