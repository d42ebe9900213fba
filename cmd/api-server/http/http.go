package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/run-ci/recurse/store"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

var logger *logrus.Entry

type ctxkey int

const (
	keyReqID ctxkey = iota
	keyReqSub
)

// DefaultTokenTTL is how long tokens issued by /auth stay valid.
const DefaultTokenTTL = 15 * time.Minute

func init() {
	logger = logrus.WithField("package", "http")
}

// apiStore is a grouping of the minimum number of store
// interfaces the API needs to work.
type apiStore interface {
	CreateCompany(*store.Company) error
	GetCompany(user string, id int) (store.Company, error)
	GetCompanies(user string) ([]store.Company, error)

	Authenticate(email, pass string) error
}

// Server is a net/http.Server with dependencies like
// the database connection.
type Server struct {
	st        apiStore
	eventch   chan<- []byte
	jwtsecret []byte
	tokenTTL  time.Duration

	*http.Server
}

// NewServer returns a Server with a reference to `st`, listening
// on `addr`. Company events are sent on `eventch`.
func NewServer(addr string, eventch chan<- []byte, st apiStore, jwtsecret string) *Server {
	srv := &Server{
		Server: &http.Server{
			Addr: addr,
		},

		st:        st,
		eventch:   eventch,
		jwtsecret: []byte(jwtsecret),
		tokenTTL:  DefaultTokenTTL,
	}

	r := mux.NewRouter()
	srv.Handler = r

	r.Handle("/", chain(getRoot, setRequestID, logRequest)).
		Methods(http.MethodGet)

	r.Handle("/auth", chain(srv.handleAuth, setRequestID, logRequest)).
		Methods(http.MethodPost)

	r.Handle("/power", chain(handleGetPower, setRequestID, logRequest)).
		Methods(http.MethodGet)

	r.Handle("/salaries", chain(handleSumSalaries, setRequestID, logRequest)).
		Methods(http.MethodPost)

	r.Handle("/companies", chain(
		srv.handleCreateCompany,
		setRequestID,
		logRequest,
		srv.checkAuth,
	)).Methods(http.MethodPost)

	r.Handle("/companies", chain(
		srv.handleGetCompanies,
		setRequestID,
		logRequest,
		srv.checkAuth,
	)).Methods(http.MethodGet)

	r.Handle("/companies/{id}", chain(
		srv.handleGetCompany,
		setRequestID,
		logRequest,
		srv.checkAuth,
	)).Methods(http.MethodGet)

	r.Handle("/companies/{id}/salaries", chain(
		srv.handleGetCompanySalaries,
		setRequestID,
		logRequest,
		srv.checkAuth,
	)).Methods(http.MethodGet)

	return srv
}

// Middleware is a function that can intercept the handling of an HTTP request
// to do something useful.
type middleware func(http.HandlerFunc) http.HandlerFunc

// Chain builds the final http.Handler from all the middlewares passed to it.
func chain(f http.HandlerFunc, mw ...middleware) http.Handler {
	// Middlewares wrap each other, so they're applied in reverse to
	// run in the order they were passed.
	for i := len(mw) - 1; i >= 0; i-- {
		f = mw[i](f)
	}

	return f
}

// SetRequestID sets a UUID on the request so that it can be tracked through
// logs, metrics and instrumentation.
func setRequestID(f http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		id := uuid.New().String()

		ctx := context.WithValue(req.Context(), keyReqID, id)
		logger.WithField("request_id", id).
			Debug("setting request ID")

		f(rw, req.WithContext(ctx))
	}
}

// LogRequest logs useful information about the request. It must have a
// "request_id" set on the request context.
func logRequest(f http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		reqid := req.Context().Value(keyReqID).(string)

		logger := logger.WithField("request_id", reqid)

		logger.Infof("%v %v", req.Method, req.URL)

		f(rw, req)
	}
}

func (srv *Server) checkAuth(f http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		hdrline, ok := req.Header["Authorization"]
		if !ok {
			err := errors.New("missing bearer token")

			logger.WithError(err).Error("unable to authorize request")
			writeErrResp(rw, err, http.StatusUnauthorized)
			return
		}

		hdr := strings.Split(hdrline[0], " ")

		if len(hdr) < 2 || hdr[0] != "Bearer" {
			err := errors.New("missing bearer token")

			logger.WithError(err).Error("unable to authorize request")
			writeErrResp(rw, err, http.StatusUnauthorized)
			return
		}

		// Tokens come in the form of "Bearer $TOKEN"
		bearer := hdr[1]

		keyfn := func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				err := errors.New("invalid signing method for bearer token")

				return nil, err
			}

			return srv.jwtsecret, nil
		}

		token, err := jwt.ParseWithClaims(bearer, &jwt.StandardClaims{}, keyfn)
		if err != nil {
			logger.WithError(err).Error("unable to authorize request")
			writeErrResp(rw, err, http.StatusUnauthorized)
			return
		}

		if claims, ok := token.Claims.(*jwt.StandardClaims); ok && token.Valid {
			if time.Now().Unix() > claims.ExpiresAt {
				err := errors.New("token expired")
				logger.WithError(err).Error("unable to authorize request")
				writeErrResp(rw, err, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(req.Context(), keyReqSub, claims.Subject)
			logger.WithField("sub", claims.Subject).
				Debug("setting auth subject")

			f(rw, req.WithContext(ctx))
			return
		}

		err = errors.New("invalid bearer token")
		logger.WithError(err).Error("unable to authorize request")
		writeErrResp(rw, err, http.StatusUnauthorized)
	}
}

func getRoot(rw http.ResponseWriter, req *http.Request) {
	writeResp(rw, logger, http.StatusOK, map[string]string{
		"name": "recurse",
	})
}

// requestLogger returns the package logger with the request ID and, if
// the request went through checkAuth, the subject.
func requestLogger(req *http.Request) *logrus.Entry {
	fields := logrus.Fields{}

	if reqID, ok := req.Context().Value(keyReqID).(string); ok {
		fields["request_id"] = reqID
	}

	if reqSub, ok := req.Context().Value(keyReqSub).(string); ok {
		fields["request_subject"] = reqSub
	}

	return logger.WithFields(fields)
}

func intVar(req *http.Request, name string) (int, error) {
	raw, ok := mux.Vars(req)[name]
	if !ok || raw == "" {
		return 0, errors.New("missing parameter '" + name + "' from request")
	}

	return strconv.Atoi(raw)
}

func writeResp(rw http.ResponseWriter, logger *logrus.Entry, status int, v interface{}) {
	logger.Debug("marshaling response body")

	buf, err := json.Marshal(v)
	if err != nil {
		logger.WithError(err).Error("unable to marshal response body")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(buf)
}

func writeErrResp(rw http.ResponseWriter, err error, status int) {
	buf, _ := json.Marshal(map[string]string{
		"error": err.Error(),
	})

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(buf)
}
