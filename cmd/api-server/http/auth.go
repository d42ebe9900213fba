package http

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/run-ci/recurse/store"

	jwt "github.com/dgrijalva/jwt-go"
)

func (srv *Server) handleAuth(rw http.ResponseWriter, req *http.Request) {
	logger := requestLogger(req)

	buf, err := ioutil.ReadAll(req.Body)
	if err != nil {
		logger.WithError(err).Error("unable to read request body")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	var auth map[string]string
	err = json.Unmarshal(buf, &auth)
	if err != nil {
		logger.WithError(err).Error("unable to unmarshal request body")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	email, ok := auth["email"]
	if !ok {
		err := errors.New("missing fields in auth request body")
		logger.WithError(err).Error("unable to authenticate")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	if _, ok := auth["password"]; !ok {
		err := errors.New("missing fields in auth request body")
		logger.WithError(err).Error("unable to authenticate")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	logger = logger.WithField("email", email)

	err = srv.st.Authenticate(email, auth["password"])
	if err != nil {
		logger.WithError(err).Error("unable to authenticate")

		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotAuthenticated) {
			status = http.StatusUnauthorized
		}

		writeErrResp(rw, err, status)
		return
	}

	now := time.Now()
	claims := &jwt.StandardClaims{
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(srv.tokenTTL).Unix(),
		Subject:   email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(srv.jwtsecret)
	if err != nil {
		logger.WithError(err).Error("unable to sign token")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	logger.Debug("issued token")

	writeResp(rw, logger, http.StatusOK, map[string]string{
		"token": token,
	})
}
