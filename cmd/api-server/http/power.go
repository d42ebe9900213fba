package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/run-ci/recurse/power"
	"github.com/sirupsen/logrus"
)

type powerResponse struct {
	X         float64  `json:"x"`
	N         int      `json:"n"`
	Iterative float64  `json:"iterative"`
	Recursive float64  `json:"recursive"`
	Depth     int      `json:"depth"`
	Steps     []string `json:"steps"`
}

// maxExponent keeps a request from recursing arbitrarily deep.
const maxExponent = 10000

func handleGetPower(rw http.ResponseWriter, req *http.Request) {
	logger := requestLogger(req)

	q := req.URL.Query()

	logger.Debug("parsing x")

	x, err := strconv.ParseFloat(q.Get("x"), 64)
	if err != nil {
		logger.WithError(err).Error("unable to parse x as a number")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	logger.Debug("parsing n")

	n, err := strconv.Atoi(q.Get("n"))
	if err != nil {
		logger.WithError(err).Error("unable to parse n as integer")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(logrus.Fields{
		"x": x,
		"n": n,
	})

	if n > maxExponent {
		err := errors.New("n must be at most " + strconv.Itoa(maxExponent))
		logger.WithError(err).Error("refusing exponent")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	res, err := power.Trace(x, n)
	if err != nil {
		logger.WithError(err).Error("unable to compute power")

		status := http.StatusInternalServerError
		if errors.Is(err, power.ErrExponent) {
			status = http.StatusBadRequest
		}

		writeErrResp(rw, err, status)
		return
	}

	writeResp(rw, logger, http.StatusOK, powerResponse{
		X:         x,
		N:         n,
		Iterative: power.Iterative(x, n),
		Recursive: res.Value,
		Depth:     res.Depth,
		Steps:     res.Steps(),
	})
}
