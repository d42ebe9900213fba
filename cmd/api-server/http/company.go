package http

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"

	"github.com/run-ci/recurse/org"
	"github.com/run-ci/recurse/store"
	"github.com/sirupsen/logrus"
)

type companyEvent struct {
	Op        string  `json:"op"`
	CompanyID int     `json:"company_id"`
	Name      string  `json:"name"`
	Total     float64 `json:"total"`
}

func (srv *Server) handleCreateCompany(rw http.ResponseWriter, req *http.Request) {
	reqSub := req.Context().Value(keyReqSub).(string)
	logger := requestLogger(req)

	logger.Debug("reading request body")
	buf, err := ioutil.ReadAll(req.Body)
	if err != nil {
		logger.WithError(err).Error("unable to read request body")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	logger.Debug("unmarshaling request body")
	var c store.Company
	err = json.Unmarshal(buf, &c)
	if err != nil {
		logger.WithError(err).Error("unable to unmarshal request body")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	if c.Name == "" {
		err := errors.New("missing field 'name' in request body")
		logger.WithError(err).Error("unable to create company")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	if c.Root() == nil {
		err := errors.New("missing field 'structure' in request body")
		logger.WithError(err).Error("unable to create company")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	c.Owner = reqSub
	logger = logger.WithField("company", c.Name)

	logger.Info("saving company")
	err = srv.st.CreateCompany(&c)
	if err != nil {
		logger.WithError(err).Error("unable to save company in database")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	rawmsg, err := json.Marshal(companyEvent{
		Op:        "create",
		CompanyID: c.ID,
		Name:      c.Name,
		Total:     org.SumSalaries(c.Root()),
	})
	if err != nil {
		logger.WithError(err).Warn("unable to marshal company create event")
	} else {
		// Failing to publish the event doesn't fail the request.
		go sendWithBackoff(logger, srv.eventch, rawmsg)
	}

	writeResp(rw, logger, http.StatusAccepted, c)
}

func (srv *Server) handleGetCompanies(rw http.ResponseWriter, req *http.Request) {
	reqSub := req.Context().Value(keyReqSub).(string)
	logger := requestLogger(req)

	logger.Debug("retrieving companies from store")

	cs, err := srv.st.GetCompanies(reqSub)
	if err != nil {
		logger.WithError(err).Error("unable to retrieve companies")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	writeResp(rw, logger, http.StatusOK, cs)
}

// getCompany loads the company named by the "id" path variable, writing
// the error response itself when that fails.
func (srv *Server) getCompany(rw http.ResponseWriter, req *http.Request) (store.Company, bool) {
	reqSub := req.Context().Value(keyReqSub).(string)
	logger := requestLogger(req)

	logger.Debug("parsing id")

	id, err := intVar(req, "id")
	if err != nil {
		logger.WithError(err).Error("unable to parse company id as integer")

		writeErrResp(rw, err, http.StatusBadRequest)
		return store.Company{}, false
	}

	logger = logger.WithField("company_id", id)
	logger.Debug("retrieving company from store")

	c, err := srv.st.GetCompany(reqSub, id)
	if err != nil {
		logger.WithError(err).Error("unable to retrieve company")

		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrCompanyNotFound) {
			status = http.StatusNotFound
		}

		writeErrResp(rw, err, status)
		return c, false
	}

	return c, true
}

func (srv *Server) handleGetCompany(rw http.ResponseWriter, req *http.Request) {
	c, ok := srv.getCompany(rw, req)
	if !ok {
		return
	}

	writeResp(rw, requestLogger(req).WithField("company_id", c.ID), http.StatusOK, c)
}

func (srv *Server) handleGetCompanySalaries(rw http.ResponseWriter, req *http.Request) {
	c, ok := srv.getCompany(rw, req)
	if !ok {
		return
	}

	path := req.URL.Query().Get("path")
	logger := requestLogger(req).WithFields(logrus.Fields{
		"company_id": c.ID,
		"path":       path,
	})

	resp, status, err := summarize(c.Root(), path)
	if err != nil {
		logger.WithError(err).Error("unable to summarize salaries")

		writeErrResp(rw, err, status)
		return
	}

	resp.CompanyID = c.ID

	logger.WithField("total", resp.Total).Debug("summarized salaries")

	writeResp(rw, logger, status, resp)
}
