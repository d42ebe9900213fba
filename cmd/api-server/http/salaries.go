package http

import (
	"errors"
	"io/ioutil"
	"net/http"

	"github.com/run-ci/recurse/org"
)

type salariesResponse struct {
	CompanyID int     `json:"company_id,omitempty"`
	Path      string  `json:"path"`
	Total     float64 `json:"total"`
	Headcount int     `json:"headcount"`
	Depth     int     `json:"depth"`
}

// summarize looks up path under root and aggregates the subtree. The
// error is ready to be sent back with the returned status.
func summarize(root org.Node, path string) (salariesResponse, int, error) {
	n, err := org.Lookup(root, org.SplitPath(path)...)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, org.ErrNotFound) {
			status = http.StatusNotFound
		}

		return salariesResponse{}, status, err
	}

	return salariesResponse{
		Path:      path,
		Total:     org.SumSalaries(n),
		Headcount: org.Headcount(n),
		Depth:     org.Depth(n),
	}, http.StatusOK, nil
}

func handleSumSalaries(rw http.ResponseWriter, req *http.Request) {
	logger := requestLogger(req)

	logger.Debug("reading request body")
	buf, err := ioutil.ReadAll(req.Body)
	if err != nil {
		logger.WithError(err).Error("unable to read request body")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	logger.Debug("decoding org structure")
	root, err := org.DecodeJSON(buf)
	if err != nil {
		logger.WithError(err).Error("unable to decode org structure")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	path := req.URL.Query().Get("path")
	logger = logger.WithField("path", path)

	resp, status, err := summarize(root, path)
	if err != nil {
		logger.WithError(err).Error("unable to summarize salaries")

		writeErrResp(rw, err, status)
		return
	}

	writeResp(rw, logger, http.StatusOK, resp)
}
