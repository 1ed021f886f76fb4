package api

import (
	"errors"
	"net/http"

	"regwatch/repositories/feedsources"
	"regwatch/services/categorizer"
	"regwatch/services/tracker"
)

var (
	ErrInvalidPage   = errors.New("page must be a positive integer")
	ErrUnknownSource = errors.New("unknown source")
)

type Service interface {
	Handler() http.Handler
}

type Impl struct {
	tracker        tracker.Service
	feedSourceRepo feedsources.Repository
	categorizer    categorizer.Service
}

type errorResponse struct {
	Error string `json:"error"`
}
