package insights

import (
	"context"
	"net/http"
)

type Probes interface {
	Handle(pattern string, handler http.Handler)
	Handler() http.Handler
	ListenAndServe()
	Shutdown(ctx context.Context)
}

// Check reports whether a dependency is ready to serve.
type Check func() bool

type Impl struct {
	mux    *http.ServeMux
	server *http.Server
	checks []Check
}
