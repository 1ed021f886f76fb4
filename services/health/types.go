package health

import "regwatch/services/tracker"

type Service interface {
	Echo()
}

type Impl struct {
	tracker tracker.Service
}
