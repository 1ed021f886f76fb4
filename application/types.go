package application

import (
	"context"

	"regwatch/repositories/feedsources"
	"regwatch/services/api"
	"regwatch/services/categorizer"
	"regwatch/services/health"
	"regwatch/services/telegram"
	"regwatch/services/tracker"
	databases "regwatch/utils/databases"
	"regwatch/utils/insights"

	"github.com/go-co-op/gocron/v2"
)

type Application interface {
	Run()
	Shutdown()
}

// Core is the refresh pipeline without any scheduling or outer surface.
type Core struct {
	DB             databases.SqlConnection
	FeedSourceRepo feedsources.Repository
	Categorizer    categorizer.Service
	Tracker        *tracker.Impl
}

type Impl struct {
	*Core
	ctx             context.Context
	cancel          context.CancelFunc
	scheduler       gocron.Scheduler
	healthService   health.Service
	apiService      api.Service
	telegramService telegram.Service
	probes          insights.Probes
}
