package health

import (
	"regwatch/models/constants"
	"regwatch/services/tracker"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

func New(scheduler gocron.Scheduler, cronTab string, tracker tracker.Service) (*Impl, error) {
	service := Impl{tracker: tracker}

	_, errJob := scheduler.NewJob(
		gocron.CronJob(cronTab, false),
		gocron.NewTask(func() { service.Echo() }),
		gocron.WithName("Check app running"),
	)
	if errJob != nil {
		return nil, errJob
	}

	return &service, nil
}

func (service *Impl) Echo() {
	snapshot := service.tracker.Snapshot()
	event := log.Info()
	if snapshot.Status == tracker.StatusFailed {
		event = log.Warn()
	}
	event.
		Str(constants.LogStatus, string(snapshot.Status)).
		Int(constants.LogUpdateNumber, len(snapshot.Updates)).
		Int(constants.LogSourceNumber, len(snapshot.Sources)).
		Time("refreshedAt", snapshot.RefreshedAt).
		Msgf("Application is running")
}
