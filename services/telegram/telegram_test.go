package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/pkg/observer"
	"regwatch/services/categorizer"
	"regwatch/services/filter"
	"regwatch/services/tracker"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)

type sentMessage struct {
	chatID int64
	text   string
	opts   *gotgbot.SendMessageOpts
}

type fakeSender struct {
	sent []sentMessage
}

func (s *fakeSender) SendMessage(chatID int64, text string, opts *gotgbot.SendMessageOpts) (*gotgbot.Message, error) {
	s.sent = append(s.sent, sentMessage{chatID: chatID, text: text, opts: opts})
	return &gotgbot.Message{}, nil
}

type fakeRepo struct {
	users []entities.TelegramUser
	err   error
}

func (r *fakeRepo) FetchAll() ([]entities.TelegramUser, error) { return r.users, r.err }
func (r *fakeRepo) Delete(entities.TelegramUser) error { return r.err }
func (r *fakeRepo) SaveOrUpdate(user entities.TelegramUser) error {
	if r.err != nil {
		return r.err
	}
	r.users = append(r.users, user)
	return nil
}

type fakeTracker struct {
	snapshot tracker.Snapshot
}

func (t *fakeTracker) RegisterObserver(observer.Observer) {}
func (t *fakeTracker) Refresh(context.Context) tracker.Snapshot { return t.snapshot }
func (t *fakeTracker) Snapshot() tracker.Snapshot { return t.snapshot }
func (t *fakeTracker) Query(state entities.FilterState, page int) tracker.QueryResult {
	filtered := filter.Apply(t.snapshot.Updates, state)
	return tracker.QueryResult{
		Status:   t.snapshot.Status,
		Summary:  filter.Summary(len(filtered), len(t.snapshot.Updates)),
		Total:    len(t.snapshot.Updates),
		Filtered: len(filtered),
		Page:     filter.Paginate(filtered, page, filter.DefaultPageSize),
	}
}

func updates() []entities.RegulatoryUpdate {
	return []entities.RegulatoryUpdate{
		{ID: "a", Title: "OFAC designates <network>", Link: "https://example.gov/a", PubDate: now,
			Source: "fincen", SourceLabel: "FinCEN", Categories: []entities.Topic{constants.TopicSanctions}},
		{ID: "b", Title: "Mortgage servicing rule", Link: "https://example.gov/b", PubDate: now.Add(-24 * time.Hour),
			Source: "cfpb", SourceLabel: "CFPB", Categories: []entities.Topic{constants.TopicMortgageRESPA}},
		{ID: "c", Title: "Cease and desist order", PubDate: now.Add(-72 * time.Hour),
			Source: "occ", SourceLabel: "OCC", Categories: []entities.Topic{constants.TopicEnforcement, constants.TopicSanctions}},
	}
}

func newTestService(repo *fakeRepo, snapshot tracker.Snapshot, limit int) (*Impl, *fakeSender) {
	sender := &fakeSender{}
	service := newService(sender, repo, &fakeTracker{snapshot: snapshot},
		categorizer.New(constants.GetTopicTable()), limit)
	return service, sender
}

func TestNewWithoutToken(t *testing.T) {
	_, err := New("", &fakeRepo{}, &fakeTracker{}, categorizer.New(constants.GetTopicTable()), 10)
	assert.ErrorIs(t, err, ErrTokenIsMissing)
}

func TestOnNotifyFiltersBySubscriberTopic(t *testing.T) {
	repo := &fakeRepo{users: []entities.TelegramUser{
		{ChatID: 1},
		{ChatID: 2, Topic: string(constants.TopicSanctions)},
		{ChatID: 3, Topic: string(constants.TopicFairLending)},
	}}
	service, sender := newTestService(repo, tracker.Snapshot{}, 10)

	service.OnNotify(observer.NewUpdates(updates()))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(1), sender.sent[0].chatID)
	assert.Contains(t, sender.sent[0].text, "Mortgage servicing rule")
	assert.Equal(t, "HTML", sender.sent[0].opts.ParseMode)

	assert.Equal(t, int64(2), sender.sent[1].chatID)
	assert.Contains(t, sender.sent[1].text, "Cease and desist order")
	assert.NotContains(t, sender.sent[1].text, "Mortgage servicing rule")
}

func TestOnNotifyRespectsLimit(t *testing.T) {
	repo := &fakeRepo{users: []entities.TelegramUser{{ChatID: 1}}}
	service, sender := newTestService(repo, tracker.Snapshot{}, 1)

	service.OnNotify(observer.NewUpdates(updates()))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].text, "OFAC designates")
	assert.NotContains(t, sender.sent[0].text, "Mortgage servicing rule")
}

func TestOnNotifyRefreshFailedSendsNothing(t *testing.T) {
	repo := &fakeRepo{users: []entities.TelegramUser{{ChatID: 1}}}
	service, sender := newTestService(repo, tracker.Snapshot{}, 10)

	service.OnNotify(observer.RefreshFailed())
	assert.Empty(t, sender.sent)

	repo.err = errors.New("db down")
	service.OnNotify(observer.NewUpdates(updates()))
	assert.Empty(t, sender.sent)
}

func TestLatest(t *testing.T) {
	service, _ := newTestService(&fakeRepo{}, tracker.Snapshot{Status: tracker.StatusReady, Updates: updates()}, 10)

	all := service.latest("", now)
	assert.Contains(t, all, "3 updates")
	assert.Contains(t, all, "OFAC designates &lt;network&gt;")
	assert.Contains(t, all, `<a href="https://example.gov/a">`)
	assert.Contains(t, all, "Yesterday")
	assert.Contains(t, all, "3 days ago")

	sanctions := service.latest("sanctions", now)
	assert.Contains(t, sanctions, "2 of 3 updates")
	assert.NotContains(t, sanctions, "Mortgage servicing rule")

	assert.Contains(t, service.latest("astrology", now), "Unknown topic")
}

func TestLatestWithoutLimit(t *testing.T) {
	service, _ := newTestService(&fakeRepo{}, tracker.Snapshot{Status: tracker.StatusReady, Updates: updates()}, 0)

	msg := service.latest("", now)

	assert.Contains(t, msg, "OFAC designates")
	assert.Contains(t, msg, "Mortgage servicing rule")
	assert.Contains(t, msg, "Cease and desist order")
	assert.Len(t, selectFor(entities.TelegramUser{ChatID: 1}, updates(), 0), 3)
}

func TestLatestBeforeReady(t *testing.T) {
	loading, _ := newTestService(&fakeRepo{}, tracker.Snapshot{Status: tracker.StatusLoading}, 10)
	assert.Equal(t, loadingMessage(), loading.latest("", now))

	failed, _ := newTestService(&fakeRepo{}, tracker.Snapshot{Status: tracker.StatusFailed}, 10)
	assert.Equal(t, failedMessage(), failed.latest("", now))
}

func TestSubscribe(t *testing.T) {
	repo := &fakeRepo{}
	service, _ := newTestService(repo, tracker.Snapshot{}, 10)

	assert.Contains(t, service.subscribe(42, "analyst", "fair lending"), "Fair Lending")
	require.Len(t, repo.users, 1)
	assert.Equal(t, entities.TelegramUser{ChatID: 42, Name: "analyst", Topic: "Fair Lending"}, repo.users[0])

	assert.Contains(t, service.subscribe(43, "", "unknown"), "Unknown topic")
	assert.Len(t, repo.users, 1)

	repo.err = errors.New("db down")
	assert.Equal(t, unknownMessage(), service.subscribe(44, "", ""))
}

func TestSourcesMessage(t *testing.T) {
	snapshot := tracker.Snapshot{
		Status:      tracker.StatusReady,
		RefreshedAt: now.Add(-3 * time.Minute),
		Sources: []tracker.SourceStatus{
			{Label: "CFPB", Updates: 12},
			{Label: "OCC", Updates: 4, FromCache: true},
			{Label: "FRB"},
		},
	}

	msg := sourcesMessage(snapshot, now)

	assert.Contains(t, msg, "refreshed 3 minutes ago")
	assert.Contains(t, msg, "✅ <b>CFPB</b>: 12 updates")
	assert.Contains(t, msg, "💾 <b>OCC</b>: 4 updates")
	assert.Contains(t, msg, "❌ <b>FRB</b>: 0 updates")
	assert.Equal(t, loadingMessage(), sourcesMessage(tracker.Snapshot{Status: tracker.StatusLoading}, now))
}

func TestUpdatesMessageEmpty(t *testing.T) {
	assert.Contains(t, updatesMessage("Latest updates", "0 of 3 updates", nil, now), "No updates match.")
}

func TestHelpMessageListsTopics(t *testing.T) {
	msg := helpMessage(constants.GetTopicTable().Topics())
	assert.Contains(t, msg, "BSA/AML")
	assert.Contains(t, msg, "Cybersecurity/Privacy")
}
