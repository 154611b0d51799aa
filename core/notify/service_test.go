package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

type memRepo struct {
	sessions map[int64]MentorshipSession
}

func (r *memRepo) GetSession(_ context.Context, academyID, id int64) (MentorshipSession, error) {
	if s, ok := r.sessions[id]; ok && (academyID == 0 || s.AcademyID == academyID) {
		return s, nil
	}
	return MentorshipSession{}, ErrSessionNotFound
}

func (r *memRepo) UpdateSession(_ context.Context, s MentorshipSession) (MentorshipSession, error) {
	r.sessions[s.ID] = s
	return s, nil
}

type userFinder struct {
	user.Service
}

func (userFinder) GetByID(_ context.Context, id int64) (user.User, error) {
	switch id {
	case 1:
		return user.User{ID: 1, Email: "mentor@academy.test", FirstName: "Jane", LastName: "Doe"}, nil
	case 2:
		return user.User{ID: 2, Email: "mentee@academy.test", FirstName: "John", LastName: "Doe"}, nil
	}
	return user.User{}, user.ErrNotFound
}

type mailRecorder struct {
	messages []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.messages = append(m.messages, messages...)
}

type inlineQueue struct {
	names []string
}

func (q *inlineQueue) Enqueue(name string, task core.Task) error {
	q.names = append(q.names, name)
	return task(context.Background())
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var testNow = time.Date(2021, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestService() (*service, *memRepo, *mailRecorder, *inlineQueue) {
	repo := &memRepo{sessions: map[int64]MentorshipSession{
		1: {ID: 1, Name: "Intro to React", Status: SessionPending, MentorID: 1, MenteeID: null.Int64From(2), AcademyID: 1},
		2: {ID: 2, Name: "Office hours", Status: SessionPending, MentorID: 1, AcademyID: 1, OnlineMeetingURL: null.StringFrom("https://meet.test/abc")},
	}}
	mails := new(mailRecorder)
	queue := new(inlineQueue)
	conf := &core.Config{APIURL: "https://api.academy.test"}
	svc := NewService(repo, userFinder{}, mails, queue, nopLogger{}, conf).(*service)
	svc.now = func() time.Time { return testNow }
	return svc, repo, mails, queue
}

func Test_service_Preview(t *testing.T) {
	svc, _, _, _ := newTestService()

	for slug := range samples {
		t.Run(slug, func(t *testing.T) {
			preview, err := svc.Preview(slug)
			require.NoError(t, err)
			assert.Equal(t, slug, preview.Slug)
			assert.NotEmpty(t, preview.Text)
			assert.Contains(t, preview.HTML, "<html")
		})
	}

	preview, err := svc.Preview("negative_answer")
	require.NoError(t, err)
	assert.Contains(t, preview.Text, "Score: 5")
	assert.Equal(t, "A student answered with a bad NPS score at 4Geeks Academy", preview.Subject)

	_, err = svc.Preview("unknown")
	assert.Equal(t, ErrTemplateNotFound, err)
}

func Test_service_UpdateSessionStatus(t *testing.T) {
	tests := []struct {
		name      string
		academyID int64
		id        int64
		status    string
		wantErr   error
		wantLink  string
		wantMails int
	}{
		{name: "other academy", academyID: 2, id: 1, status: SessionStarted, wantErr: ErrSessionNotFound},
		{name: "completed", academyID: 1, id: 1, status: SessionCompleted},
		{name: "started", academyID: 1, id: 1, status: SessionStarted, wantMails: 1, wantLink: "https://api.academy.test/mentor/session/1"},
		{name: "started with meeting url", academyID: 1, id: 2, status: SessionStarted, wantMails: 1, wantLink: "https://meet.test/abc"},
		{name: "unchanged", academyID: 1, id: 1, status: SessionPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, mails, queue := newTestService()

			session, err := svc.UpdateSessionStatus(context.Background(), tt.academyID, tt.id, UpdateSession{Status: tt.status})
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, session.Status)
			assert.Equal(t, session, repo.sessions[tt.id])
			require.Len(t, mails.messages, tt.wantMails)
			if tt.wantMails == 0 {
				assert.Empty(t, queue.names)
				return
			}

			assert.Equal(t, []string{"send_mentorship_starting_notification"}, queue.names)
			assert.Equal(t, null.TimeFrom(testNow), session.StartedAt)
			msg := mails.messages[0]
			assert.Equal(t, "mentor@academy.test", msg.To[0].Address)
			assert.Equal(t, "mentorship_starting", msg.TemplateName)
			data := msg.TemplateData.(map[string]interface{})
			assert.Equal(t, "Jane Doe", data["MENTOR_NAME"])
			assert.Equal(t, tt.wantLink, data["LINK"])
		})
	}
}

func Test_service_SendMentorshipStarting(t *testing.T) {
	svc, _, mails, _ := newTestService()

	require.NoError(t, svc.SendMentorshipStarting(context.Background(), 99))
	assert.Empty(t, mails.messages)

	require.NoError(t, svc.SendMentorshipStarting(context.Background(), 2))
	require.Len(t, mails.messages, 1)
	assert.Equal(t, "A mentee", mails.messages[0].TemplateData.(map[string]interface{})["MENTEE_NAME"])
}
