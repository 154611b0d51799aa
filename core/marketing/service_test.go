package marketing

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/admissions"
)

type memRepo struct {
	pk            int64
	leads         map[int64]FormEntry
	downloadables map[int64]Downloadable
}

func newMemRepo() *memRepo {
	return &memRepo{leads: make(map[int64]FormEntry), downloadables: make(map[int64]Downloadable)}
}

func (r *memRepo) QueryLeads(_ context.Context, filter LeadFilter, _ core.Pagination) ([]FormEntry, int, error) {
	var res []FormEntry
	for _, lead := range r.leads {
		if lead.AcademyID.Int64 == filter.AcademyID {
			res = append(res, lead)
		}
	}
	return res, len(res), nil
}

func (r *memRepo) GetLead(_ context.Context, id int64) (FormEntry, error) {
	if lead, ok := r.leads[id]; ok {
		return lead, nil
	}
	return FormEntry{}, ErrLeadNotFound
}

func (r *memRepo) CreateLead(_ context.Context, lead FormEntry) (FormEntry, error) {
	r.pk++
	lead.ID = r.pk
	r.leads[lead.ID] = lead
	return lead, nil
}

func (r *memRepo) UpdateLead(_ context.Context, lead FormEntry) (FormEntry, error) {
	r.leads[lead.ID] = lead
	return lead, nil
}

func (r *memRepo) QueryDownloadables(_ context.Context, filter DownloadableFilter) ([]Downloadable, error) {
	var res []Downloadable
	for _, dl := range r.downloadables {
		if dl.AcademyID.Int64 == filter.AcademyID && (filter.Active == nil || *filter.Active == dl.Active) {
			res = append(res, dl)
		}
	}
	return res, nil
}

func (r *memRepo) GetDownloadable(_ context.Context, id int64) (Downloadable, error) {
	if dl, ok := r.downloadables[id]; ok {
		return dl, nil
	}
	return Downloadable{}, ErrDownloadableNotFound
}

func (r *memRepo) GetDownloadableBySlug(_ context.Context, slug string) (Downloadable, error) {
	for _, dl := range r.downloadables {
		if dl.Slug == slug {
			return dl, nil
		}
	}
	return Downloadable{}, ErrDownloadableNotFound
}

func (r *memRepo) CreateDownloadable(_ context.Context, dl Downloadable) (Downloadable, error) {
	r.pk++
	dl.ID = r.pk
	r.downloadables[dl.ID] = dl
	return dl, nil
}

func (r *memRepo) UpdateDownloadable(_ context.Context, dl Downloadable) (Downloadable, error) {
	r.downloadables[dl.ID] = dl
	return dl, nil
}

// academy 1 is connected to ActiveCampaign, academy 2 is not
type academyFinder struct {
	admissions.Service
}

func (academyFinder) GetAcademy(_ context.Context, id int64) (admissions.Academy, error) {
	switch id {
	case 1:
		return admissions.Academy{
			ID:                1,
			Slug:              "downtown-miami",
			ActiveCampaignURL: null.StringFrom("https://academy.api-us1.com"),
			ActiveCampaignKey: null.StringFrom("ac-key"),
		}, nil
	case 2:
		return admissions.Academy{ID: 2, Slug: "santiago-chile"}, nil
	}
	return admissions.Academy{}, admissions.ErrAcademyNotFound
}

type fakeAC struct {
	contacts []ACContact
	tags     []ACTag
	accounts []ACAccount
	err      error
}

func (ac *fakeAC) SyncContact(_ context.Context, acc ACAccount, contact ACContact) (ACContact, error) {
	if ac.err != nil {
		return ACContact{}, ac.err
	}
	ac.accounts = append(ac.accounts, acc)
	contact.ID = "1"
	ac.contacts = append(ac.contacts, contact)
	return contact, nil
}

func (ac *fakeAC) CreateTag(_ context.Context, acc ACAccount, tag ACTag) (ACTag, error) {
	if ac.err != nil {
		return ACTag{}, ac.err
	}
	ac.accounts = append(ac.accounts, acc)
	tag.ID = "7"
	ac.tags = append(ac.tags, tag)
	return tag, nil
}

type inlineQueue struct {
	names []string
}

func (q *inlineQueue) Enqueue(name string, task core.Task) error {
	q.names = append(q.names, name)
	return task(context.Background())
}

type logRecorder struct {
	errors []string
}

func (logRecorder) Debug(string, ...interface{}) {}
func (logRecorder) Info(string, ...interface{})  {}
func (logRecorder) Warn(string, ...interface{})  {}
func (l *logRecorder) Error(msg string, _ ...interface{}) {
	l.errors = append(l.errors, msg)
}
func (logRecorder) Fatal(string, ...interface{}) {}

func newTestService() (*service, *memRepo, *fakeAC, *inlineQueue, *logRecorder) {
	repo := newMemRepo()
	ac := new(fakeAC)
	queue := new(inlineQueue)
	logs := new(logRecorder)
	svc := NewService(repo, academyFinder{}, ac, queue, logs).(*service)
	svc.now = func() time.Time { return time.Date(2021, 8, 20, 12, 0, 0, 0, time.UTC) }
	return svc, repo, ac, queue, logs
}

func Test_service_CreateLead(t *testing.T) {
	tests := []struct {
		name       string
		lead       NewLead
		acErr      error
		wantErr    error
		wantStatus string
		wantSynced bool
	}{
		{
			name:    "unknown academy",
			lead:    NewLead{FirstName: "John", Email: "john@doe.com", Academy: 3},
			wantErr: admissions.ErrAcademyNotFound,
		},
		{
			name:       "without academy",
			lead:       NewLead{FirstName: "John", Email: "john@doe.com"},
			wantStatus: StorageError,
		},
		{
			name:       "academy without active campaign",
			lead:       NewLead{FirstName: "John", Email: "john@doe.com", Academy: 2},
			wantStatus: StorageError,
		},
		{
			name:       "active campaign failure",
			lead:       NewLead{FirstName: "John", Email: "john@doe.com", Academy: 1},
			acErr:      errors.New("ac is down"),
			wantStatus: StorageError,
		},
		{
			name:       "persisted",
			lead:       NewLead{FirstName: "John", LastName: "Doe", Email: "john@doe.com", Academy: 1, Tags: "website-lead"},
			wantStatus: StoragePersisted,
			wantSynced: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, ac, queue, logs := newTestService()
			ac.err = tt.acErr

			lead, err := svc.CreateLead(context.Background(), tt.lead)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.Empty(t, queue.names)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"persist_lead"}, queue.names)
			assert.Equal(t, tt.wantStatus, lead.StorageStatus)
			assert.Equal(t, "en", lead.Language)

			if tt.wantSynced {
				assert.Empty(t, logs.errors)
				require.Len(t, ac.contacts, 1)
				assert.Equal(t, ACContact{ID: "1", Email: "john@doe.com", FirstName: "John", LastName: "Doe"}, ac.contacts[0])
				assert.Equal(t, []ACAccount{{URL: "https://academy.api-us1.com", Key: "ac-key"}}, ac.accounts)
			} else {
				assert.Empty(t, ac.contacts)
				assert.Len(t, logs.errors, 1)
			}
		})
	}
}

func TestFormEntry_TagList(t *testing.T) {
	assert.Nil(t, FormEntry{}.TagList())
	assert.Equal(t, []string{"website-lead", "bogota"}, FormEntry{Tags: " website-lead, ,bogota"}.TagList())
}

func Test_service_SaveDownloadable(t *testing.T) {
	ctx := context.Background()

	t.Run("with active campaign academy", func(t *testing.T) {
		svc, repo, ac, queue, _ := newTestService()

		dl, err := svc.SaveDownloadable(ctx, 1, 5, NewDownloadable{
			Slug:           "intro-to-python",
			Name:           "Intro to Python",
			DestinationURL: "https://academy.test/intro.pdf",
		})
		require.NoError(t, err)
		assert.True(t, dl.Active)
		assert.Equal(t, null.Int64From(1), dl.AcademyID)
		assert.Equal(t, null.Int64From(5), dl.AuthorID)
		assert.Equal(t, []string{"add_downloadable_slug_as_acp_tag"}, queue.names)
		assert.Equal(t, []ACTag{{ID: "7", Tag: "intro-to-python", TagType: "contact", Description: "Downloadable intro-to-python"}}, ac.tags)

		// saving the same slug updates it
		active := false
		updated, err := svc.SaveDownloadable(ctx, 1, 5, NewDownloadable{
			Slug:           "intro-to-python",
			Name:           "Intro to Python 3",
			DestinationURL: "https://academy.test/intro.pdf",
			Active:         &active,
		})
		require.NoError(t, err)
		assert.Equal(t, dl.ID, updated.ID)
		assert.False(t, updated.Active)
		assert.Len(t, repo.downloadables, 1)
		assert.Len(t, queue.names, 2)

		_, err = svc.SaveDownloadable(ctx, 2, 5, NewDownloadable{Slug: "intro-to-python", Name: "Stolen"})
		assert.Equal(t, ErrDownloadableOfOther, err)
	})

	t.Run("without active campaign academy", func(t *testing.T) {
		svc, _, ac, queue, _ := newTestService()

		_, err := svc.SaveDownloadable(ctx, 2, 0, NewDownloadable{Slug: "cheatsheet", Name: "Cheatsheet", DestinationURL: "https://academy.test/c.pdf"})
		require.NoError(t, err)
		assert.Empty(t, queue.names)
		assert.Empty(t, ac.tags)
	})
}

func Test_service_AddDownloadableSlugAsTag(t *testing.T) {
	svc, repo, ac, _, logs := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.AddDownloadableSlugAsTag(ctx, 99, 1))
	assert.Equal(t, []string{"Downloadable 99 not found"}, logs.errors)

	dl, err := repo.CreateDownloadable(ctx, Downloadable{Slug: "cheatsheet"})
	require.NoError(t, err)

	require.NoError(t, svc.AddDownloadableSlugAsTag(ctx, dl.ID, 2))
	assert.Equal(t, "ActiveCampaign academy 2 not found", logs.errors[1])
	assert.Empty(t, ac.tags)

	ac.err = errors.New("ac is down")
	assert.Error(t, svc.AddDownloadableSlugAsTag(ctx, dl.ID, 1))
}
