package marketing

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/admissions"
)

var (
	// errors
	ErrLeadNotFound         = core.NewNotFoundError("lead-not-found")
	ErrDownloadableNotFound = core.NewNotFoundError("downloadable-not-found")
	ErrDownloadableOfOther  = core.NewSlugValidationError("downloadable-of-other-academy")
	errNoActiveCampaign     = errors.New("Academy has no active campaign settings")
)

type (
	Repository interface {
		QueryLeads(ctx context.Context, filter LeadFilter, page core.Pagination) ([]FormEntry, int, error)
		GetLead(ctx context.Context, id int64) (FormEntry, error)
		CreateLead(ctx context.Context, lead FormEntry) (FormEntry, error)
		UpdateLead(ctx context.Context, lead FormEntry) (FormEntry, error)

		QueryDownloadables(ctx context.Context, filter DownloadableFilter) ([]Downloadable, error)
		GetDownloadable(ctx context.Context, id int64) (Downloadable, error)
		GetDownloadableBySlug(ctx context.Context, slug string) (Downloadable, error)
		CreateDownloadable(ctx context.Context, dl Downloadable) (Downloadable, error)
		UpdateDownloadable(ctx context.Context, dl Downloadable) (Downloadable, error)
	}

	// ActiveCampaign is the CRM leads and tags are pushed to.
	ActiveCampaign interface {
		SyncContact(ctx context.Context, acc ACAccount, contact ACContact) (ACContact, error)
		CreateTag(ctx context.Context, acc ACAccount, tag ACTag) (ACTag, error)
	}

	Service interface {
		// CreateLead saves the lead and queues its storage in the academy CRM.
		CreateLead(ctx context.Context, nl NewLead) (FormEntry, error)
		PersistLead(ctx context.Context, id int64) error
		QueryLeads(ctx context.Context, filter LeadFilter, page core.Pagination) ([]FormEntry, int, error)

		QueryDownloadables(ctx context.Context, filter DownloadableFilter) ([]Downloadable, error)
		GetDownloadable(ctx context.Context, slug string) (Downloadable, error)
		// SaveDownloadable creates or updates the downloadable identified by its slug.
		SaveDownloadable(ctx context.Context, academyID, authorID int64, nd NewDownloadable) (Downloadable, error)
		AddDownloadableSlugAsTag(ctx context.Context, downloadableID, academyID int64) error
	}

	service struct {
		repo   Repository
		admSvc admissions.Service
		ac     ActiveCampaign
		tasks  core.TaskQueue
		logger core.Logger
		now    func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	admSvc admissions.Service,
	ac ActiveCampaign,
	tasks core.TaskQueue,
	logger core.Logger,
) Service {
	return &service{
		repo:   repo,
		admSvc: admSvc,
		ac:     ac,
		tasks:  tasks,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func account(academy admissions.Academy) (ACAccount, error) {
	if !academy.HasActiveCampaign() {
		return ACAccount{}, errNoActiveCampaign
	}
	return ACAccount{URL: academy.ActiveCampaignURL.String, Key: academy.ActiveCampaignKey.String}, nil
}

// Leads

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func (svc *service) CreateLead(ctx context.Context, nl NewLead) (FormEntry, error) {
	if nl.Academy != 0 {
		if _, err := svc.admSvc.GetAcademy(ctx, nl.Academy); err != nil {
			return FormEntry{}, err
		}
	}

	now := svc.now()
	lead := FormEntry{
		FirstName:      nl.FirstName,
		LastName:       nl.LastName,
		Email:          nullString(nl.Email),
		Phone:          nullString(nl.Phone),
		Course:         nullString(nl.Course),
		Location:       nullString(nl.Location),
		Language:       "en",
		UTMURL:         nullString(nl.UTMURL),
		UTMMedium:      nullString(nl.UTMMedium),
		UTMCampaign:    nullString(nl.UTMCampaign),
		UTMSource:      nullString(nl.UTMSource),
		ReferralKey:    nullString(nl.ReferralKey),
		Tags:           nl.Tags,
		ClientComments: nullString(nl.ClientComments),
		StorageStatus:  StoragePending,
		AcademyID:      null.NewInt64(nl.Academy, nl.Academy != 0),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if nl.Language != "" {
		lead.Language = nl.Language
	}

	lead, err := svc.repo.CreateLead(ctx, lead)
	if err != nil {
		return FormEntry{}, errors.Wrap(err, "creating lead")
	}
	leadID := lead.ID
	err = svc.tasks.Enqueue("persist_lead", func(ctx context.Context) error {
		return svc.PersistLead(ctx, leadID)
	})
	if err != nil {
		svc.logger.Error("could not queue lead persistence", err, map[string]interface{}{"lead": leadID})
	}
	return svc.repo.GetLead(ctx, leadID)
}

// PersistLead pushes the lead to the ActiveCampaign account of its academy.
// The outcome is kept in the lead storage status.
func (svc *service) PersistLead(ctx context.Context, id int64) error {
	lead, err := svc.repo.GetLead(ctx, id)
	if err != nil {
		return err
	}

	if err = svc.syncLead(ctx, lead); err != nil {
		svc.logger.Error(fmt.Sprintf("Error storing lead %d", lead.ID), err)
		lead.StorageStatus = StorageError
	} else {
		lead.StorageStatus = StoragePersisted
	}
	lead.UpdatedAt = svc.now()
	if _, err = svc.repo.UpdateLead(ctx, lead); err != nil {
		return errors.Wrap(err, "updating lead")
	}
	return nil
}

func (svc *service) syncLead(ctx context.Context, lead FormEntry) error {
	if !lead.AcademyID.Valid {
		return errors.New("Missing academy of the lead")
	}
	if !lead.Email.Valid {
		return errors.New("Missing email of the lead")
	}
	academy, err := svc.admSvc.GetAcademy(ctx, lead.AcademyID.Int64)
	if err != nil {
		return err
	}
	acc, err := account(academy)
	if err != nil {
		return err
	}
	_, err = svc.ac.SyncContact(ctx, acc, ACContact{
		Email:     lead.Email.String,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Phone:     lead.Phone.String,
	})
	return err
}

func (svc *service) QueryLeads(ctx context.Context, filter LeadFilter, page core.Pagination) ([]FormEntry, int, error) {
	return svc.repo.QueryLeads(ctx, filter, page)
}

// Downloadables

func (svc *service) QueryDownloadables(ctx context.Context, filter DownloadableFilter) ([]Downloadable, error) {
	return svc.repo.QueryDownloadables(ctx, filter)
}

func (svc *service) GetDownloadable(ctx context.Context, slug string) (Downloadable, error) {
	return svc.repo.GetDownloadableBySlug(ctx, slug)
}

func (svc *service) SaveDownloadable(ctx context.Context, academyID, authorID int64, nd NewDownloadable) (Downloadable, error) {
	now := svc.now()
	dl, err := svc.repo.GetDownloadableBySlug(ctx, nd.Slug)
	switch {
	case err == nil:
		if dl.AcademyID.Valid && dl.AcademyID.Int64 != academyID {
			return Downloadable{}, ErrDownloadableOfOther
		}
	case core.IsNotFound(err):
		dl = Downloadable{Slug: nd.Slug, Active: true, CreatedAt: now}
	default:
		return Downloadable{}, errors.Wrap(err, "getting downloadable")
	}

	dl.Name = nd.Name
	dl.DestinationURL = nd.DestinationURL
	dl.PreviewURL = nd.PreviewURL
	if nd.Active != nil {
		dl.Active = *nd.Active
	}
	dl.AcademyID = null.Int64From(academyID)
	dl.AuthorID = null.NewInt64(authorID, authorID != 0)
	dl.UpdatedAt = now
	if dl.ID == 0 {
		dl, err = svc.repo.CreateDownloadable(ctx, dl)
	} else {
		dl, err = svc.repo.UpdateDownloadable(ctx, dl)
	}
	if err != nil {
		return Downloadable{}, errors.Wrap(err, "saving downloadable")
	}

	academy, err := svc.admSvc.GetAcademy(ctx, academyID)
	if err != nil {
		return Downloadable{}, err
	}
	if academy.HasActiveCampaign() {
		dlID := dl.ID
		err = svc.tasks.Enqueue("add_downloadable_slug_as_acp_tag", func(ctx context.Context) error {
			return svc.AddDownloadableSlugAsTag(ctx, dlID, academyID)
		})
		if err != nil {
			svc.logger.Error("could not queue downloadable tag", err, map[string]interface{}{"downloadable": dlID})
		}
	}
	return dl, nil
}

// AddDownloadableSlugAsTag creates a tag named after the downloadable in the academy CRM.
func (svc *service) AddDownloadableSlugAsTag(ctx context.Context, downloadableID, academyID int64) error {
	dl, err := svc.repo.GetDownloadable(ctx, downloadableID)
	if err != nil {
		if core.IsNotFound(err) {
			svc.logger.Error(fmt.Sprintf("Downloadable %d not found", downloadableID))
			return nil
		}
		return err
	}
	academy, err := svc.admSvc.GetAcademy(ctx, academyID)
	if err != nil {
		return err
	}
	acc, err := account(academy)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("ActiveCampaign academy %d not found", academyID))
		return nil
	}

	tag, err := svc.ac.CreateTag(ctx, acc, ACTag{
		Tag:         dl.Slug,
		TagType:     "contact",
		Description: "Downloadable " + dl.Slug,
	})
	if err != nil {
		return errors.Wrapf(err, "creating tag %s", dl.Slug)
	}
	svc.logger.Info(fmt.Sprintf("Tag %s created with id %s", tag.Tag, tag.ID))
	return nil
}
