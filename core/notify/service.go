package notify

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

var (
	// errors
	ErrTemplateNotFound = core.NewNotFoundError("template-not-found")
	ErrSessionNotFound  = core.NewNotFoundError("session-not-found")
)

// samples holds the data templates are previewed with.
var samples = map[string]map[string]interface{}{
	"password_reset": {
		"Name":  "John Doe",
		"UID":   "MQ",
		"Token": "5s3-b1a7e3b2c9d4f6a8",
	},
	"nps_survey": {
		"SUBJECT":   "How likely are you to recommend 4Geeks Academy to your friends and family?",
		"FULL_NAME": "John Doe",
		"QUESTION":  "How likely are you to recommend 4Geeks Academy to your friends and family?",
		"LINK":      "https://4geeks.com/feedback/survey/1",
	},
	"negative_answer": {
		"SUBJECT":   "A student answered with a bad NPS score at 4Geeks Academy",
		"FULL_NAME": "John Doe",
		"QUESTION":  "How likely are you to recommend 4Geeks Academy to your friends and family?",
		"SCORE":     5,
		"COMMENTS":  "The classes are too fast",
		"ACADEMY":   "4Geeks Academy",
		"LINK":      "https://admin.4geeks.com/feedback/surveys/downtown-miami/1",
	},
	"mentorship_starting": {
		"SUBJECT":     "Mentoring session starting",
		"MENTOR_NAME": "Jane Doe",
		"MENTEE_NAME": "John Doe",
		"SESSION":     "Intro to React",
		"LINK":        "https://meet.4geeks.com/intro-to-react",
	},
}

type (
	Repository interface {
		// GetSession returns ErrSessionNotFound if the session does not belong to academyID (unless academyID is 0).
		GetSession(ctx context.Context, academyID, id int64) (MentorshipSession, error)
		UpdateSession(ctx context.Context, session MentorshipSession) (MentorshipSession, error)
	}

	Service interface {
		// Preview renders a template with sample data.
		Preview(slug string) (Preview, error)

		GetSession(ctx context.Context, academyID, id int64) (MentorshipSession, error)
		// UpdateSessionStatus notifies the mentor when the session starts.
		UpdateSessionStatus(ctx context.Context, academyID, id int64, us UpdateSession) (MentorshipSession, error)
		SendMentorshipStarting(ctx context.Context, sessionID int64) error
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		mailSvc core.EmailService
		tasks   core.TaskQueue
		logger  core.Logger
		conf    *core.Config
		now     func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	usrSvc user.Service,
	mailSvc core.EmailService,
	tasks core.TaskQueue,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		repo:    repo,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
		tasks:   tasks,
		logger:  logger,
		conf:    conf,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (svc *service) Preview(slug string) (Preview, error) {
	data, ok := samples[slug]
	if !ok || !core.HasEmailTemplate(slug) {
		return Preview{}, ErrTemplateNotFound
	}

	subject, _ := data["SUBJECT"].(string)
	msg := &core.EmailMessage{Subject: subject, TemplateName: slug, TemplateData: data}
	if err := msg.Render(); err != nil {
		return Preview{}, errors.Wrapf(err, "rendering %s", slug)
	}
	return Preview{Slug: slug, Subject: subject, Text: msg.TextContent, HTML: msg.HTMLContent}, nil
}

// Mentorship

func (svc *service) GetSession(ctx context.Context, academyID, id int64) (MentorshipSession, error) {
	return svc.repo.GetSession(ctx, academyID, id)
}

func (svc *service) UpdateSessionStatus(ctx context.Context, academyID, id int64, us UpdateSession) (MentorshipSession, error) {
	session, err := svc.repo.GetSession(ctx, academyID, id)
	if err != nil {
		return MentorshipSession{}, err
	}
	if session.Status == us.Status {
		return session, nil
	}

	now := svc.now()
	session.Status = us.Status
	switch us.Status {
	case SessionStarted:
		session.StartedAt = null.TimeFrom(now)
	case SessionCompleted, SessionFailed, SessionIgnored:
		session.EndedAt = null.TimeFrom(now)
	}
	session.UpdatedAt = now
	if session, err = svc.repo.UpdateSession(ctx, session); err != nil {
		return MentorshipSession{}, errors.Wrap(err, "updating session")
	}

	if session.Status == SessionStarted {
		svc.logger.Debug("Mentorship has started, notifying the mentor")
		sessionID := session.ID
		err = svc.tasks.Enqueue("send_mentorship_starting_notification", func(ctx context.Context) error {
			return svc.SendMentorshipStarting(ctx, sessionID)
		})
		if err != nil {
			svc.logger.Error("could not queue mentorship notification", err, map[string]interface{}{"session": sessionID})
		}
	}
	return session, nil
}

func (svc *service) SendMentorshipStarting(ctx context.Context, sessionID int64) error {
	session, err := svc.repo.GetSession(ctx, 0, sessionID)
	if err != nil {
		if core.IsNotFound(err) {
			svc.logger.Error(fmt.Sprintf("Mentorship session %d not found", sessionID))
			return nil
		}
		return err
	}

	mentor, err := svc.usrSvc.GetByID(ctx, session.MentorID)
	if err != nil {
		return errors.Wrap(err, "getting mentor")
	}
	menteeName := "A mentee"
	if session.MenteeID.Valid {
		mentee, err := svc.usrSvc.GetByID(ctx, session.MenteeID.Int64)
		if err != nil {
			return errors.Wrap(err, "getting mentee")
		}
		menteeName = mentee.FullName()
	}

	link := session.OnlineMeetingURL.String
	if link == "" {
		link = fmt.Sprintf("%s/mentor/session/%d", svc.conf.APIURL, session.ID)
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: mentor.FullName(), Address: mentor.Email}},
		Subject:      "Mentoring session starting",
		TemplateName: "mentorship_starting",
		TemplateData: map[string]interface{}{
			"SUBJECT":     "Mentoring session starting",
			"MENTOR_NAME": mentor.FullName(),
			"MENTEE_NAME": menteeName,
			"SESSION":     session.Name,
			"LINK":        link,
		},
	})
	return nil
}
