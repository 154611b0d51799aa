package monitoring

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrApplicationNotFound = core.NewNotFoundError("application-not-found")
	ErrEndpointNotFound    = core.NewNotFoundError("endpoint-not-found")
	ErrDownloadNotFound    = core.NewNotFoundError("download-not-found")
	ErrDownloadNotReady    = core.NewSlugValidationError("download-not-ready")
	ErrUnknownSource       = core.NewSlugValidationError("unknown-csv-source")
)

const maxResponseText = 1000

type (
	Repository interface {
		// QueryApplications returns the applications of the academy, all of them when academyID is 0.
		QueryApplications(ctx context.Context, academyID int64) ([]Application, error)
		GetApplication(ctx context.Context, id int64) (Application, error)
		UpdateApplication(ctx context.Context, app Application) (Application, error)

		QueryEndpoints(ctx context.Context, filter EndpointFilter) ([]Endpoint, error)
		GetEndpoint(ctx context.Context, id int64) (Endpoint, error)
		UpdateEndpoint(ctx context.Context, ep Endpoint) (Endpoint, error)

		QueryDownloads(ctx context.Context, academyID int64, page core.Pagination) ([]CSVDownload, int, error)
		GetDownload(ctx context.Context, academyID, id int64) (CSVDownload, error)
		CreateDownload(ctx context.Context, dl CSVDownload) (CSVDownload, error)
		UpdateDownload(ctx context.Context, dl CSVDownload) (CSVDownload, error)
	}

	// Checker requests a monitored URL.
	Checker interface {
		Check(ctx context.Context, url string) (CheckResult, error)
	}

	// FileStorage keeps the generated CSV files.
	FileStorage interface {
		Upload(ctx context.Context, name, contentType string, data io.Reader) error
		SignedURL(name string) (string, error)
	}

	// CSVSource returns the rows of an academy export, header first.
	CSVSource func(ctx context.Context, academyID int64) ([][]string, error)

	Service interface {
		QueryApplications(ctx context.Context, academyID int64) ([]Application, error)
		QueryEndpoints(ctx context.Context, filter EndpointFilter) ([]Endpoint, error)
		// RunEndpointCheck requests the endpoint and rolls its status up to the application.
		RunEndpointCheck(ctx context.Context, id int64) (Endpoint, error)
		// RunChecks queues a check of every endpoint that is due and not paused.
		RunChecks(ctx context.Context) (int, error)

		QueryDownloads(ctx context.Context, academyID int64, page core.Pagination) ([]CSVDownload, int, error)
		GetDownload(ctx context.Context, academyID, id int64) (CSVDownload, error)
		// DownloadURL returns a signed URL of a finished download.
		DownloadURL(ctx context.Context, academyID, id int64) (string, error)
		// ExportCSV records a LOADING download and queues the generation of the file.
		ExportCSV(ctx context.Context, academyID int64, nd NewDownload) (CSVDownload, error)
	}

	service struct {
		repo    Repository
		checker Checker
		storage FileStorage
		sources map[string]CSVSource
		tasks   core.TaskQueue
		logger  core.Logger
		now     func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	checker Checker,
	storage FileStorage,
	sources map[string]CSVSource,
	tasks core.TaskQueue,
	logger core.Logger,
) Service {
	return &service{
		repo:    repo,
		checker: checker,
		storage: storage,
		sources: sources,
		tasks:   tasks,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (svc *service) QueryApplications(ctx context.Context, academyID int64) ([]Application, error) {
	return svc.repo.QueryApplications(ctx, academyID)
}

func (svc *service) QueryEndpoints(ctx context.Context, filter EndpointFilter) ([]Endpoint, error) {
	return svc.repo.QueryEndpoints(ctx, filter)
}

func (svc *service) RunEndpointCheck(ctx context.Context, id int64) (Endpoint, error) {
	ep, err := svc.repo.GetEndpoint(ctx, id)
	if err != nil {
		return Endpoint{}, err
	}
	app, err := svc.repo.GetApplication(ctx, ep.ApplicationID)
	if err != nil {
		return Endpoint{}, err
	}
	now := svc.now()
	if ep.Paused(now) || app.Paused(now) {
		svc.logger.Debug(fmt.Sprintf("endpoint %d is paused, skipping check", ep.ID))
		return ep, nil
	}

	res, err := svc.checker.Check(ctx, ep.URL)
	evaluate(&ep, res, err)
	ep.LastCheck = null.TimeFrom(now)
	ep.UpdatedAt = now
	if ep, err = svc.repo.UpdateEndpoint(ctx, ep); err != nil {
		return Endpoint{}, errors.Wrap(err, "updating endpoint")
	}
	endpointSeverity.WithLabelValues(app.Title, ep.URL).Set(float64(ep.SeverityLevel))

	if err = svc.rollUp(ctx, app); err != nil {
		return Endpoint{}, err
	}
	return ep, nil
}

// evaluate sets the status of ep from what its URL answered.
func evaluate(ep *Endpoint, res CheckResult, err error) {
	ep.Status, ep.SeverityLevel = StatusOperational, 0
	ep.ResponseText = null.String{}
	if err != nil {
		ep.StatusCode = 500
		ep.Status, ep.SeverityLevel = StatusCritical, 100
		ep.ResponseText = null.StringFrom(err.Error())
		return
	}

	ep.StatusCode = res.StatusCode
	switch {
	case res.StatusCode == ep.ExpectedStatus:
	case res.StatusCode >= 300 && res.StatusCode < 400:
		ep.Status, ep.SeverityLevel = StatusMinor, 5
	case res.StatusCode >= 400:
		ep.Status, ep.SeverityLevel = StatusCritical, 100
	default:
		ep.Status, ep.SeverityLevel = StatusMinor, 5
	}

	if ep.Status == StatusOperational && ep.TestPattern.String != "" {
		pattern, perr := regexp.Compile(ep.TestPattern.String)
		switch {
		case perr != nil:
			ep.Status, ep.SeverityLevel = StatusMinor, 5
			ep.ResponseText = null.StringFrom("Invalid test pattern: " + perr.Error())
			return
		case !pattern.MatchString(res.Body):
			ep.Status, ep.SeverityLevel = StatusMinor, 5
		}
	}

	if ep.Status != StatusOperational && !ep.ResponseText.Valid {
		ep.ResponseText = null.StringFrom(clip(res.Body, maxResponseText))
	}
}

// clip cuts text to at most n bytes of valid UTF-8, never splitting a character.
func clip(text string, n int) string {
	if len(text) > n {
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n]
	}
	return strings.ToValidUTF8(text, "")
}

// rollUp sets the application status to the worst status of its active endpoints.
func (svc *service) rollUp(ctx context.Context, app Application) error {
	endpoints, err := svc.repo.QueryEndpoints(ctx, EndpointFilter{ApplicationID: app.ID})
	if err != nil {
		return errors.Wrap(err, "querying application endpoints")
	}
	now := svc.now()
	status := StatusOperational
	for _, ep := range endpoints {
		if ep.Paused(now) {
			continue
		}
		if statusRank[ep.Status] > statusRank[status] {
			status = ep.Status
		}
	}
	if status == app.Status {
		return nil
	}

	if statusRank[status] > statusRank[app.Status] {
		svc.logger.Error(
			fmt.Sprintf("Application %s is %s", app.Title, status),
			map[string]interface{}{"application": app.ID, "notify_email": app.NotifyEmail.String},
		)
	}
	app.Status = status
	app.UpdatedAt = now
	if _, err = svc.repo.UpdateApplication(ctx, app); err != nil {
		return errors.Wrap(err, "updating application")
	}
	return nil
}

func (svc *service) RunChecks(ctx context.Context) (int, error) {
	endpoints, err := svc.repo.QueryEndpoints(ctx, EndpointFilter{})
	if err != nil {
		return 0, errors.Wrap(err, "querying endpoints")
	}

	now := svc.now()
	apps := make(map[int64]Application)
	queued := 0
	for _, ep := range endpoints {
		app, ok := apps[ep.ApplicationID]
		if !ok {
			if app, err = svc.repo.GetApplication(ctx, ep.ApplicationID); err != nil {
				return queued, err
			}
			apps[app.ID] = app
		}
		if ep.Paused(now) || app.Paused(now) || !ep.Due(now) {
			continue
		}

		epID := ep.ID
		err = svc.tasks.Enqueue("run_endpoint_check", func(ctx context.Context) error {
			_, err := svc.RunEndpointCheck(ctx, epID)
			return err
		})
		if err != nil {
			svc.logger.Error("could not queue endpoint check", err, map[string]interface{}{"endpoint": epID})
			continue
		}
		queued++
	}
	return queued, nil
}

// Downloads

func (svc *service) QueryDownloads(ctx context.Context, academyID int64, page core.Pagination) ([]CSVDownload, int, error) {
	return svc.repo.QueryDownloads(ctx, academyID, page)
}

func (svc *service) GetDownload(ctx context.Context, academyID, id int64) (CSVDownload, error) {
	return svc.repo.GetDownload(ctx, academyID, id)
}

func (svc *service) DownloadURL(ctx context.Context, academyID, id int64) (string, error) {
	dl, err := svc.repo.GetDownload(ctx, academyID, id)
	if err != nil {
		return "", err
	}
	if dl.Status != DownloadDone || !dl.URL.Valid {
		return "", ErrDownloadNotReady
	}
	url, err := svc.storage.SignedURL(dl.URL.String)
	if err != nil {
		return "", errors.Wrap(err, "signing download url")
	}
	return url, nil
}

func (svc *service) ExportCSV(ctx context.Context, academyID int64, nd NewDownload) (CSVDownload, error) {
	source, ok := svc.sources[nd.Source]
	if !ok {
		return CSVDownload{}, ErrUnknownSource
	}

	now := svc.now()
	dl, err := svc.repo.CreateDownload(ctx, CSVDownload{
		Name:      fmt.Sprintf("%s_%s.csv", nd.Source, now.Format("2006-01-02")),
		Status:    DownloadLoading,
		AcademyID: null.Int64From(academyID),
		CreatedAt: now,
	})
	if err != nil {
		return CSVDownload{}, errors.Wrap(err, "creating download")
	}

	dlID := dl.ID
	err = svc.tasks.Enqueue("export_csv", func(ctx context.Context) error {
		return svc.buildCSV(ctx, academyID, dlID, source)
	})
	if err != nil {
		svc.logger.Error("could not queue csv export", err, map[string]interface{}{"download": dlID})
	}
	return svc.repo.GetDownload(ctx, academyID, dlID)
}

func (svc *service) buildCSV(ctx context.Context, academyID, id int64, source CSVSource) error {
	dl, err := svc.repo.GetDownload(ctx, academyID, id)
	if err != nil {
		return err
	}

	name := "downloads/" + uuid.New().String() + ".csv"
	if err = svc.writeCSV(ctx, academyID, name, source); err != nil {
		dl.Status = DownloadError
		dl.StatusMessage = null.StringFrom(err.Error())
	} else {
		dl.Status = DownloadDone
		dl.URL = null.StringFrom(name)
	}
	dl.FinishedAt = null.TimeFrom(svc.now())
	if _, uerr := svc.repo.UpdateDownload(ctx, dl); uerr != nil {
		return errors.Wrap(uerr, "updating download")
	}
	return err
}

func (svc *service) writeCSV(ctx context.Context, academyID int64, name string, source CSVSource) error {
	rows, err := source(ctx, academyID)
	if err != nil {
		return errors.Wrap(err, "collecting rows")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err = w.WriteAll(rows); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	if err = svc.storage.Upload(ctx, name, "text/csv", &buf); err != nil {
		return errors.Wrap(err, "uploading csv")
	}
	svc.logger.Info("csv export uploaded", map[string]interface{}{"name": name, "rows": strconv.Itoa(len(rows))})
	return nil
}
