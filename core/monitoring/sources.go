package monitoring

import (
	"context"
	"strconv"
	"time"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/events"
	"github.com/trezcool/academia/core/feedback"
)

// Sources returns the exports an academy can download.
func Sources(evSvc events.Service, fbSvc feedback.Service) map[string]CSVSource {
	return map[string]CSVSource{
		"events":  EventsCSV(evSvc),
		"answers": AnswersCSV(fbSvc),
	}
}

func EventsCSV(evSvc events.Service) CSVSource {
	return func(ctx context.Context, academyID int64) ([][]string, error) {
		items, _, err := evSvc.QueryEvents(ctx, events.EventFilter{AcademyID: academyID}, core.AllRows)
		if err != nil {
			return nil, err
		}
		rows := [][]string{{"id", "title", "status", "starting_at", "ending_at", "url", "online_event"}}
		for _, ev := range items {
			rows = append(rows, []string{
				strconv.FormatInt(ev.ID, 10),
				ev.Title.String,
				ev.Status,
				ev.StartingAt.Format(time.RFC3339),
				ev.EndingAt.Format(time.RFC3339),
				ev.URL.String,
				strconv.FormatBool(ev.OnlineEvent),
			})
		}
		return rows, nil
	}
}

func AnswersCSV(fbSvc feedback.Service) CSVSource {
	return func(ctx context.Context, academyID int64) ([][]string, error) {
		answers, _, err := fbSvc.QueryAnswers(ctx, feedback.AnswerFilter{AcademyID: academyID}, core.AllRows)
		if err != nil {
			return nil, err
		}
		rows := [][]string{{"id", "title", "kind", "score", "comment", "status", "user", "survey"}}
		for _, a := range answers {
			score := ""
			if a.Score.Valid {
				score = strconv.Itoa(a.Score.Int)
			}
			rows = append(rows, []string{
				strconv.FormatInt(a.ID, 10),
				a.Title,
				a.Kind(),
				score,
				a.Comment.String,
				a.Status,
				formatID(a.UserID.Int64, a.UserID.Valid),
				formatID(a.SurveyID.Int64, a.SurveyID.Valid),
			})
		}
		return rows, nil
	}
}

func formatID(id int64, valid bool) string {
	if !valid {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
