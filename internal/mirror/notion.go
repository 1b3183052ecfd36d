package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"attendance-bot/internal/logging"

	"github.com/jomei/notionapi"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const DefaultNotionBaseURL = "https://api.notion.com"

// Property names of the attendance database.
const (
	propDate     = "날짜"
	propUser     = "사용자"
	propCheckIn  = "출근시간"
	propCheckOut = "퇴근시간"
	propWorked   = "근무시간"
	propStatus   = "상태"
	propSource   = "입력방식"
	propTaskDate = "Date"

	statusWorking  = "근무중"
	statusFinished = "퇴근완료"
	sourceManual   = "수동입력"
)

type NotionConfig struct {
	APIKey         string
	DatabaseID     string
	TaskDatabaseID string
	// BaseURL overrides the API host, for proxies and tests.
	BaseURL string
}

// NotionClient mirrors attendance rows into a Notion database.
type NotionClient struct {
	api    *notionapi.Client
	cfg    NotionConfig
	cb     *gobreaker.CircuitBreaker
	logger *logrus.Logger
}

func NewNotionClient(cfg NotionConfig) *NotionClient {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	if cfg.BaseURL != "" && strings.TrimRight(cfg.BaseURL, "/") != DefaultNotionBaseURL {
		if base, err := url.Parse(cfg.BaseURL); err == nil {
			httpClient.Transport = hostRewrite{base: base, next: http.DefaultTransport}
		}
	}

	return &NotionClient{
		api:    notionapi.NewClient(notionapi.Token(cfg.APIKey), notionapi.WithHTTPClient(httpClient)),
		cfg:    cfg,
		cb:     newBreaker("Notion-API"),
		logger: logging.New(),
	}
}

// hostRewrite sends every request to base while keeping the API path.
type hostRewrite struct {
	base *url.URL
	next http.RoundTripper
}

func (t hostRewrite) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.base.Scheme
	r.URL.Host = t.base.Host
	r.Host = t.base.Host
	return t.next.RoundTrip(r)
}

func text(content string) []notionapi.RichText {
	return []notionapi.RichText{{Text: &notionapi.Text{Content: content}}}
}

func richText(content string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{RichText: text(content)}
}

func selectOption(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{Select: notionapi.Option{Name: name}}
}

func notionDate(date string) (*notionapi.Date, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid event date %q: %w", date, err)
	}
	d := notionapi.Date(t)
	return &d, nil
}

// OnCheckIn updates the user's page for the date or creates it.
func (c *NotionClient) OnCheckIn(ctx context.Context, e AttendanceEvent) error {
	if c.cfg.DatabaseID == "" {
		return nil
	}

	page, err := c.findAttendancePage(ctx, e.UserID, e.Date)
	if err != nil {
		return err
	}

	props := notionapi.Properties{
		propCheckIn: richText(e.CheckIn),
		propStatus:  selectOption(statusWorking),
	}
	if page != nil {
		return c.updatePage(ctx, page.ID, props)
	}

	if err := c.addIdentity(props, e); err != nil {
		return err
	}
	return c.createPage(ctx, props)
}

// OnCheckOut updates the page created at check-in. A missing page is not an error.
func (c *NotionClient) OnCheckOut(ctx context.Context, e AttendanceEvent) error {
	if c.cfg.DatabaseID == "" {
		return nil
	}

	page, err := c.findAttendancePage(ctx, e.UserID, e.Date)
	if err != nil {
		return err
	}
	if page == nil {
		c.logger.WithFields(logrus.Fields{
			"user_id": e.UserID,
			"date":    e.Date,
		}).Debug("No Notion page to update on check-out")
		return nil
	}

	props := notionapi.Properties{
		propWorked: richText(workHoursText(e.TotalWorkMinutes)),
		propStatus: selectOption(statusFinished),
	}
	if e.CheckOut != nil {
		props[propCheckOut] = richText(*e.CheckOut)
	}
	return c.updatePage(ctx, page.ID, props)
}

// OnManualEntry always creates a new page marked as manual input.
func (c *NotionClient) OnManualEntry(ctx context.Context, e AttendanceEvent) error {
	if c.cfg.DatabaseID == "" {
		return nil
	}

	props := notionapi.Properties{
		propCheckIn: richText(e.CheckIn),
		propSource:  selectOption(sourceManual),
		propStatus:  selectOption(statusWorking),
	}
	if e.CheckOut != nil {
		props[propCheckOut] = richText(*e.CheckOut)
		props[propWorked] = richText(workHoursText(e.WorkMinutes))
		props[propStatus] = selectOption(statusFinished)
	}
	if err := c.addIdentity(props, e); err != nil {
		return err
	}
	return c.createPage(ctx, props)
}

// OnTasksLogged comments on the first task page of the date.
func (c *NotionClient) OnTasksLogged(ctx context.Context, e TasksEvent) error {
	if c.cfg.TaskDatabaseID == "" || len(e.Tasks) == 0 {
		return nil
	}

	date, err := notionDate(e.Date)
	if err != nil {
		return err
	}
	pages, err := c.queryDatabase(ctx, c.cfg.TaskDatabaseID, &notionapi.PropertyFilter{
		Property: propTaskDate,
		Date:     &notionapi.DateFilterCondition{Equals: date},
	})
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		c.logger.WithField("date", e.Date).Debug("No Notion task pages for date")
		return nil
	}

	return c.call("comments.create", func() error {
		_, err := c.api.Comment.Create(ctx, &notionapi.CommentCreateRequest{
			Parent: notionapi.Parent{
				Type:   notionapi.ParentTypePageID,
				PageID: notionapi.PageID(pages[0].ID),
			},
			RichText: text(tasksComment(e)),
		})
		return err
	})
}

// addIdentity sets the title and date columns a new page needs.
func (c *NotionClient) addIdentity(props notionapi.Properties, e AttendanceEvent) error {
	date, err := notionDate(e.Date)
	if err != nil {
		return err
	}
	props[propUser] = notionapi.TitleProperty{Title: text(e.UserID)}
	props[propDate] = notionapi.DateProperty{Date: &notionapi.DateObject{Start: date}}
	return nil
}

func (c *NotionClient) findAttendancePage(ctx context.Context, userID, date string) (*notionapi.Page, error) {
	day, err := notionDate(date)
	if err != nil {
		return nil, err
	}
	pages, err := c.queryDatabase(ctx, c.cfg.DatabaseID, notionapi.AndCompoundFilter{
		&notionapi.PropertyFilter{
			Property: propUser,
			RichText: &notionapi.TextFilterCondition{Contains: userID},
		},
		&notionapi.PropertyFilter{
			Property: propDate,
			Date:     &notionapi.DateFilterCondition{Equals: day},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return &pages[0], nil
}

func (c *NotionClient) queryDatabase(ctx context.Context, databaseID string, filter notionapi.Filter) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	err := c.call("databases.query", func() error {
		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), &notionapi.DatabaseQueryRequest{
			Filter: filter,
		})
		if err != nil {
			return err
		}
		pages = resp.Results
		return nil
	})
	return pages, err
}

func (c *NotionClient) createPage(ctx context.Context, props notionapi.Properties) error {
	return c.call("pages.create", func() error {
		_, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(c.cfg.DatabaseID),
			},
			Properties: props,
		})
		return err
	})
}

func (c *NotionClient) updatePage(ctx context.Context, pageID notionapi.ObjectID, props notionapi.Properties) error {
	return c.call("pages.update", func() error {
		_, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
			Properties: props,
		})
		return err
	})
}

// call runs one API request through the circuit breaker.
func (c *NotionClient) call(op string, fn func() error) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) {
		c.logger.WithField("op", op).Warn("Circuit breaker is open; skipping Notion call")
	}
	if err != nil {
		return fmt.Errorf("notion %s: %w", op, err)
	}
	return nil
}

func workHoursText(minutes int) string {
	return fmt.Sprintf("%d시간 %d분", minutes/60, minutes%60)
}

func tasksComment(e TasksEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 퇴근 기록 (%s)\n", e.OccurredAt.Format("15:04"))
	fmt.Fprintf(&b, "👤 작성자: %s\n", e.UserID)
	fmt.Fprintf(&b, "📅 날짜: %s\n\n", e.Date)
	b.WriteString("⏱️ 오늘 작업 내역:\n")
	for _, t := range e.Tasks {
		fmt.Fprintf(&b, "• %s: %g시간 (%s)\n", t.Name, t.Hours, t.Category)
	}
	fmt.Fprintf(&b, "\n📊 일일 작업시간: %g시간\n", e.TotalHours())
	fmt.Fprintf(&b, "📊 월 누적시간: %g시간", e.MonthToDate)
	return b.String()
}
