package hrapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
)

// sourceMethods maps each configured source to its HR API method endpoint.
var sourceMethods = map[string]string{
	hr.SourceUsers:             "get_all_users_details",
	hr.SourceAttendance:        "get_all_attendance",
	hr.SourceLeaveApplications: "get_all_employees_leave_applications",
	hr.SourceLeaveBalance:      "get_all_employees_leave_balance",
	hr.SourceHolidays:          "get_all_holidays",
	hr.SourceProjects:          "get_all_projects_details",
	hr.SourceAllocations:       "get_user_project_allocations",
	hr.SourceManagers:          "get_all_managers_with_departments",
	hr.SourceTimesheet:         "get_all_users_timesheet_details",
}

// Sources lists every source the client can fetch, in a fixed order.
var Sources = []string{
	hr.SourceUsers,
	hr.SourceAttendance,
	hr.SourceLeaveApplications,
	hr.SourceLeaveBalance,
	hr.SourceHolidays,
	hr.SourceProjects,
	hr.SourceAllocations,
	hr.SourceManagers,
	hr.SourceTimesheet,
}

// Client is a best-effort HTTP client for the HR API. It performs no retries;
// a failed fetch is logged by the caller and the source keeps its previous
// staging file.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// APIError represents a non-2xx HR API response.
type APIError struct {
	StatusCode int
	Source     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hr API error [%d] fetching %s", e.StatusCode, e.Source)
}

// Fetch retrieves the raw payload for one source.
func (c *Client) Fetch(ctx context.Context, source string) ([]byte, error) {
	method, ok := sourceMethods[source]
	if !ok {
		return nil, fmt.Errorf("no HR API method configured for source %q", source)
	}

	url := fmt.Sprintf("%s/api/method/hrms.api.employee.%s", c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", source, err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Source: source}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", source, err)
	}
	return body, nil
}
