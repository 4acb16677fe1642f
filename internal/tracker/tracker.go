package tracker

import (
	"context"
	"errors"
	"fmt"

	"gitwiki.app/server/internal/model"
)

// ListParams filters the issue listing call. PerPage caps the result count;
// zero means provider default.
type ListParams struct {
	Labels  []string
	State   string
	PerPage int
}

// Client is the issue-tracker provider boundary. Every method is a single
// network round trip; retry policy is layered on by callers.
type Client interface {
	ListIssues(ctx context.Context, params ListParams) ([]model.Issue, error)
	CreateIssue(ctx context.Context, title, body string, labels []string) (*model.Issue, error)
	UpdateIssueBody(ctx context.Context, number int, body string) (*model.Issue, error)
	LockIssue(ctx context.Context, number int) error
	CreateComment(ctx context.Context, issueNumber int, body string) (*model.Comment, error)
	ListComments(ctx context.Context, issueNumber int) ([]model.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}

// APIError is the normalized provider error. The retry engine classifies
// errors by StatusCode; Message preserves the provider's original text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker: %s (status %d)", e.Message, e.StatusCode)
}

// HTTPStatus reports the provider status code. The retry engine matches on
// this method rather than the concrete type.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// StatusCode extracts the provider status code from an error chain.
// Returns 0 when the error carries no status.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
