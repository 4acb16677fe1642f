package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v68/github"
	"gitwiki.app/server/core/config"
	"gitwiki.app/server/internal/model"
)

// GitHub issues are locked after creation so only the service account can
// touch index bodies. The lock reason is advisory.
const lockReason = "off-topic"

type gitHubClient struct {
	client *github.Client
	owner  string
	repo   string
}

func NewGitHubClient(cfg config.GitHubConfig) (Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	client := github.NewClient(nil).WithAuthToken(cfg.Token)
	if cfg.BaseURL != "" {
		base := strings.TrimSuffix(cfg.BaseURL, "/")
		var err error
		client, err = client.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise base url: %w", err)
		}
	}

	return &gitHubClient{
		client: client,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
	}, nil
}

func (c *gitHubClient) ListIssues(ctx context.Context, params ListParams) ([]model.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		Labels: params.Labels,
		State:  params.State,
	}
	if params.PerPage > 0 {
		opts.ListOptions = github.ListOptions{PerPage: params.PerPage}
	}

	issues, resp, err := c.client.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, wrapErr("listing issues", err, resp)
	}

	mapped := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		mapped = append(mapped, mapIssue(issue))
	}
	return mapped, nil
}

func (c *gitHubClient) CreateIssue(ctx context.Context, title, body string, labels []string) (*model.Issue, error) {
	req := &github.IssueRequest{
		Title:  github.Ptr(title),
		Body:   github.Ptr(body),
		Labels: &labels,
	}

	issue, resp, err := c.client.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return nil, wrapErr("creating issue", err, resp)
	}

	mapped := mapIssue(issue)
	return &mapped, nil
}

func (c *gitHubClient) UpdateIssueBody(ctx context.Context, number int, body string) (*model.Issue, error) {
	issue, resp, err := c.client.Issues.Edit(ctx, c.owner, c.repo, number, &github.IssueRequest{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, wrapErr("updating issue body", err, resp)
	}

	mapped := mapIssue(issue)
	return &mapped, nil
}

func (c *gitHubClient) LockIssue(ctx context.Context, number int) error {
	resp, err := c.client.Issues.Lock(ctx, c.owner, c.repo, number, &github.LockIssueOptions{
		LockReason: lockReason,
	})
	if err != nil {
		return wrapErr("locking issue", err, resp)
	}
	return nil
}

func (c *gitHubClient) CreateComment(ctx context.Context, issueNumber int, body string) (*model.Comment, error) {
	comment, resp, err := c.client.Issues.CreateComment(ctx, c.owner, c.repo, issueNumber, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, wrapErr("creating comment", err, resp)
	}

	return &model.Comment{ID: comment.GetID(), Body: comment.GetBody()}, nil
}

func (c *gitHubClient) ListComments(ctx context.Context, issueNumber int) ([]model.Comment, error) {
	var comments []model.Comment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := c.client.Issues.ListComments(ctx, c.owner, c.repo, issueNumber, opts)
		if err != nil {
			return nil, wrapErr("listing comments", err, resp)
		}
		for _, comment := range page {
			if comment == nil {
				continue
			}
			comments = append(comments, model.Comment{ID: comment.GetID(), Body: comment.GetBody()})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

func (c *gitHubClient) DeleteComment(ctx context.Context, commentID int64) error {
	resp, err := c.client.Issues.DeleteComment(ctx, c.owner, c.repo, commentID)
	if err != nil {
		return wrapErr("deleting comment", err, resp)
	}
	return nil
}

func mapIssue(issue *github.Issue) model.Issue {
	var labels []string
	for _, l := range issue.Labels {
		if l != nil && l.GetName() != "" {
			labels = append(labels, l.GetName())
		}
	}

	return model.Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		Labels: labels,
		Locked: issue.GetLocked(),
	}
}

// wrapErr normalizes go-github errors to APIError so the retry engine can
// classify by status. Errors without a provider status (network failures)
// pass through wrapped, keeping their message intact for substring matching.
func wrapErr(op string, err error, resp *github.Response) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &APIError{StatusCode: statusFrom(rateErr.Response, resp, 403), Message: op + ": " + rateErr.Message}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &APIError{StatusCode: statusFrom(abuseErr.Response, resp, 429), Message: op + ": " + abuseErr.Message}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		status := 0
		if respErr.Response != nil {
			status = respErr.Response.StatusCode
		}
		return &APIError{StatusCode: status, Message: op + ": " + respErr.Message}
	}

	if resp != nil && resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: op + ": " + err.Error()}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func statusFrom(errResp *http.Response, callResp *github.Response, fallback int) int {
	if errResp != nil {
		return errResp.StatusCode
	}
	if callResp != nil && callResp.Response != nil {
		return callResp.StatusCode
	}
	return fallback
}
