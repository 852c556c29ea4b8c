package mocks

import (
	"context"
	"pollbot/internal/domain/models"
	"pollbot/internal/service"
	"time"

	"github.com/stretchr/testify/mock"
)

type ActivitySource struct {
	mock.Mock
}

func (m *ActivitySource) ListRepositories(ctx context.Context, org string) ([]string, error) {
	args := m.Called(ctx, org)
	return args.Get(0).([]string), args.Error(1)
}

func (m *ActivitySource) IssuesSince(ctx context.Context, repository string, since time.Time) ([]service.IssueEvent, error) {
	args := m.Called(ctx, repository, since)
	return args.Get(0).([]service.IssueEvent), args.Error(1)
}

func (m *ActivitySource) CommentsSince(ctx context.Context, repository string, since time.Time) ([]service.RemoteComment, error) {
	args := m.Called(ctx, repository, since)
	return args.Get(0).([]service.RemoteComment), args.Error(1)
}

type SyncStore struct {
	mock.Mock
}

func (m *SyncStore) MostRecentSync(ctx context.Context) (time.Time, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *SyncStore) RecordSync(ctx context.Context, run models.SyncRun) error {
	return m.Called(ctx, run).Error(0)
}

type EventIngester struct {
	mock.Mock
}

func (m *EventIngester) HandleIssueEvent(ctx context.Context, ev service.IssueEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *EventIngester) HandleCommentEvent(ctx context.Context, ev service.CommentEvent) error {
	return m.Called(ctx, ev).Error(0)
}
