package mocks

import (
	"context"
	"pollbot/internal/domain/models"

	"github.com/stretchr/testify/mock"
)

type Commenter struct {
	mock.Mock
}

func (m *Commenter) NewComment(ctx context.Context, repository string, number int, body string) (models.IssueComment, models.User, error) {
	args := m.Called(ctx, repository, number, body)
	return args.Get(0).(models.IssueComment), args.Get(1).(models.User), args.Error(2)
}

func (m *Commenter) EditComment(ctx context.Context, repository string, id int64, body string) (models.IssueComment, models.User, error) {
	args := m.Called(ctx, repository, id, body)
	return args.Get(0).(models.IssueComment), args.Get(1).(models.User), args.Error(2)
}

type PollHandler struct {
	mock.Mock
}

func (m *PollHandler) HandleComment(ctx context.Context, comment models.IssueComment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *PollHandler) EvaluatePolls(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
