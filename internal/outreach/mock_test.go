package outreach

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/globalyuen/achievepack-outreach/internal/model"
	"github.com/globalyuen/achievepack-outreach/internal/store"
	"github.com/globalyuen/achievepack-outreach/pkg/anthropic"
	"github.com/globalyuen/achievepack-outreach/pkg/hunter"
	"github.com/globalyuen/achievepack-outreach/pkg/resend"
	"github.com/globalyuen/achievepack-outreach/pkg/serper"
)

// MockStore implements store.Store for pipeline tests.
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) GetAutomationState(ctx context.Context) (*model.AutomationState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AutomationState), args.Error(1)
}

func (m *MockStore) SetAutomationRunning(ctx context.Context, running bool) error {
	return m.Called(ctx, running).Error(0)
}

func (m *MockStore) SetLastRunAt(ctx context.Context, ts time.Time) error {
	return m.Called(ctx, ts).Error(0)
}

func (m *MockStore) CreateSearchRun(ctx context.Context, query, sender string) (*model.SearchRun, error) {
	args := m.Called(ctx, query, sender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchRun), args.Error(1)
}

func (m *MockStore) CompleteSearchRun(ctx context.Context, runID string, totals model.RunTotals) error {
	return m.Called(ctx, runID, totals).Error(0)
}

func (m *MockStore) GetSearchRun(ctx context.Context, runID string) (*model.SearchRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchRun), args.Error(1)
}

func (m *MockStore) ListSearchRuns(ctx context.Context, filter store.RunFilter) ([]model.SearchRun, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SearchRun), args.Error(1)
}

func (m *MockStore) CreateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prospect), args.Error(1)
}

func (m *MockStore) MarkProspectSent(ctx context.Context, prospectID string, sentAt time.Time, messageID, rendered string) error {
	return m.Called(ctx, prospectID, sentAt, messageID, rendered).Error(0)
}

func (m *MockStore) ListProspects(ctx context.Context, runID string) ([]model.Prospect, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Prospect), args.Error(1)
}

func (m *MockStore) IsSuppressed(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) AddSuppression(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockStore) WasContacted(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

// MockSearchClient implements serper.Client.
type MockSearchClient struct {
	mock.Mock
}

var _ serper.Client = (*MockSearchClient)(nil)

func (m *MockSearchClient) Search(ctx context.Context, query string, num int) (*serper.SearchResponse, error) {
	args := m.Called(ctx, query, num)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*serper.SearchResponse), args.Error(1)
}

// MockLookupClient implements hunter.Client.
type MockLookupClient struct {
	mock.Mock
}

var _ hunter.Client = (*MockLookupClient)(nil)

func (m *MockLookupClient) DomainSearch(ctx context.Context, domain string) (*hunter.DomainSearchResponse, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hunter.DomainSearchResponse), args.Error(1)
}

// MockEmailClient implements resend.Client.
type MockEmailClient struct {
	mock.Mock
}

var _ resend.Client = (*MockEmailClient)(nil)

func (m *MockEmailClient) SendEmail(ctx context.Context, req *resend.SendRequest) (*resend.SendResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.SendResponse), args.Error(1)
}

// MockAIClient implements anthropic.Client.
type MockAIClient struct {
	mock.Mock
}

var _ anthropic.Client = (*MockAIClient)(nil)

func (m *MockAIClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}
