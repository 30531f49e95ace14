package stocksync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/syncbridge/backend/internal/domain/catalog"
	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/stock"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// MockStockRepository is a mock implementation of stock.Repository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) Save(ctx context.Context, level *stock.StockLevel) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

func (m *MockStockRepository) FindBySKU(ctx context.Context, sku string) (*stock.StockLevel, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockLevel), args.Error(1)
}

func (m *MockStockRepository) FindBySKUs(ctx context.Context, skus []string) ([]stock.StockLevel, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.StockLevel), args.Error(1)
}

func (m *MockStockRepository) AllSKUs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockChannelRepository is a mock implementation of channel.Repository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) Save(ctx context.Context, ch *channel.SalesChannel) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *MockChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*channel.SalesChannel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SalesChannel), args.Error(1)
}

func (m *MockChannelRepository) FindActive(ctx context.Context) ([]channel.SalesChannel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.SalesChannel), args.Error(1)
}

func (m *MockChannelRepository) FindActiveWithStockSync(ctx context.Context) ([]channel.SalesChannel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.SalesChannel), args.Error(1)
}

func (m *MockChannelRepository) FindActiveWithProductSync(ctx context.Context) ([]channel.SalesChannel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.SalesChannel), args.Error(1)
}

// MockFulfillmentClient is a mock implementation of channel.FulfillmentClient
type MockFulfillmentClient struct {
	mock.Mock
}

func (m *MockFulfillmentClient) SyncOrder(ctx context.Context, o channel.FfnOrder) (string, error) {
	args := m.Called(ctx, o)
	return args.String(0), args.Error(1)
}

func (m *MockFulfillmentClient) CancelOrder(ctx context.Context, ffnOrderID string) error {
	args := m.Called(ctx, ffnOrderID)
	return args.Error(0)
}

func (m *MockFulfillmentClient) GetStockForSkus(ctx context.Context, skus []string) ([]channel.SkuStock, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.SkuStock), args.Error(1)
}

func (m *MockFulfillmentClient) PollInboundUpdates(ctx context.Context, since time.Time) ([]channel.InboundUpdate, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.InboundUpdate), args.Error(1)
}

// MockJobRepository is a mock implementation of syncjob.Repository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Save(ctx context.Context, jobs ...*syncjob.Job) error {
	args := m.Called(ctx, jobs)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, job *syncjob.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*syncjob.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncjob.Job), args.Error(1)
}

func (m *MockJobRepository) FindRunnable(ctx context.Context, queue string, now time.Time, limit int) ([]*syncjob.Job, error) {
	args := m.Called(ctx, queue, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncjob.Job), args.Error(1)
}

func (m *MockJobRepository) MarkActive(ctx context.Context, ids []uuid.UUID) ([]*syncjob.Job, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncjob.Job), args.Error(1)
}

func (m *MockJobRepository) FindDead(ctx context.Context, page, pageSize int) ([]*syncjob.Job, int64, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*syncjob.Job), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepository) CountByStatus(ctx context.Context, queue string) (map[syncjob.Status]int64, error) {
	args := m.Called(ctx, queue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[syncjob.Status]int64), args.Error(1)
}

func (m *MockJobRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) Queues(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockSyncLogRepository is a mock implementation of synclog.Repository
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Append(ctx context.Context, entry *synclog.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSyncLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*synclog.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*synclog.Entry), args.Error(1)
}

func (m *MockSyncLogRepository) FindAll(ctx context.Context, filter synclog.Filter) ([]*synclog.Entry, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*synclog.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockSyncLogRepository) HasRecentLocalPush(ctx context.Context, entityType synclog.EntityType, externalID string, window time.Duration) (bool, error) {
	args := m.Called(ctx, entityType, externalID, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockSyncLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKUs(ctx context.Context, skus []string) ([]catalog.Product, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

// MockProductChannelRepository is a mock implementation of catalog.ProductChannelRepository
type MockProductChannelRepository struct {
	mock.Mock
}

func (m *MockProductChannelRepository) Save(ctx context.Context, pc *catalog.ProductChannel) error {
	args := m.Called(ctx, pc)
	return args.Error(0)
}

func (m *MockProductChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductChannel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductChannel), args.Error(1)
}

func (m *MockProductChannelRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductChannel, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductChannel), args.Error(1)
}

func (m *MockProductChannelRepository) FindByProductAndChannel(ctx context.Context, productID, channelID uuid.UUID) (*catalog.ProductChannel, error) {
	args := m.Called(ctx, productID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductChannel), args.Error(1)
}

func (m *MockProductChannelRepository) FindByExternalID(ctx context.Context, channelID uuid.UUID, externalProductID string) (*catalog.ProductChannel, error) {
	args := m.Called(ctx, channelID, externalProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductChannel), args.Error(1)
}

// MockPlatformClient is a mock implementation of channel.PlatformClient
type MockPlatformClient struct {
	mock.Mock
	channelType channel.ChannelType
}

func (m *MockPlatformClient) ChannelType() channel.ChannelType {
	return m.channelType
}

func (m *MockPlatformClient) UpdateOrder(ctx context.Context, channelID uuid.UUID, update channel.PlatformOrderUpdate) error {
	args := m.Called(ctx, channelID, update)
	return args.Error(0)
}

func (m *MockPlatformClient) CancelOrder(ctx context.Context, channelID uuid.UUID, externalOrderID, reason string) error {
	args := m.Called(ctx, channelID, externalOrderID, reason)
	return args.Error(0)
}

func (m *MockPlatformClient) FulfillOrder(ctx context.Context, channelID uuid.UUID, externalOrderID, carrier, trackingNumber string) error {
	args := m.Called(ctx, channelID, externalOrderID, carrier, trackingNumber)
	return args.Error(0)
}

func (m *MockPlatformClient) CreateProduct(ctx context.Context, channelID uuid.UUID, product channel.PlatformProduct) (string, error) {
	args := m.Called(ctx, channelID, product)
	return args.String(0), args.Error(1)
}

func (m *MockPlatformClient) UpdateProduct(ctx context.Context, channelID uuid.UUID, product channel.PlatformProduct) error {
	args := m.Called(ctx, channelID, product)
	return args.Error(0)
}

func (m *MockPlatformClient) DeleteProduct(ctx context.Context, channelID uuid.UUID, externalProductID string) error {
	args := m.Called(ctx, channelID, externalProductID)
	return args.Error(0)
}

func (m *MockPlatformClient) SetStock(ctx context.Context, channelID uuid.UUID, externalProductID string, available decimal.Decimal) error {
	args := m.Called(ctx, channelID, externalProductID, available)
	return args.Error(0)
}

// MockClientRegistry is a mock implementation of channel.PlatformClientRegistry
type MockClientRegistry struct {
	mock.Mock
}

func (m *MockClientRegistry) ClientFor(channelType channel.ChannelType) (channel.PlatformClient, error) {
	args := m.Called(channelType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(channel.PlatformClient), args.Error(1)
}
