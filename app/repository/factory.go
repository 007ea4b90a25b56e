package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository implementations.
type Repositories struct {
	User         UserRepository
	Product      ProductRepository
	Order        OrderRepository
	Subscription SubscriptionRepository
	WebhookLog   WebhookLogRepository
}

// NewRepositories creates all repositories against one DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Product:      NewProductRepository(db),
		Order:        NewOrderRepository(db),
		Subscription: NewSubscriptionRepository(db),
		WebhookLog:   NewWebhookLogRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetProductRepository returns the product repository instance
func (f *Factory) GetProductRepository() ProductRepository {
	return f.GetRepositories().Product
}

// GetOrderRepository returns the order repository instance
func (f *Factory) GetOrderRepository() OrderRepository {
	return f.GetRepositories().Order
}

// GetSubscriptionRepository returns the subscription repository instance
func (f *Factory) GetSubscriptionRepository() SubscriptionRepository {
	return f.GetRepositories().Subscription
}

// GetWebhookLogRepository returns the webhook log repository instance
func (f *Factory) GetWebhookLogRepository() WebhookLogRepository {
	return f.GetRepositories().WebhookLog
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory
func GetGlobalFactory() *Factory {
	return globalFactory
}
