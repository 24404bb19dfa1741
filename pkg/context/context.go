// Package context 拓展上下文功能，将存储、Provider 注册表等集成到上下文中，
// 方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/yeisme/filerelay/pkg/internal/provider"
	"github.com/yeisme/filerelay/pkg/internal/storage"
	dbc "github.com/yeisme/filerelay/pkg/internal/storage/db"
	"github.com/yeisme/filerelay/pkg/internal/storage/staging"
)

type ContextKey string

const (
	StorageManagerKey   ContextKey = "storageManager"
	ProviderRegistryKey ContextKey = "providerRegistry"
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// GetStagingStore 从 context 中获取本地落盘存储.
func GetStagingStore(ctx context.Context) *staging.Store {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetStagingStore()
	}

	return nil
}

// GetDBClient 从 context 中获取审计库客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// WithRegistry 将 Provider 注册表存储到 context 中.
func WithRegistry(ctx context.Context, reg *provider.Registry) context.Context {
	return context.WithValue(ctx, ProviderRegistryKey, reg)
}

// GetRegistry 从 context 中获取 Provider 注册表.
func GetRegistry(ctx context.Context) *provider.Registry {
	if reg, ok := ctx.Value(ProviderRegistryKey).(*provider.Registry); ok {
		return reg
	}

	return nil
}
