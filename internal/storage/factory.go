package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/gravadigital/tallywatch-api/internal/config"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/storage/objectstore"
)

// StorageType represents the type of photo storage backend
type StorageType string

const (
	// StorageTypeMinio stores photos in an S3 compatible bucket
	StorageTypeMinio StorageType = "minio"
	// StorageTypeMemory keeps photos in process memory, for local development
	StorageTypeMemory StorageType = "memory"
)

// Factory provides a factory pattern for creating photo stores
type Factory struct {
	storageType StorageType
}

// NewFactory creates a new storage factory
func NewFactory(storageType StorageType) *Factory {
	return &Factory{
		storageType: storageType,
	}
}

// FactoryFromConfig validates STORAGE_BACKEND and returns its factory
func FactoryFromConfig(cfg *config.Config) (*Factory, error) {
	st, err := ValidateStorageType(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}
	return NewFactory(st), nil
}

// CreatePhotoStore creates a photo store based on the configured type
func (f *Factory) CreatePhotoStore(ctx context.Context, cfg *config.Config) (objectstore.Backend, error) {
	switch f.storageType {
	case StorageTypeMinio:
		store, err := objectstore.NewMinioStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageTypeMemory:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("storage type %s is not allowed in production", f.storageType)
		}
		logger.Storage().Warn("Photos are kept in memory and lost on restart")
		return objectstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", f.storageType)
	}
}

// GetSupportedTypes returns a list of supported storage types
func GetSupportedTypes() []StorageType {
	return []StorageType{
		StorageTypeMinio,
		StorageTypeMemory,
	}
}

// ValidateStorageType validates if a storage type is supported
func ValidateStorageType(storageType string) (StorageType, error) {
	st := StorageType(strings.ToLower(strings.TrimSpace(storageType)))

	for _, supported := range GetSupportedTypes() {
		if st == supported {
			return st, nil
		}
	}

	return "", fmt.Errorf("unsupported storage type: %s. Supported types: %v", storageType, GetSupportedTypes())
}
