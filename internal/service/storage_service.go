package service

import (
	"context"
	"net/url"
	"startup_academy_backend/internal/config"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/logger"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// 课时资料链接有效期
const resourceURLExpiry = time.Hour

// StorageProvider 课时资料的访问地址生成
type StorageProvider interface {
	SignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// LocalStorageProvider 本地目录由 gin 静态路由提供，直接拼接公开地址
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) SignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	base := strings.TrimRight(p.Config.PublicURL, "/")
	return base + "/uploads/" + strings.TrimLeft(objectKey, "/"), nil
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) SignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) SignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	return bucket.SignURL(objectKey, oss.HTTPGet, int64(expiry.Seconds()))
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		} else {
			logger.Log.Warn("MinIO unavailable, falling back to local storage", zap.Error(err))
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		} else {
			logger.Log.Warn("OSS unavailable, falling back to local storage", zap.Error(err))
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// ResolveResources 为带 ObjectKey 的资料生成访问地址，已有 URL 的外链保持不变
func (s *StorageService) ResolveResources(ctx context.Context, resources []model.LessonResource) []model.LessonResource {
	resolved := make([]model.LessonResource, 0, len(resources))
	for _, r := range resources {
		if r.ObjectKey != "" {
			signed, err := s.Provider.SignedURL(ctx, r.ObjectKey, resourceURLExpiry)
			if err != nil {
				logger.Log.Warn("Failed to sign resource url",
					zap.String("objectKey", r.ObjectKey),
					zap.Error(err))
			} else {
				r.URL = signed
			}
		}
		resolved = append(resolved, r)
	}
	return resolved
}
