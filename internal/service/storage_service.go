package service

import (
	"context"
	"edupath_backend/internal/config"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// 签名URL有效期：30天
const signedURLExpiry = 30 * 24 * time.Hour

// StorageProvider 定义通用存储接口。ResolveURL 负责题目图片等对象的外链解析
type StorageProvider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	ResolveURL(ctx context.Context, key string) (string, error)
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, key)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}

	return p.ResolveURL(ctx, key)
}

func (p *LocalStorageProvider) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, key))
}

func (p *LocalStorageProvider) ResolveURL(ctx context.Context, key string) (string, error) {
	return "/uploads/" + key, nil
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.ResolveURL(ctx, key)
}

func (p *MinioStorageProvider) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, key, minio.RemoveObjectOptions{})
}

// ResolveURL 先探测公开桶直链，不可用时回退为30天有效的签名URL
func (p *MinioStorageProvider) ResolveURL(ctx context.Context, key string) (string, error) {
	if _, err := p.Client.StatObject(ctx, p.Config.MinioBucket, key, minio.StatObjectOptions{}); err != nil {
		return "", err
	}

	if p.Config.MinioPublic {
		if p.Config.PublicBaseURL != "" {
			return fmt.Sprintf("%s/%s/%s", p.Config.PublicBaseURL, p.Config.MinioBucket, key), nil
		}
		return fmt.Sprintf("%s/%s/%s", p.Client.EndpointURL().String(), p.Config.MinioBucket, key), nil
	}

	signed, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, signedURLExpiry, url.Values{})
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == "minio" {
		if p, err := NewMinioStorageProvider(&cfg.Storage); err == nil {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

func (s *StorageService) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Upload(ctx, key, reader, size, contentType)
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	return s.Provider.Delete(ctx, key)
}

func (s *StorageService) ResolveURL(ctx context.Context, key string) (string, error) {
	return s.Provider.ResolveURL(ctx, key)
}
