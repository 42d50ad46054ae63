// Package objstore 封装 MinIO 对象存储客户端，保存商品图片
package objstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"clothing-store/internal/config"
)

// Client MinIO 客户端封装
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
}

// NewClient 创建 MinIO 客户端
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio access_key and secret_key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "clothing-store"
	}

	return &Client{mc: mc, bucket: bucket, publicURL: publicBaseURL(cfg, bucket)}, nil
}

// publicBaseURL 图片对外访问地址前缀（不含结尾斜杠）
func publicBaseURL(cfg config.MinIOConfig, bucket string) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, bucket)
}

// EnsureBucket 确保 bucket 存在，并允许匿名读取（商品图片直接给前端展示）
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		log.Printf("[minio] Created bucket: %s", c.bucket)
	}

	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/%s*"]}]}`,
		c.bucket, itemPrefix)
	if err := c.mc.SetBucketPolicy(ctx, c.bucket, policy); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	return nil
}

// Upload 上传对象
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := c.mc.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Delete 删除对象
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
}

// ============================================================================
// 商品图片
// ============================================================================

const itemPrefix = "items/"

// ItemImageKey 商品图片对象 key，如 "items/<id>/3.png"
func ItemImageKey(itemID string, slot int, ext string) string {
	return fmt.Sprintf("%s%s/%d%s", itemPrefix, itemID, slot, ext)
}

// URL 返回对象的对外访问地址
func (c *Client) URL(key string) string {
	return c.publicURL + "/" + key
}

// PutItemImage 上传商品图片，返回对外访问地址
//
// 同一槽位重复上传会覆盖旧对象（扩展名不同时旧对象保留，由 DeleteItemImages 统一清理）。
func (c *Client) PutItemImage(ctx context.Context, itemID string, slot int, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := ItemImageKey(itemID, slot, strings.ToLower(path.Ext(filename)))
	if err := c.Upload(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return c.URL(key), nil
}

// DeleteItemImages 删除商品的全部图片
func (c *Client) DeleteItemImages(ctx context.Context, itemID string) error {
	prefix := itemPrefix + itemID + "/"
	for obj := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		if err := c.Delete(ctx, obj.Key); err != nil {
			return fmt.Errorf("delete %s: %w", obj.Key, err)
		}
	}
	return nil
}
