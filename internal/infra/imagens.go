package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// ImagensMinio stores item reference images in a MinIO / S3 bucket.
type ImagensMinio struct {
	client *minio.Client
	bucket string
}

// NewImagensMinio connects to MinIO and makes sure the bucket exists.
func NewImagensMinio(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ImagensMinio, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: client: %w", err)
	}
	existe, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: bucket check: %w", err)
	}
	if !existe {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio: create bucket %s: %w", bucket, err)
		}
		log.Info().Str("bucket", bucket).Msg("minio: bucket criado")
	}
	return &ImagensMinio{client: client, bucket: bucket}, nil
}

func (m *ImagensMinio) Salvar(ctx context.Context, chave string, dados []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, chave, bytes.NewReader(dados), int64(len(dados)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("minio: upload %s: %w", chave, err)
	}
	return nil
}

func (m *ImagensMinio) Carregar(ctx context.Context, chave string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, chave, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", chave, err)
	}
	defer obj.Close()
	dados, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("minio: read %s: %w", chave, err)
	}
	return dados, nil
}

func (m *ImagensMinio) Remover(ctx context.Context, chave string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, chave, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio: remove %s: %w", chave, err)
	}
	return nil
}
