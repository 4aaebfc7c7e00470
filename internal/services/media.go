package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

const signedURLTTL = time.Hour

// URLSigner produit une URL de lecture temporaire pour un objet.
type URLSigner interface {
	PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration, params url.Values) (*url.URL, error)
}

// MediaService résout le champ image d'un produit. Les URLs http(s) sont
// servies telles quelles, les clés d'objet sont signées sur le bucket.
type MediaService struct {
	signer URLSigner
	bucket string
}

// NewMediaService : client nil = images servies telles que stockées.
func NewMediaService(client *minio.Client, bucket string) *MediaService {
	if client == nil {
		return &MediaService{bucket: bucket}
	}
	return &MediaService{signer: client, bucket: bucket}
}

// ImageURL retourne l'URL à exposer au client pour image.
func (m *MediaService) ImageURL(ctx context.Context, image string) string {
	if m == nil || m.signer == nil || image == "" || isAbsoluteURL(image) {
		return image
	}

	key := strings.TrimPrefix(image, "/")
	key = strings.TrimPrefix(key, m.bucket+"/")

	signed, err := m.signer.PresignedGetObject(ctx, m.bucket, key, signedURLTTL, url.Values{})
	if err != nil {
		return image
	}
	return signed.String()
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
