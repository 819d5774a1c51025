package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"kasuwa_back_end/internal/database"
)

const defaultImageBucket = "kasuwa-images"

// imageBucket suit MINIO_BUCKET, le bucket créé à la connexion.
func imageBucket() string {
	if b := os.Getenv("MINIO_BUCKET"); b != "" {
		return b
	}
	return defaultImageBucket
}

// UploadProductImage envoie une image produit dans MinIO et retourne son URL publique.
// L'objet est nommé <productID>/<uuid><ext> pour éviter les collisions.
func UploadProductImage(ctx context.Context, productID string, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	objectName := fmt.Sprintf("%s/%s%s", productID, uuid.NewString(), ext)

	_, err = database.MinIO.PutObject(ctx, imageBucket(), objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	publicURL := fmt.Sprintf("http://%s/%s/%s", os.Getenv("MINIO_ENDPOINT"), imageBucket(), objectName)
	log.Println("📤 Image envoyée :", objectName)
	return publicURL, nil
}

// DeleteProductImage supprime un objet à partir de son URL publique.
func DeleteProductImage(ctx context.Context, imageURL string) error {
	if database.MinIO == nil {
		return fmt.Errorf("MinIO non initialisé")
	}

	key := objectKeyFromURL(imageURL)
	if key == "" {
		return fmt.Errorf("URL d'image invalide : %s", imageURL)
	}
	return database.MinIO.RemoveObject(ctx, imageBucket(), key, minio.RemoveObjectOptions{})
}

// GenerateSignedURL génère une URL signée avec expiration pour un objet du bucket.
func GenerateSignedURL(ctx context.Context, objectPath string, duration time.Duration) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	key := objectKeyFromURL(objectPath)
	if key == "" {
		key = objectPath
	}

	presignedURL, err := database.MinIO.PresignedGetObject(ctx, imageBucket(), key, duration, make(url.Values))
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

// objectKeyFromURL extrait la clé objet d'une URL publique MinIO.
func objectKeyFromURL(raw string) string {
	marker := "/" + imageBucket() + "/"
	idx := strings.Index(raw, marker)
	if idx < 0 {
		return ""
	}
	return raw[idx+len(marker):]
}
