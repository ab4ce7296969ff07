package utils

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var (
	googleClient     *storage.Client
	googleClientOnce sync.Once
	googleClientErr  error
)

func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	googleClientOnce.Do(func() {
		credsJSON := os.Getenv("GCS_CREDENTIALS_JSON")
		if credsJSON != "" {
			googleClient, googleClientErr = storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credsJSON)))
			return
		}
		googleClient, googleClientErr = storage.NewClient(ctx)
	})
	return googleClient, googleClientErr
}

var allowedUploadTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/csv":   true,
	"text/plain": true,
}

// UploadFileToGCS streams a multipart upload into the bucket under objectKey and
// returns the access URL for the stored object.
func UploadFileToGCS(ctx context.Context, file multipart.File, header *multipart.FileHeader, objectKey string) (string, error) {
	contentType := header.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create storage client: %v", err)
	}

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return "", fmt.Errorf("GCS_BUCKET is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute*2)
	defer cancel()

	wc := client.Bucket(bucketName).Object(objectKey).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, file); err != nil {
		return "", fmt.Errorf("failed to write object: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %v", err)
	}

	return BuildObjectAccessURL(objectKey), nil
}

// UploadBytesToGCS writes an in-memory payload (report exports, thumbnails).
func UploadBytesToGCS(ctx context.Context, data []byte, contentType, objectKey string) (string, error) {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create storage client: %v", err)
	}

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return "", fmt.Errorf("GCS_BUCKET is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	wc := client.Bucket(bucketName).Object(objectKey).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		return "", fmt.Errorf("failed to write object: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %v", err)
	}

	return BuildObjectAccessURL(objectKey), nil
}

func DeleteFileFromGCS(ctx context.Context, fileURL string) error {
	objectKey := ExtractObjectKeyFromURL(fileURL)
	if objectKey == "" {
		return fmt.Errorf("could not resolve object key from url %q", fileURL)
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %v", err)
	}

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return fmt.Errorf("GCS_BUCKET is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	err = client.Bucket(bucketName).Object(objectKey).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func ObjectExistsInGCS(ctx context.Context, objectKey string) (bool, error) {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create storage client: %v", err)
	}

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return false, fmt.Errorf("GCS_BUCKET is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	_, err = client.Bucket(bucketName).Object(objectKey).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CheckFileExistInGCS resolves a stored URL back to its object key first.
func CheckFileExistInGCS(ctx context.Context, fileURL string) (bool, error) {
	objectKey := ExtractObjectKeyFromURL(fileURL)
	if objectKey == "" {
		return false, fmt.Errorf("could not resolve object key from url %q", fileURL)
	}
	return ObjectExistsInGCS(ctx, objectKey)
}

// ReadObjectFromGCS loads an object into memory, capped at limit bytes.
// Returns the payload and the stored content type.
func ReadObjectFromGCS(ctx context.Context, objectKey string, limit int64) ([]byte, string, error) {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create storage client: %v", err)
	}

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return nil, "", fmt.Errorf("GCS_BUCKET is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	obj := client.Bucket(bucketName).Object(objectKey)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, "", err
	}
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, "", err
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("object exceeds %d byte limit", limit)
	}
	return data, attrs.ContentType, nil
}

// SanitizeObjectKey rejects keys that escape the tenant prefix.
func SanitizeObjectKey(objectKey string) (string, error) {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" || strings.HasPrefix(objectKey, "/") || strings.Contains(objectKey, "..") {
		return "", fmt.Errorf("invalid object key")
	}
	return objectKey, nil
}
