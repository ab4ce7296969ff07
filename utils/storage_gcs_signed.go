package utils

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iamcredentials/v1"
)

type SignedUpload struct {
	URL       string    `json:"url"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
	Headers   []string  `json:"headers"`
}

// SignUpload produces a V4 signed PUT URL so clients upload large documents
// directly to the bucket instead of proxying bytes through the API.
func SignUpload(ctx context.Context, objectKey, contentType string, ttl time.Duration) (*SignedUpload, error) {
	objectKey, err := SanitizeObjectKey(objectKey)
	if err != nil {
		return nil, err
	}
	if !allowedUploadTypes[contentType] {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}
	if ttl <= 0 || ttl > time.Hour {
		ttl = time.Minute * 15
	}

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return nil, fmt.Errorf("GCS_BUCKET is not set")
	}

	expiresAt := time.Now().Add(ttl)
	opts := &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      "PUT",
		Expires:     expiresAt,
		ContentType: contentType,
	}

	if email, privateKey, err := loadSignerFromEnv(); err == nil {
		opts.GoogleAccessID = email
		opts.PrivateKey = privateKey
	} else {
		// Fall back to the IAM credentials API when no private key is mounted.
		// The runtime service account needs roles/iam.serviceAccountTokenCreator
		// on the signer account.
		email := strings.TrimSpace(os.Getenv("GCS_SIGNER_EMAIL"))
		if email == "" {
			return nil, fmt.Errorf("no GCS signing credentials configured")
		}
		svc, err := iamcredentials.NewService(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create iamcredentials service: %v", err)
		}
		opts.GoogleAccessID = email
		opts.SignBytes = func(payload []byte) ([]byte, error) {
			name := "projects/-/serviceAccounts/" + email
			resp, err := svc.Projects.ServiceAccounts.SignBlob(name, &iamcredentials.SignBlobRequest{
				Payload: base64.StdEncoding.EncodeToString(payload),
			}).Context(ctx).Do()
			if err != nil {
				return nil, err
			}
			return base64.StdEncoding.DecodeString(resp.SignedBlob)
		}
	}

	signedURL, err := storage.SignedURL(bucketName, objectKey, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload url: %v", err)
	}

	return &SignedUpload{
		URL:       signedURL,
		ObjectKey: objectKey,
		ExpiresAt: expiresAt,
		Headers:   []string{"Content-Type: " + contentType},
	}, nil
}

func loadSignerFromEnv() (string, []byte, error) {
	credsJSON := os.Getenv("GCS_CREDENTIALS_JSON")
	if credsJSON == "" {
		return "", nil, fmt.Errorf("GCS_CREDENTIALS_JSON is not set")
	}

	var sa struct {
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
	}
	if err := json.Unmarshal([]byte(credsJSON), &sa); err != nil {
		return "", nil, fmt.Errorf("failed to parse service account json: %v", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return "", nil, fmt.Errorf("service account json missing client_email or private_key")
	}
	return sa.ClientEmail, []byte(sa.PrivateKey), nil
}
