package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// FirebaseUploader upload lên Firebase Storage (bucket mặc định của project)
type FirebaseUploader struct {
	app        *firebase.App
	bucketName string
}

// NewFirebaseUploader khởi tạo Firebase Admin SDK với service account
func NewFirebaseUploader(ctx context.Context, projectID, bucket, credentialsPath string) (*FirebaseUploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("firebase storage bucket is required")
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     projectID,
		StorageBucket: bucket,
	}, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %v", err)
	}
	return &FirebaseUploader{app: app, bucketName: bucket}, nil
}

// Upload ghi object và trả về download URL kèm token
func (u *FirebaseUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	client, err := u.app.Storage(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get Firebase Storage client: %v", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return "", fmt.Errorf("failed to get storage bucket: %v", err)
	}

	token := uuid.NewString()
	w := bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object: %v", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %v", err)
	}

	logger.GetAppLogger().WithField("object", objectName).Info("[MEDIA] Image uploaded")
	return DownloadURL(u.bucketName, objectName, token), nil
}

// DownloadURL URL tải công khai của object Firebase Storage
func DownloadURL(bucket, objectName, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectName), token)
}
