package utils

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Storage uploads files to an S3-compatible object store. Avatars and
// task photos end up here; the database keeps only the returned URL.
type Storage struct {
	client   *s3.S3
	bucket   string
	endpoint string
}

func NewStorage(endpoint, region, bucket, accessKey, secretKey string) (*Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(region),
		Endpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentials(
			accessKey, secretKey, "",
		),
	})
	if err != nil {
		return nil, err
	}
	return &Storage{client: s3.New(sess), bucket: bucket, endpoint: endpoint}, nil
}

// UploadFile stores the bytes under folder/fileName with public-read
// access and returns the public URL.
func (st *Storage) UploadFile(file []byte, fileName string, folder string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := st.client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(st.bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	return fmt.Sprintf("%s/%s/%s", st.endpoint, st.bucket, filePath), nil
}
