package service

import (
	"bytes"
	"context"
	"io"

	a "gamine/blog-api/aws"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Backend struct {
	client *a.S3Client
}

func (b *s3Backend) Save(name string, data []byte) error {
	uploader := manager.NewUploader(b.client.C)

	_, err := uploader.Upload(context.TODO(), &s3.PutObjectInput{
		Bucket: b.client.Bucket,
		Key:    &name,
		Body:   bytes.NewReader(data),
	})

	return err
}

func (b *s3Backend) Open(name string) (io.ReadCloser, error) {
	out, err := b.client.C.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: b.client.Bucket,
		Key:    &name,
	})
	if err != nil {
		return nil, err
	}

	return out.Body, nil
}

func (b *s3Backend) Remove(name string) error {
	_, err := b.client.C.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: b.client.Bucket,
		Key:    &name,
	})

	return err
}
