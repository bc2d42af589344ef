package imagehost

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
)

type R2Config struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	PublicURL       string `yaml:"public_url"`
	Region          string `yaml:"region"`

	// Endpoint overrides the R2 account endpoint, e.g. for a local MinIO.
	Endpoint string `yaml:"endpoint"`
}

func (c R2Config) Enabled() bool {
	return (c.AccountID != "" || c.Endpoint != "") && c.BucketName != ""
}

type R2Host struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       R2Config
}

func NewR2Host(cfg R2Config) *R2Host {
	if cfg.Region == "" {
		cfg.Region = "auto"
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:       cfg.Region,
		UsePathStyle: cfg.Endpoint != "",
	})
	return &R2Host{client: client, presigner: s3.NewPresignClient(client), cfg: cfg}
}

func (h *R2Host) PresignUpload(ctx context.Context, key, contentType string) (*PresignedUpload, error) {
	req, err := h.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.cfg.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = PresignExpiry
	})
	if err != nil {
		return nil, errors.Wrap(err, "presign upload")
	}
	return &PresignedUpload{
		UploadURL: req.URL,
		FileURL:   h.PublicURL(key),
		Key:       key,
		ExpiresIn: int(PresignExpiry.Seconds()),
	}, nil
}

func (h *R2Host) Exists(ctx context.Context, key string) (bool, error) {
	_, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
		return false, nil
	}
	return false, errors.Wrap(err, "head object")
}

// Delete removes keys in one batch request. Per-key failures reported by the
// bucket are returned as a single error naming every failed key.
func (h *R2Host) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
	}

	out, err := h.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(h.cfg.BucketName),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return errors.Wrap(err, "delete objects")
	}
	if len(out.Errors) > 0 {
		failed := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			failed = append(failed, fmt.Sprintf("%s (%s)", aws.ToString(e.Key), aws.ToString(e.Code)))
		}
		return errors.Errorf("delete objects: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (h *R2Host) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(h.cfg.PublicURL, "/"), key)
}
