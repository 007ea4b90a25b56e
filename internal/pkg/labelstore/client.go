package labelstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
)

// Client uploads courier shipping labels to S3-compatible storage so the
// warehouse can reprint them after the courier API stops serving the PDF.
type Client struct {
	s3Client *s3.Client
	config   *Config
}

// NewClient creates a label store client from config.
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("label store is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	client := &Client{
		s3Client: s3Client,
		config:   cfg,
	}

	log.Infof("[LabelStore] Initialized S3 client for bucket: %s", cfg.Bucket)
	return client, nil
}

// StoreLabel uploads a label PDF and returns its object key.
func (c *Client) StoreLabel(ctx context.Context, orderID uint, trackingNumber string, label []byte) (string, error) {
	key := fmt.Sprintf("%s/order-%d/%s.pdf", c.config.KeyPrefix, orderID, trackingNumber)

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(label),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload label for order %d: %w", orderID, err)
	}

	log.Infof("[LabelStore] Stored label %s (%d bytes)", key, len(label))
	return key, nil
}
