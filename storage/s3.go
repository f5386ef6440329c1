package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/ruteri/registration-form/interfaces"
)

// S3Store implements interfaces.AccountStore on Amazon S3 or a compatible
// service. Accounts are JSON objects under <prefix>/accounts/.
type S3Store struct {
	client         s3iface.S3API
	writeClient    s3iface.S3API
	bucketName     string
	prefix         string
	log            *slog.Logger
	locationURI    string
	hasWriteAccess bool
}

// NewS3Store creates a new S3 account store.
// Without accessKey and secretKey the store can only read public objects.
func NewS3Store(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Store, error) {
	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if accessKey != "" {
		uri = fmt.Sprintf("s3://%s:***@%s/%s?region=%s", accessKey, bucketName, prefix, region)
	}
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	baseCfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		baseCfg.Endpoint = aws.String(endpoint)
		// MinIO and most self-hosted endpoints don't serve virtual-host buckets.
		baseCfg.S3ForcePathStyle = aws.Bool(true)
	}

	baseSess, err := session.NewSession(&baseCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	readClient := s3.New(baseSess)

	hasWriteAccess := accessKey != "" && secretKey != ""
	var writeClient s3iface.S3API = readClient
	if hasWriteAccess {
		writeCfg := baseCfg.Copy()
		writeCfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")

		writeSess, err := session.NewSession(writeCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS write session: %w", err)
		}
		writeClient = s3.New(writeSess)
	} else {
		log.Warn("No S3 credentials provided - account creation will fail unless bucket is public writable")
	}

	return newS3StoreWithClients(readClient, writeClient, bucketName, prefix, uri, hasWriteAccess, log), nil
}

func newS3StoreWithClients(client, writeClient s3iface.S3API, bucketName, prefix, uri string, hasWriteAccess bool, log *slog.Logger) *S3Store {
	return &S3Store{
		client:         client,
		writeClient:    writeClient,
		bucketName:     bucketName,
		prefix:         strings.Trim(prefix, "/"),
		log:            log,
		locationURI:    uri,
		hasWriteAccess: hasWriteAccess,
	}
}

// Create uploads the account unless an object already exists for its
// account number. The existence check and the upload are not atomic; the
// signup handler serializes creation.
func (b *S3Store) Create(ctx context.Context, account *interfaces.Account) error {
	if !interfaces.ValidAccountNumber(account.AccountNumber) {
		return fmt.Errorf("invalid account number %q", account.AccountNumber)
	}

	start := time.Now()
	key := b.getObjectKey(account.AccountNumber)

	_, err := b.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if err == nil {
		return interfaces.ErrAccountExists
	}
	if !isS3NotFound(err) {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	if err := b.putAccount(ctx, key, account); err != nil {
		return err
	}

	b.log.Debug("Stored account in S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Update overwrites an existing account object.
func (b *S3Store) Update(ctx context.Context, account *interfaces.Account) error {
	if !interfaces.ValidAccountNumber(account.AccountNumber) {
		return interfaces.ErrAccountNotFound
	}

	key := b.getObjectKey(account.AccountNumber)
	_, err := b.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if isS3NotFound(err) {
		return interfaces.ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	if err := b.putAccount(ctx, key, account); err != nil {
		return err
	}
	b.log.Debug("Updated account in S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key))
	return nil
}

func (b *S3Store) putAccount(ctx context.Context, key string, account *interfaces.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}

	_, err = b.writeClient.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		if !b.hasWriteAccess {
			return fmt.Errorf("failed to upload account to S3 (no write credentials provided): %w", err)
		}
		return fmt.Errorf("failed to upload account to S3: %w", err)
	}
	return nil
}

// Fetch downloads and decodes an account object.
// Returns ErrAccountNotFound if the object doesn't exist.
func (b *S3Store) Fetch(ctx context.Context, accountNumber string) (*interfaces.Account, error) {
	if !interfaces.ValidAccountNumber(accountNumber) {
		return nil, interfaces.ErrAccountNotFound
	}

	start := time.Now()
	key := b.getObjectKey(accountNumber)

	result, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			b.log.Debug("Account not found in S3",
				slog.String("bucket", b.bucketName),
				slog.String("key", key),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrAccountNotFound
		}

		b.log.Error("Failed to get object from S3",
			slog.String("bucket", b.bucketName),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	var account interfaces.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to decode account %s: %w", accountNumber, err)
	}

	b.log.Debug("Fetched account from S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return &account, nil
}

// Count lists the account objects under the store prefix.
func (b *S3Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := b.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucketName),
		Prefix: aws.String(b.accountsPrefix()),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if strings.HasSuffix(aws.StringValue(obj.Key), ".json") {
				count++
			}
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	return count, nil
}

// Available checks if the S3 store is accessible by attempting to head the bucket.
func (b *S3Store) Available(ctx context.Context) bool {
	start := time.Now()

	_, err := b.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucketName),
	})
	if err != nil {
		b.log.Warn("S3 store unavailable",
			slog.String("bucket", b.bucketName),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return false
	}

	return true
}

// Name returns a unique identifier for this store.
func (b *S3Store) Name() string {
	return fmt.Sprintf("s3-%s", b.bucketName)
}

// LocationURI returns the URI that identifies this store.
func (b *S3Store) LocationURI() string {
	return b.locationURI
}

func (b *S3Store) accountsPrefix() string {
	return path.Join(b.prefix, accountsDir) + "/"
}

func (b *S3Store) getObjectKey(accountNumber string) string {
	return path.Join(b.prefix, accountsDir, accountNumber+".json")
}

func isS3NotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
