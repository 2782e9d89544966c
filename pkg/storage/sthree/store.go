// Copyright © 2018 One Concern

// Package sthree implements a storage backend on AWS S3 or any S3-compatible API.
package sthree

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/oneconcern/pkgreg/pkg/storage"
	"github.com/oneconcern/pkgreg/pkg/storage/status"
)

// PageSize is the number of keys fetched per listing call
const PageSize = 1000

// Option configures the S3 store
type Option func(*s3FS)

// Bucket sets the target bucket
func Bucket(bucket string) Option {
	return func(fs *s3FS) {
		fs.bucket = bucket
	}
}

// AWSConfig sets the AWS SDK configuration (region, endpoint, credentials...)
func AWSConfig(cfg *aws.Config) Option {
	return func(fs *s3FS) {
		fs.awsConfig = cfg
	}
}

// New builds a S3-backed store
func New(option Option, options ...Option) (storage.Store, error) {
	fs := new(s3FS)
	option(fs)
	for _, apply := range options {
		apply(fs)
	}
	if fs.bucket == "" {
		return nil, status.ErrInvalidResource.Wrapf("a bucket is required")
	}

	sess, err := session.NewSession(fs.awsConfig)
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	fs.s3 = s3.New(sess)
	fs.uploader = s3manager.NewUploaderWithClient(fs.s3)
	return fs, nil
}

type s3FS struct {
	bucket    string
	awsConfig *aws.Config
	s3        *s3.S3
	uploader  *s3manager.Uploader
}

func (s *s3FS) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	return false, filterErrNotExists(toSentinelErrors(err))
}

func (s *s3FS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return obj.Body, nil
}

// Put uploads an object. Exclusive puts check for existence first: this is not atomic.
func (s *s3FS) Put(ctx context.Context, key string, rdr io.Reader, exclusive bool) error {
	if exclusive {
		has, err := s.Has(ctx, key)
		if err != nil {
			return err
		}
		if has {
			return status.ErrExists.Wrapf("key %q", key)
		}
	}
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   rdr,
	})
	return toSentinelErrors(err)
}

func (s *s3FS) Delete(ctx context.Context, key string) error {
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return filterErrNotExists(toSentinelErrors(err))
}

func (s *s3FS) Keys(ctx context.Context) ([]string, error) {
	return s.KeysPrefix(ctx, "")
}

func (s *s3FS) KeysPrefix(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	eachPage := func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if key != "" {
				keys = append(keys, key)
			}
		}
		return true
	}

	params := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int64(PageSize),
	}
	if prefix != "" {
		params.Prefix = aws.String(prefix)
	}

	if err := s.s3.ListObjectsV2PagesWithContext(ctx, params, eachPage); err != nil {
		return nil, toSentinelErrors(err)
	}
	return keys, nil
}

func (s *s3FS) Clear(ctx context.Context) error {
	params := &s3.ListObjectsInput{Bucket: aws.String(s.bucket)}
	del := s3manager.NewBatchDeleteWithClient(s.s3)
	return toSentinelErrors(del.Delete(ctx, s3manager.NewDeleteListIterator(s.s3, params)))
}

func (s *s3FS) String() string {
	return "s3@" + s.bucket
}
