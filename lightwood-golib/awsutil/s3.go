package awsutil

import (
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/vbrnv/lightwood/lightwood-golib/envutil"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
)

// defaultRegion is used to discover the region of a bucket before reading from it.
var defaultRegion = envutil.GetenvDefault("AWS_REGION", "us-east-1")

// IsS3URI returns true if the path is an s3 uri.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ValidateURI parses uri and checks that it has the s3 scheme.
func ValidateURI(uri string) (*url.URL, error) {
	s3url, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if s3url.Scheme != "s3" {
		return nil, errors.Errorf("%s: url is not a s3 path", s3url.String())
	}
	if s3url.Host == "" {
		return nil, errors.Errorf("%s: s3 url has no bucket", s3url.String())
	}
	return s3url, nil
}

// NewS3Reader returns a io.ReadCloser that will read the contents
// of the file pointed to by the uri. URI will be of the form
// s3://bucket-name/path/to/file
func NewS3Reader(uri string) (io.ReadCloser, error) {
	s3url, err := ValidateURI(uri)
	if err != nil {
		return nil, err
	}
	return objectReader(s3url)
}

func objectReader(uri *url.URL) (io.ReadCloser, error) {
	region, err := objectRegion(uri)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to determine region")
	}

	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}

	// Re-create client for bucket's region, and get the object
	s3client := s3.New(sess, aws.NewConfig().WithRegion(region))

	key := strings.TrimPrefix(uri.Path, "/")
	out, err := s3client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(uri.Host),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting %s", uri.String())
	}
	return out.Body, nil
}

func objectRegion(uri *url.URL) (string, error) {
	sess, err := session.NewSession()
	if err != nil {
		return "", err
	}

	s3client := s3.New(sess, aws.NewConfig().WithRegion(defaultRegion))

	// Discover the region that this bucket is located in
	bucketLocOutput, err := s3client.GetBucketLocation(&s3.GetBucketLocationInput{
		Bucket: aws.String(uri.Host),
	})
	if err != nil {
		return "", err
	}

	if bucketLocOutput.LocationConstraint == nil || *bucketLocOutput.LocationConstraint == "" {
		return "us-east-1", nil
	}
	return *bucketLocOutput.LocationConstraint, nil
}
