package tree

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3 or S3-compatible client.
type S3Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// NewS3Client builds an S3 client. Static credentials are used when given,
// otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	}), nil
}

// Compile-time interface check.
var _ Lister = (*S3Lister)(nil)

// S3Lister lists every object under a bucket prefix. Object stores have no
// real directories, so a directory is any key ending in "/" or any proper
// prefix of a key. Kind always comes from that structure, never from the
// shape of a name.
type S3Lister struct {
	Client s3.ListObjectsV2APIClient
	Bucket string
	Prefix string
}

func (*S3Lister) Name() string { return "s3" }

func (l *S3Lister) root() string {
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// List pages through ListObjectsV2.
func (l *S3Lister) List(ctx context.Context) (*Snapshot, error) {
	prefix := strings.TrimPrefix(l.Prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	input := &s3.ListObjectsV2Input{Bucket: aws.String(l.Bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var entries []Entry
	seenDirs := make(map[string]bool)
	addDirs := func(rel string) {
		for dir := path.Dir(rel); dir != "." && dir != "/" && !seenDirs[dir]; dir = path.Dir(dir) {
			seenDirs[dir] = true
			entries = append(entries, Entry{RelPath: dir, Kind: Dir})
		}
	}

	paginator := s3.NewListObjectsV2Paginator(l.Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, listingErr(l.Name(), l.root(), err)
		}
		for _, obj := range page.Contents {
			key := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			rel, isDir := Normalize(key)
			if rel == "" {
				continue
			}
			addDirs(rel)
			if isDir {
				if !seenDirs[rel] {
					seenDirs[rel] = true
					entries = append(entries, Entry{RelPath: rel, Kind: Dir})
				}
				continue
			}
			entries = append(entries, Entry{RelPath: StripLinkMarker(rel), Kind: File})
		}
	}
	return NewSnapshot(l.root(), entries), nil
}
