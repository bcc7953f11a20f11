package tree_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/linksync/internal/tree"
)

// pagedS3 serves keys in fixed-size pages keyed by continuation token.
type pagedS3 struct {
	err      error
	keys     []string
	pageSize int
	prefixes []string
}

func (p *pagedS3) ListObjectsV2(
	_ context.Context,
	in *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.prefixes = append(p.prefixes, aws.ToString(in.Prefix))

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+p.pageSize, len(p.keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(p.keys))}
	for _, k := range p.keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(p.keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func TestS3Lister_List(t *testing.T) {
	client := &pagedS3{
		pageSize: 2,
		keys: []string{
			"media/movies/",
			"media/movies/a.mkv",
			"media/movies/Film.2024/b.mkv",
			"media/shows/S01/e01.mkv.rclonelink",
			"media/empty.dir/",
		},
	}
	l := &tree.S3Lister{Client: client, Bucket: "bucket", Prefix: "media"}

	snap, err := l.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []tree.Entry{
		{RelPath: "empty.dir", Kind: tree.Dir},
		{RelPath: "movies", Kind: tree.Dir},
		{RelPath: "movies/Film.2024", Kind: tree.Dir},
		{RelPath: "movies/Film.2024/b.mkv", Kind: tree.File},
		{RelPath: "movies/a.mkv", Kind: tree.File},
		{RelPath: "shows", Kind: tree.Dir},
		{RelPath: "shows/S01", Kind: tree.Dir},
		{RelPath: "shows/S01/e01.mkv", Kind: tree.File},
	}, snap.Entries())

	assert.Len(t, client.prefixes, 3, "five keys in pages of two")
	assert.Equal(t, "media/", client.prefixes[0])
	assert.Equal(t, "s3://bucket/media", snap.Root())
}

func TestS3Lister_NoPrefix(t *testing.T) {
	client := &pagedS3{pageSize: 10, keys: []string{"a.mkv", "dir/b.mkv"}}
	l := &tree.S3Lister{Client: client, Bucket: "bucket"}

	snap, err := l.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, "", client.prefixes[0])
}

func TestS3Lister_Error(t *testing.T) {
	client := &pagedS3{err: errors.New("AccessDenied")}
	l := &tree.S3Lister{Client: client, Bucket: "bucket", Prefix: "media/"}

	_, err := l.List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, tree.ErrListing))
	assert.Contains(t, err.Error(), "AccessDenied")
}
