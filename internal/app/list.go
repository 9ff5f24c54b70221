package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/xxxsen/s3browse/internal/storage"
)

// BucketPath maps a browse path onto a bucket prefix below root. Non-empty
// results always end with '/'.
func BucketPath(root, p string) string {
	p = strings.TrimLeft(p, "/")
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	root = strings.Trim(root, "/")
	if root == "" {
		return p
	}
	return root + "/" + p
}

// PrintFolder lists one folder level at the bucket prefix and writes it to out.
func PrintFolder(ctx context.Context, env *Env, prefix string, out io.Writer) error {
	listing, err := env.Store.List(ctx, storage.ListRequest{
		Bucket:      env.Bucket(),
		Prefix:      prefix,
		Credentials: env.Credentials,
	})
	if err != nil {
		return err
	}
	return writeListing(out, env.Bucket(), listing)
}

func writeListing(out io.Writer, bucket string, listing *storage.Listing) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "s3://%s/%s\n", bucket, listing.Prefix)
	for _, folder := range listing.Folders {
		fmt.Fprintf(tw, "DIR\t-\t-\t%s\n", folder)
	}
	for _, f := range listing.Files {
		modified := "-"
		if !f.LastModified.IsZero() {
			modified = f.LastModified.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "FILE\t%s\t%s\t%s\n", humanize.Bytes(uint64(f.Size)), modified, f.Key)
	}
	if len(listing.Folders)+len(listing.Files) == 0 {
		fmt.Fprintln(tw, "(empty)")
	}
	return tw.Flush()
}
