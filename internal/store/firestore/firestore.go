// Package firestore backs store.Store with Cloud Firestore, the remote
// document database the wire contract was written for. Merge writes use the
// server-side ArrayUnion transform, so concurrent group joins add to the
// member set atomically instead of racing a read-modify-write.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	cf "cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"hearth/internal/store"
)

var _ store.Store = (*Client)(nil)

type Client struct {
	fs *cf.Client
}

// NewFromEnv creates a Firestore-backed store using environment variables.
// Required: FIRESTORE_PROJECT_ID. Optional: FIRESTORE_CREDENTIALS_FILE for
// explicit service-account auth (application default credentials and the
// FIRESTORE_EMULATOR_HOST emulator work without it).
func NewFromEnv(ctx context.Context) (*Client, error) {
	projectID := strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID"))
	if projectID == "" {
		return nil, errors.New("missing FIRESTORE_PROJECT_ID")
	}

	var opts []option.ClientOption
	if credsFile := strings.TrimSpace(os.Getenv("FIRESTORE_CREDENTIALS_FILE")); credsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credsFile))
	}

	fs, err := cf.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Client{fs: fs}, nil
}

func (c *Client) Close() error { return c.fs.Close() }

func (c *Client) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	snap, err := c.fs.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return snap.Data(), nil
}

func (c *Client) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	snaps, err := c.fs.Collection(collection).Where(q.Field, string(q.Op), q.Value).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s where %s %s: %w", collection, q.Field, q.Op, err)
	}
	docs := make([]store.Document, len(snaps))
	for i, snap := range snaps {
		docs[i] = store.Document{ID: snap.Ref.ID, Fields: snap.Data()}
	}
	return docs, nil
}

func (c *Client) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	data := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		data[key] = value
	}
	data["createdAt"] = cf.ServerTimestamp

	ref, _, err := c.fs.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (c *Client) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]cf.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, cf.Update{Path: path, Value: value})
	}
	if _, err := c.fs.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) MergeWrite(ctx context.Context, collection, id string, fields map[string]any) error {
	data := make(map[string]any, len(fields))
	for key, value := range fields {
		// String slices become add-to-set transforms; the server unions
		// them with the stored array.
		if elems, ok := value.([]string); ok {
			union := make([]any, len(elems))
			for i, e := range elems {
				union[i] = e
			}
			data[key] = cf.ArrayUnion(union...)
			continue
		}
		data[key] = value
	}
	if _, err := c.fs.Collection(collection).Doc(id).Set(ctx, data, cf.MergeAll); err != nil {
		return fmt.Errorf("merge write %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	iter := c.fs.Collection(collection).Query.OrderBy("createdAt", cf.Asc).Snapshots(ctx)

	sub := newSubscription(func() {
		cancel()
		iter.Stop()
	})
	go sub.run(iter)
	return sub, nil
}
