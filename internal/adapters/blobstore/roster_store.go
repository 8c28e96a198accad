package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/avast/retry-go"
	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
	"github.com/altruan/pulpobot/internal/domain/shared"
)

const (
	// DefaultBlobName is the roster blob inside the container
	DefaultBlobName = "pickers.json"

	retryAttempts = 3
	retryDelay    = 2 * time.Second
)

// RosterStore persists the picker roster as a JSON blob in Azure storage.
// It implements the picking.RosterStore port.
type RosterStore struct {
	client    *azblob.Client
	container string
	blobName  string
	logger    *zap.Logger
}

// NewRosterStore connects to the storage account behind the connection
// string. An empty connection string is a ConfigError; the caller falls back
// to the default roster.
func NewRosterStore(connectionString, container, blobName string, logger *zap.Logger) (*RosterStore, error) {
	if connectionString == "" {
		return nil, shared.NewConfigError("blob connection string", "not set")
	}
	if blobName == "" {
		blobName = DefaultBlobName
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return &RosterStore{
		client:    client,
		container: container,
		blobName:  blobName,
		logger:    logger,
	}, nil
}

// Load downloads and decodes the roster blob. A missing blob yields the
// default roster; transient download failures are retried.
func (s *RosterStore) Load(ctx context.Context) (picking.Roster, error) {
	var data []byte
	err := retry.Do(
		func() error {
			resp, err := s.client.DownloadStream(ctx, s.container, s.blobName, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			data, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !bloberror.HasCode(err, bloberror.BlobNotFound)
		}),
	)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			s.logger.Warn("roster blob missing, using default roster",
				zap.String("blob", s.blobName))
			return picking.DefaultRoster(), nil
		}
		return nil, fmt.Errorf("failed to download roster blob: %w", err)
	}

	var roster picking.Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to decode roster blob: %w", err)
	}
	return roster, nil
}

// Save uploads the roster, overwriting the previous blob
func (s *RosterStore) Save(ctx context.Context, roster picking.Roster) error {
	data, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}

	err = retry.Do(
		func() error {
			_, err := s.client.UploadStream(ctx, s.container, s.blobName, bytes.NewReader(data), nil)
			return err
		},
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upload roster blob: %w", err)
	}
	s.logger.Info("roster blob updated", zap.String("blob", s.blobName))
	return nil
}
