// Package remote mirrors local stage artifacts to Azure Blob Storage so a
// curated dataset can be shared without re-running the pipeline.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"github.com/codechat/curator/internal/artifact"
	"github.com/codechat/curator/internal/pipeline"
)

// Mirror pushes artifact files to one blob container. Authentication uses the
// default Azure credential chain (environment, workload identity, CLI login).
type Mirror struct {
	client        *azblob.Client
	container     string
	logger        *slog.Logger
	containerInit bool
}

func NewMirror(accountURL, container string, logger *slog.Logger) (*Mirror, error) {
	if accountURL == "" || container == "" {
		return nil, &pipeline.ConfigError{
			Msg:    "remote mirror is not configured",
			Remedy: "set remote.account_url and remote.container in the config file",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("building azure credential: %w", err)
	}
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("building blob client: %w", err)
	}
	return &Mirror{client: client, container: container, logger: logger}, nil
}

// Push uploads every artifact file in the store, skipping checkpoint logs:
// those are resume state for a run in flight, not publishable output. Returns
// the number of files uploaded.
func (m *Mirror) Push(ctx context.Context, store *artifact.Store) (int, error) {
	paths, err := store.List()
	if err != nil {
		return 0, fmt.Errorf("listing artifacts: %w", err)
	}

	uploaded := 0
	for _, path := range paths {
		if !strings.HasSuffix(path, artifact.Ext) {
			continue
		}
		if err := m.uploadFile(ctx, path); err != nil {
			return uploaded, err
		}
		uploaded++
	}
	return uploaded, nil
}

func (m *Mirror) uploadFile(ctx context.Context, path string) error {
	if err := m.ensureContainer(ctx); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	name := filepath.Base(path)
	blobClient := m.client.ServiceClient().
		NewContainerClient(m.container).
		NewBlockBlobClient(name)

	_, err = blobClient.UploadBuffer(ctx, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: to.Ptr("application/zstd"),
		},
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	m.logger.Info("uploaded artifact", "blob", name, "bytes", len(data))
	return nil
}

func (m *Mirror) ensureContainer(ctx context.Context) error {
	if m.containerInit {
		return nil
	}
	_, err := m.client.CreateContainer(ctx, m.container, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "ContainerAlreadyExists" {
			m.containerInit = true
			return nil
		}
		return fmt.Errorf("ensuring container %s: %w", m.container, err)
	}
	m.containerInit = true
	return nil
}
