package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"esmcat/internal/config"
)

// azureAPI is the subset of blob operations the store uses.
type azureAPI interface {
	GetProperties(ctx context.Context, container, key string) error
	DownloadStream(ctx context.Context, container, key string) (io.ReadCloser, error)
}

type azureClient struct {
	client *azblob.Client
}

func (c *azureClient) GetProperties(ctx context.Context, container, key string) error {
	_, err := c.client.ServiceClient().NewContainerClient(container).NewBlobClient(key).GetProperties(ctx, nil)
	return err
}

func (c *azureClient) DownloadStream(ctx context.Context, container, key string) (io.ReadCloser, error) {
	resp, err := c.client.DownloadStream(ctx, container, key, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// AzureStore probes and fetches az:// and abfss:// blobs. Clients are created
// per storage account on first use.
type AzureStore struct {
	defaultAccount string
	accountKey     string
	newClient      func(account string) (azureAPI, error)

	mu      sync.Mutex
	clients map[string]azureAPI
}

// NewAzureStore creates an AzureStore. The shared key, when configured,
// applies to the configured account only; other accounts are read anonymously.
func NewAzureStore(cfg *config.Config) *AzureStore {
	s := &AzureStore{clients: map[string]azureAPI{}}
	if cfg.AzureAccountName != nil {
		s.defaultAccount = *cfg.AzureAccountName
	}
	if cfg.AzureAccountKey != nil {
		s.accountKey = *cfg.AzureAccountKey
	}
	s.newClient = s.connect
	return s
}

func (s *AzureStore) connect(account string) (azureAPI, error) {
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", account)
	if s.accountKey != "" && account == s.defaultAccount {
		cred, err := azblob.NewSharedKeyCredential(account, s.accountKey)
		if err != nil {
			return nil, fmt.Errorf("create shared key credential: %w", err)
		}
		client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create Azure blob client: %w", err)
		}
		return &azureClient{client: client}, nil
	}
	client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &azureClient{client: client}, nil
}

func (s *AzureStore) clientFor(u *url.URL) (azureAPI, AzureLocation, error) {
	loc, err := azureLocation(u)
	if err != nil {
		return nil, loc, err
	}
	account := loc.Account
	if account == "" {
		account = s.defaultAccount
	}
	if account == "" {
		return nil, loc, fmt.Errorf("AZURE_ACCOUNT_NAME is required for %q", u.Redacted())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[account]; ok {
		return c, loc, nil
	}
	c, err := s.newClient(account)
	if err != nil {
		return nil, loc, err
	}
	s.clients[account] = c
	return c, loc, nil
}

// Probe fetches the blob properties.
func (s *AzureStore) Probe(ctx context.Context, u *url.URL) error {
	c, loc, err := s.clientFor(u)
	if err != nil {
		return err
	}
	if err := c.GetProperties(ctx, loc.Container, loc.Key); err != nil {
		return fmt.Errorf("properties %q: %w", u.Redacted(), err)
	}
	return nil
}

// Open downloads the blob as a stream.
func (s *AzureStore) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	c, loc, err := s.clientFor(u)
	if err != nil {
		return nil, err
	}
	body, err := c.DownloadStream(ctx, loc.Container, loc.Key)
	if err != nil {
		return nil, fmt.Errorf("download %q: %w", u.Redacted(), err)
	}
	return body, nil
}
