package utils

import (
	"errors"
	"fmt"
	"strings"

	sdk "github.com/bitwarden/sdk-go"
)

// BWSSecretsClient wraps an authenticated Bitwarden Secrets Manager client.
type BWSSecretsClient struct {
	bw    sdk.BitwardenClientInterface
	orgID string
}

// NewBWSSecretsClient logs in with accessToken against the default Bitwarden
// endpoints. A single attempt is made; startup fails fast on a bad token.
func NewBWSSecretsClient(accessToken, orgID string) (*BWSSecretsClient, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("bitwarden access token is empty")
	}
	if strings.TrimSpace(orgID) == "" {
		return nil, errors.New("bitwarden organization id is empty")
	}

	bw, err := sdk.NewBitwardenClient(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("initialising Bitwarden SDK client: %w", err)
	}
	if err := bw.AccessTokenLogin(accessToken, nil); err != nil {
		bw.Close()
		return nil, fmt.Errorf("bitwarden access-token login failed: %w", err)
	}
	return &BWSSecretsClient{bw: bw, orgID: orgID}, nil
}

// Close releases resources held by the underlying SDK client.
func (c *BWSSecretsClient) Close() {
	if c != nil && c.bw != nil {
		c.bw.Close()
	}
}

// GetBWSSecrets returns every key/value secret of the project named projectName.
func (c *BWSSecretsClient) GetBWSSecrets(projectName string) (map[string]string, error) {
	if strings.TrimSpace(projectName) == "" {
		return nil, errors.New("projectName must not be empty")
	}

	projectsResp, err := c.bw.Projects().List(c.orgID)
	if err != nil {
		return nil, fmt.Errorf("listing Bitwarden projects: %w", err)
	}

	var projectID string
	for _, p := range projectsResp.Data {
		if strings.EqualFold(p.Name, projectName) {
			projectID = p.ID
			break
		}
	}
	if projectID == "" {
		return nil, fmt.Errorf("project %q not found in organisation %s", projectName, c.orgID)
	}

	syncResp, err := c.bw.Secrets().Sync(c.orgID, nil)
	if err != nil {
		return nil, fmt.Errorf("syncing Bitwarden secrets: %w", err)
	}

	out := make(map[string]string)
	for _, s := range syncResp.Secrets {
		if s.ProjectID != nil && *s.ProjectID == projectID {
			out[s.Key] = s.Value
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no secrets found for project %q", projectName)
	}
	return out, nil
}
