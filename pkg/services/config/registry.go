package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"gopkg.in/ini.v1"

	"github.com/de-tools/license-atlas/pkg/models/domain"
)

const DefaultProfile = "default"

// Profile carries the tenant identity and the credential used to talk to the
// directory service. Credentials come from the local Azure CLI session.
type Profile struct {
	domain.DirectoryProfile
	Credentials *azidentity.AzureCLICredential
}

// LoadProfile reads one profile section from ~/.azure/config (or the file at
// AZURE_CONFIG_PATH when set).
func LoadProfile(profile string) (*Profile, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	configPath := os.Getenv("AZURE_CONFIG_PATH")
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, ".azure", "config")
	}

	cfg, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load Azure config file: %w", err)
	}

	section, err := cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found in Azure config: %w", profile, err)
	}

	tenantID := section.Key("tenant").String()
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID not found in profile %s", profile)
	}

	credentials, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
		TenantID: tenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure CLI credential: %w", err)
	}

	return &Profile{
		DirectoryProfile: domain.DirectoryProfile{Name: profile, TenantID: tenantID},
		Credentials:      credentials,
	}, nil
}
