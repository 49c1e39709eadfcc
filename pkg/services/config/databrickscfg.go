package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sdkconfig "github.com/databricks/databricks-sdk-go/config"
	"gopkg.in/ini.v1"

	"github.com/de-tools/service-atlas/pkg/store/client"
)

// DefaultProfileFile is the .databrickscfg location used when none is set.
func DefaultProfileFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".databrickscfg"
	}
	return filepath.Join(home, ".databrickscfg")
}

type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetConfig(ctx context.Context, profile string) (*sdkconfig.Config, error)
	// GetConnection adds the SQL warehouse keys of the profile.
	GetConnection(ctx context.Context, profile string) (client.DatabricksConfig, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load databricks profiles: %w", err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) section(profile string) (*ini.Section, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s not found", profile)
	}
	return section, nil
}

func (cr *cfgRegistry) GetConfig(_ context.Context, profile string) (*sdkconfig.Config, error) {
	section, err := cr.section(profile)
	if err != nil {
		return nil, err
	}

	host := section.Key("host").String()
	token := section.Key("token").String()

	return &sdkconfig.Config{
		Profile: profile,
		Host:    host,
		Token:   token,
	}, nil
}

func (cr *cfgRegistry) GetConnection(ctx context.Context, profile string) (client.DatabricksConfig, error) {
	cfg, err := cr.GetConfig(ctx, profile)
	if err != nil {
		return client.DatabricksConfig{}, err
	}
	section, _ := cr.section(profile)

	return client.DatabricksConfig{
		Host:     cfg.Host,
		Token:    cfg.Token,
		HTTPPath: section.Key("http_path").String(),
		Catalog:  section.Key("catalog").String(),
		Schema:   section.Key("schema").String(),
	}, nil
}
