// Package secrets loads deployment secrets (database and Redis passwords)
// from a Vault KV engine into the process environment before config.Load.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

// VaultConfig locates the KV secret to load
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	// Overwrite replaces variables that are already set
	Overwrite bool
}

// VaultResult summarizes an ApplyVault call
type VaultResult struct {
	Loaded  int
	Skipped int
}

// VaultConfigFromEnv reads VAULT_* variables. Vault is off unless
// VAULT_ENABLED is true.
func VaultConfigFromEnv() VaultConfig {
	cfg := VaultConfig{
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     "secret",
		Path:      os.Getenv("VAULT_PATH"),
		KVVersion: 2,
		Timeout:   5 * time.Second,
	}
	cfg.Enabled, _ = strconv.ParseBool(os.Getenv("VAULT_ENABLED"))
	cfg.Overwrite, _ = strconv.ParseBool(os.Getenv("VAULT_OVERWRITE"))
	if v := os.Getenv("VAULT_MOUNT"); v != "" {
		cfg.Mount = v
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		cfg.KVVersion = v
	}
	if v, err := time.ParseDuration(os.Getenv("VAULT_TIMEOUT")); err == nil {
		cfg.Timeout = v
	}
	return cfg
}

// ApplyVault fetches the configured secret and exports each of its keys as
// an environment variable. It is a no-op when Vault is disabled.
func ApplyVault(ctx context.Context, cfg VaultConfig) (VaultResult, error) {
	if !cfg.Enabled {
		return VaultResult{}, nil
	}
	if cfg.Addr == "" || cfg.Token == "" || cfg.Path == "" {
		return VaultResult{}, apperrors.NewValidationError("VAULT_ADDR, VAULT_TOKEN and VAULT_PATH are required when VAULT_ENABLED is set")
	}

	data, err := fetchSecret(ctx, cfg)
	if err != nil {
		return VaultResult{}, err
	}

	var result VaultResult
	for key, value := range data {
		if !cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped++
			continue
		}
		if err := os.Setenv(key, envValue(value)); err != nil {
			return result, apperrors.NewInternalError("failed to export "+key, err)
		}
		result.Loaded++
	}

	log.Info().
		Str("path", cfg.Path).
		Int("loaded", result.Loaded).
		Int("skipped", result.Skipped).
		Msg("Applied Vault secrets")
	return result, nil
}

func fetchSecret(ctx context.Context, cfg VaultConfig) (map[string]interface{}, error) {
	secretPath := strings.Trim(cfg.Path, "/")
	mount := strings.Trim(cfg.Mount, "/")
	if cfg.KVVersion != 1 {
		mount += "/data"
	}
	url := fmt.Sprintf("%s/v1/%s/%s", strings.TrimRight(cfg.Addr, "/"), mount, secretPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid Vault address: " + err.Error())
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	resp, err := (&http.Client{Timeout: cfg.Timeout}).Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("vault request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read vault response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("vault returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	// KV v1 answers {"data": {...}}; v2 nests the secret one level deeper.
	raw, err := unwrapData(body)
	if err != nil {
		return nil, err
	}
	if cfg.KVVersion != 1 {
		if raw, err = unwrapData(raw); err != nil {
			return nil, err
		}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperrors.NewDecodeError("vault secret is not an object", err)
	}
	return data, nil
}

func unwrapData(body []byte) (json.RawMessage, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewDecodeError("invalid vault response", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, apperrors.NewDecodeError("vault response has no data", nil)
	}
	return envelope.Data, nil
}

func envValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		raw, _ := json.Marshal(v)
		return string(raw)
	}
}
