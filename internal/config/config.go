// Package config resolves mcpsync's external configuration: the ModelScope
// API credential and the Chatbox registry path.
package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// APIKeyEnvVar names the environment variable consulted when no
	// credential is passed explicitly.
	APIKeyEnvVar = "MODELSCOPE_API_KEY"

	// RegistryPathEnvVar names the environment variable consulted when no
	// registry path is passed explicitly.
	RegistryPathEnvVar = "CHATBOX_CONFIG"

	// chatboxAppID is the Chatbox application directory name under the
	// platform config dir.
	chatboxAppID = "xyz.chatboxapp.app"

	// registryFileName is the Chatbox configuration file name.
	registryFileName = "config.json"
)

// LookupFunc reads a named environment variable, reporting whether it is set.
// It matches the signature of os.LookupEnv so tests can substitute their own.
type LookupFunc func(key string) (string, bool)

// ResolveAPIKey returns the credential to authenticate catalog requests with.
// An explicitly supplied key wins; otherwise the MODELSCOPE_API_KEY
// environment variable is consulted. Returns "" if neither is set.
func ResolveAPIKey(explicit string, lookup LookupFunc) string {
	if explicit != "" {
		return explicit
	}
	if lookup == nil {
		return ""
	}
	if v, ok := lookup(APIKeyEnvVar); ok {
		return v
	}
	return ""
}

// ResolveRegistryPath returns the Chatbox config file path to operate on.
// Precedence: explicit path, CHATBOX_CONFIG, then the platform default.
func ResolveRegistryPath(explicit string, lookup LookupFunc) string {
	if explicit != "" {
		return explicit
	}
	if lookup != nil {
		if v, ok := lookup(RegistryPathEnvVar); ok && v != "" {
			return v
		}
	}
	return DefaultRegistryPath()
}

// DefaultRegistryPath returns the Chatbox config location for the host OS:
// %AppData% on Windows, ~/Library/Application Support on macOS and
// ~/.config on Linux.
func DefaultRegistryPath() string {
	return filepath.Join(xdg.ConfigHome, chatboxAppID, registryFileName)
}
