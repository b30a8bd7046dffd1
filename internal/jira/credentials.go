package jira

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/lotas/ticketdeck/internal/config"
)

// Placeholder hint strings shown in empty settings inputs. A field still
// holding one of these counts as missing.
var placeholders = map[string]bool{
	"server url":        true,
	"https://":          true,
	"username":          true,
	"password":          true,
	"token":             true,
	"api token":         true,
	"http://proxy:port": true,
}

func isBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || placeholders[strings.ToLower(s)]
}

// ConfigError names the settings field that stopped a request from being built.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string { return "missing " + e.Field }

// Proxies holds the per-scheme proxy URLs.
type Proxies struct {
	HTTP  string
	HTTPS string
}

// RequestContext is everything a request needs besides its URL.
type RequestContext struct {
	Server  string
	Headers http.Header
	Proxy   *Proxies // nil when no proxy is configured
}

// BuildRequestContext validates cfg and derives auth headers and proxies.
// It never performs I/O.
func BuildRequestContext(cfg config.Config) (*RequestContext, error) {
	if isBlank(cfg.Server) {
		return nil, &ConfigError{Field: "server"}
	}

	h := make(http.Header)
	h.Set("Accept", "application/json")

	switch cfg.AuthType {
	case config.AuthToken:
		if isBlank(cfg.Token) {
			return nil, &ConfigError{Field: "token"}
		}
		h.Set("Authorization", "Bearer "+strings.TrimSpace(cfg.Token))
	default:
		if isBlank(cfg.Username) {
			return nil, &ConfigError{Field: "username"}
		}
		if isBlank(cfg.Password) {
			return nil, &ConfigError{Field: "password"}
		}
		cred := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		h.Set("Authorization", "Basic "+cred)
	}

	rc := &RequestContext{
		Server:  strings.TrimRight(strings.TrimSpace(cfg.Server), "/"),
		Headers: h,
	}
	if cfg.UsesProxy() {
		if isBlank(cfg.HTTPProxy) {
			return nil, &ConfigError{Field: "http_proxy"}
		}
		if isBlank(cfg.HTTPSProxy) {
			return nil, &ConfigError{Field: "https_proxy"}
		}
		rc.Proxy = &Proxies{HTTP: cfg.HTTPProxy, HTTPS: cfg.HTTPSProxy}
	}
	return rc, nil
}
