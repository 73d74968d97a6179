package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

func validatePort(port int) error {
	if port < 1024 || port > 65535 {
		return fmt.Errorf("port outside of valid port range [1024 - 65535]: %v", port)
	}
	return nil
}

// validateCategoryKey checks a snapshot category key, either a fixed name
// like "ksservices" or a GVR-style key like "pingsources.sources.knative.dev".
func validateCategoryKey(value string) error {
	if len(value) == 0 {
		return errors.New("must be set")
	}

	messages := validation.IsDNS1123Subdomain(value)
	if len(messages) > 0 {
		return fmt.Errorf("invalid category key %q: %s", value, strings.Join(messages, "; "))
	}

	return nil
}

func validatePath(value string) error {
	if len(value) == 0 {
		return errors.New("must be set")
	}
	return nil
}

func validateFormat(value string) error {
	if value != "json" && value != "yaml" {
		return fmt.Errorf("invalid format %q; must be json or yaml", value)
	}
	return nil
}

func validateOrigin(value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", value, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid origin %q: scheme must be http or https", value)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid origin %q: host must be set", value)
	}

	return nil
}
