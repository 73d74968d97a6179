package main

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestValidatePort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  int
		expErr bool
	}{
		{
			name:   "valid",
			value:  8080,
			expErr: false,
		},
		{
			name:   "invalid - below range",
			value:  1023,
			expErr: true,
		},
		{
			name:   "invalid - above range",
			value:  65536,
			expErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			err := validatePort(test.value)

			if test.expErr {
				g.Expect(err).To(HaveOccurred())
			} else {
				g.Expect(err).ToNot(HaveOccurred())
			}
		})
	}
}

func TestValidateCategoryKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		expErr bool
	}{
		{
			name:   "valid - fixed category",
			value:  "ksservices",
			expErr: false,
		},
		{
			name:   "valid - dynamic category",
			value:  "pingsources.sources.knative.dev",
			expErr: false,
		},
		{
			name:   "invalid - empty",
			value:  "",
			expErr: true,
		},
		{
			name:   "invalid - uppercase",
			value:  "PingSources",
			expErr: true,
		},
		{
			name:   "invalid - spaces",
			value:  "ping sources",
			expErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			err := validateCategoryKey(test.value)

			if test.expErr {
				g.Expect(err).To(HaveOccurred())
			} else {
				g.Expect(err).ToNot(HaveOccurred())
			}
		})
	}
}

func TestValidateOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		expErr bool
	}{
		{
			name:   "valid - http",
			value:  "http://localhost:9000",
			expErr: false,
		},
		{
			name:   "valid - https",
			value:  "https://console.example.com",
			expErr: false,
		},
		{
			name:   "invalid - no scheme",
			value:  "console.example.com",
			expErr: true,
		},
		{
			name:   "invalid - wrong scheme",
			value:  "ftp://console.example.com",
			expErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			err := validateOrigin(test.value)

			if test.expErr {
				g.Expect(err).To(HaveOccurred())
			} else {
				g.Expect(err).ToNot(HaveOccurred())
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		expErr bool
	}{
		{
			name:   "valid - json",
			value:  "json",
			expErr: false,
		},
		{
			name:   "valid - yaml",
			value:  "yaml",
			expErr: false,
		},
		{
			name:   "invalid",
			value:  "xml",
			expErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			err := validateFormat(test.value)

			if test.expErr {
				g.Expect(err).To(HaveOccurred())
			} else {
				g.Expect(err).ToNot(HaveOccurred())
			}
		})
	}
}
