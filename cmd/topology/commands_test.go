package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
)

const renderManifest = `apiVersion: serving.knative.dev/v1
kind: Service
metadata:
  name: greeter
  namespace: demo
  uid: uid-greeter
`

func TestRootCmd(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	rootCmd := createRootCommand()
	rootCmd.SetOut(&bytes.Buffer{})

	g.Expect(rootCmd.Execute()).To(Succeed())
}

func TestServeCmdFlagValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		expErr bool
	}{
		{
			name:   "missing manifest dir",
			args:   nil,
			expErr: true,
		},
		{
			name:   "invalid port",
			args:   []string{"--manifest-dir=/tmp/manifests", "--port=80"},
			expErr: true,
		},
		{
			name:   "empty manifest dir",
			args:   []string{"--manifest-dir="},
			expErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			cmd := createServeCommand()
			cmd.SetArgs(test.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()
			if test.expErr {
				g.Expect(err).To(HaveOccurred())
			} else {
				g.Expect(err).ToNot(HaveOccurred())
			}
		})
	}
}

func TestRenderCmd(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	g.Expect(os.WriteFile(filepath.Join(dir, "service.yaml"), []byte(renderManifest), 0o600)).To(Succeed())

	out := &bytes.Buffer{}
	cmd := createRenderCommand()
	cmd.SetArgs([]string{"--manifest-dir=" + dir})
	cmd.SetOut(out)

	g.Expect(cmd.Execute()).To(Succeed())
	g.Expect(out.String()).To(ContainSubstring(`"id": "uid-greeter"`))
	g.Expect(out.String()).To(ContainSubstring(`"type": "ksservice"`))
}

func TestRenderCmdMissingDir(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := createRenderCommand()
	cmd.SetArgs([]string{"--manifest-dir=" + filepath.Join(t.TempDir(), "absent")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	g.Expect(cmd.Execute()).ToNot(Succeed())
}
