package serverfx

import (
	"crypto/tls"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
)

func TestFileExists(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cert.pem")
	assert.False(t, fileExists(""))
	assert.False(t, fileExists(p))
	assert.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	assert.True(t, fileExists(p))
}

func TestNewServer_TLS13Only(t *testing.T) {
	srv := newServer(":0", http.NotFoundHandler())
	assert.Equal(t, uint16(tls.VersionTLS13), srv.TLSConfig.MinVersion)
	assert.Equal(t, uint16(tls.VersionTLS13), srv.TLSConfig.MaxVersion)
	assert.NotZero(t, srv.ReadTimeout)
}

func TestModule_GraphIsComplete(t *testing.T) {
	err := fx.ValidateApp(Module(Options{Service: "terakoya"}))
	assert.NoError(t, err)
}
