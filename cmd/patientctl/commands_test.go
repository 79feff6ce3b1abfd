package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itakarlapalli/subcentre/internal/contact"
	"github.com/itakarlapalli/subcentre/internal/export"
	"github.com/itakarlapalli/subcentre/internal/patient"
	"github.com/itakarlapalli/subcentre/internal/patient/handler"
	"github.com/itakarlapalli/subcentre/internal/patient/service"
)

type captureRelay struct{ got []contact.Message }

func (c *captureRelay) Name() string { return "capture" }

func (c *captureRelay) Send(_ context.Context, m contact.Message) error {
	c.got = append(c.got, m)
	return nil
}

func startAPI(t *testing.T, relay contact.Relay) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g := gin.New()
	handler.RegisterPatientRoutes(g, service.NewMemoryService())
	contact.RegisterContactRoutes(g, contact.NewNotifier(relay))
	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api-url", url}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAddListEditDelete(t *testing.T) {
	url := startAPI(t, nil)

	out, err := run(t, url, "add", "--name", "Asha", "--age", "34", "--village", "Itakarlapalli")
	require.NoError(t, err)
	assert.Contains(t, out, "added patient 1 (Asha)")

	_, err = run(t, url, "add", "--name", "Ravi", "--age", "-4", "--village", "Garbham")
	require.Error(t, err)

	_, err = run(t, url, "add", "--name", "Ravi", "--age", "7", "--village", "Garbham")
	require.NoError(t, err)

	out, err = run(t, url, "list")
	require.NoError(t, err)
	assert.Regexp(t, `(?s)Ravi.*Asha`, out)

	out, err = run(t, url, "edit", "2", "--village", "Cheepurupalle")
	require.NoError(t, err)
	assert.Contains(t, out, "updated patient 1 (Asha, 34, Cheepurupalle)")

	_, err = run(t, url, "edit", "9")
	require.Error(t, err)

	out, err = run(t, url, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted patient 1")

	_, err = run(t, url, "delete", "1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Patient with ID 1 not found.")
}

func TestExportWritesFile(t *testing.T) {
	url := startAPI(t, nil)
	_, err := run(t, url, "add", "--name", "Asha", "--age", "34", "--village", "Itakarlapalli")
	require.NoError(t, err)

	dir := t.TempDir()
	out, err := run(t, url, "export", "--format", "excel", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 1 patients")

	data, err := os.ReadFile(filepath.Join(dir, "Itakarlapalli_Data.xlsx"))
	require.NoError(t, err)
	rows, err := export.ReadSpreadsheet(data)
	require.NoError(t, err)
	require.Equal(t, []export.Row{{Name: "Asha", Age: "34", Village: "Itakarlapalli"}}, rows)

	_, err = run(t, url, "export", "--format", "pdf", "--out", dir)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "Itakarlapalli_Data.pdf"))

	_, err = run(t, url, "export", "--format", "csv", "--out", dir)
	require.Error(t, err)
}

func TestMessage(t *testing.T) {
	relay := &captureRelay{}
	url := startAPI(t, relay)

	out, err := run(t, url, "message", "--name", "X", "--phone", "123", "--message", "hi")
	require.NoError(t, err)
	assert.Contains(t, out, "Message sent successfully")
	require.Len(t, relay.got, 1)
	assert.Equal(t, "", relay.got[0].Email)

	_, err = run(t, url, "message", "--name", "X", "--message", "hi")
	require.Error(t, err)
	require.Len(t, relay.got, 1)
}

// linkingArchive records uploads and hands out fake signed links.
type linkingArchive struct {
	keys    []string
	expires time.Duration
}

func (l *linkingArchive) Archive(_ context.Context, name string, _ []byte, _ string) (string, error) {
	key := "exports/2026/10/19/080000-" + name
	l.keys = append(l.keys, key)
	return key, nil
}

func (l *linkingArchive) PresignedURL(_ context.Context, key string, expires time.Duration) (string, error) {
	l.expires = expires
	return fmt.Sprintf("https://minio.local/subcentre-exports/%s?X-Amz-Expires=%d", key, int(expires.Seconds())), nil
}

func TestWriteExportPrintsDownloadLink(t *testing.T) {
	list := []*patient.Patient{{ID: 1, Name: "Asha", Age: 34, Village: "Itakarlapalli"}}
	path := filepath.Join(t.TempDir(), export.FormatPDF.FileName())
	arc := &linkingArchive{}

	var out bytes.Buffer
	require.NoError(t, writeExport(context.Background(), &out, path, export.FormatPDF, list, arc, time.Hour))
	require.Equal(t, []string{"exports/2026/10/19/080000-Itakarlapalli_Data.pdf"}, arc.keys)
	require.Equal(t, time.Hour, arc.expires)
	assert.Contains(t, out.String(), "archived as exports/2026/10/19/080000-Itakarlapalli_Data.pdf")
	assert.Contains(t, out.String(), "download link (valid 1h0m0s): https://minio.local/subcentre-exports/exports/2026/10/19/080000-Itakarlapalli_Data.pdf?X-Amz-Expires=3600")

	out.Reset()
	require.NoError(t, writeExport(context.Background(), &out, path, export.FormatPDF, list, arc, 0))
	assert.NotContains(t, out.String(), "download link")
}
