package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlmaLinux/alma-sbom/internal/models"
	"github.com/AlmaLinux/alma-sbom/internal/utils"
)

const (
	bashHash = "05dc1b806bd5456d40e3d7f882ead037aaf480c596e83fbfb6ab86be74a2d8d1"
	albsURL  = "https://build.almalinux.org"
)

// fakeClient serves records from memory
type fakeClient struct {
	records map[string]*Record
	err     error
}

func (f *fakeClient) Authenticate(_ context.Context, hash string) (*Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	return record, nil
}

func (f *fakeClient) AuthenticateFile(ctx context.Context, path string) (*Record, error) {
	sum, err := utils.CalculateChecksum(path)
	if err != nil {
		return nil, err
	}
	return f.Authenticate(ctx, sum.SHA256())
}

func structuredRecord(hash string, epoch interface{}) *Record {
	meta := map[string]interface{}{
		"sbom_api_ver":          "0.2",
		"name":                  "bash",
		"version":               "5.1.8",
		"release":               "9.el9",
		"arch":                  "x86_64",
		"sourcerpm":             "bash-5.1.8-9.el9.src.rpm",
		"build_host":            "x64-builder02.almalinux.org",
		"build_arch":            "x86_64",
		"build_id":              float64(11363),
		"built_by":              "eabdullin1 <55892454+eabdullin1@users.noreply.github.com>",
		"source_type":           "git",
		"git_url":               "https://git.almalinux.org/rpms/bash.git",
		"git_commit":            "4533026da95ca85fab57eafbc91c28a3a2dabd79",
		"git_ref":               "imports/c9/bash-5.1.8-9.el9",
		"alma_commit_sbom_hash": "a6ee7a1ae3c1c5a5e1a9d0fd2d7c6e1e3b0c2b7a7c1b4b0f4e3c2d1e0f9a8b7c",
	}
	if epoch != "missing" {
		meta["epoch"] = epoch
	}
	return &Record{
		Name:      "bash-5.1.8-9.el9.x86_64.rpm",
		Hash:      hash,
		Metadata:  meta,
		Timestamp: 1714500330,
	}
}

func filenameRecord(hash string) *Record {
	return &Record{
		Name: "bash-4.4.20-4.el8_6.x86_64.rpm",
		Hash: hash,
		Metadata: map[string]interface{}{
			"sbom_api":    "0.1",
			"build_host":  "x64-builder01.almalinux.org",
			"build_arch":  "x86_64",
			"build_id":    "4203",
			"built_by":    "someone <someone@almalinux.org>",
			"source_type": "srpm",
			"srpm_url":    "https://vault.almalinux.org/bash-4.4.20-4.el8_6.src.rpm",
			"srpm_sha256": "ffee",
			"srpm_nevra":  "bash-0:4.4.20-4.el8_6.src",
		},
		Timestamp: 1650000000,
	}
}

func newCollector(records ...*Record) *Collector {
	client := &fakeClient{records: map[string]*Record{}}
	for _, r := range records {
		client.records[r.Hash] = r
	}
	return NewCollector(client, albsURL)
}

func TestCollectByHashStructuredRecord(t *testing.T) {
	c := newCollector(structuredRecord(bashHash, nil))

	pkg, err := c.CollectByHash(context.Background(), bashHash)
	require.NoError(t, err)

	assert.Equal(t, "0:bash-5.1.8-9.el9", pkg.DocName())
	assert.Equal(t, "cpe:2.3:a:almalinux:bash:5.1.8-9.el9:*:*:*:*:*:*:*", pkg.CPE())
	assert.Equal(t, "pkg:rpm/almalinux/bash@5.1.8-9.el9?arch=x86_64&upstream=bash-5.1.8-9.el9.src.rpm", pkg.PURL())
	assert.Equal(t, []models.Hash{models.NewSHA256(bashHash)}, pkg.Hashes)
	assert.Equal(t, int64(1714500330), pkg.BuildTimestamp)

	assert.Equal(t, &models.PackageProperties{
		Epoch:     "0",
		Version:   "5.1.8",
		Release:   "9.el9",
		Arch:      "x86_64",
		BuildHost: "x64-builder02.almalinux.org",
		SourceRPM: "bash-5.1.8-9.el9.src.rpm",
		Timestamp: "1714500330",
	}, pkg.PackageProperties)

	require.NotNil(t, pkg.BuildProperties)
	assert.Equal(t, "11363", pkg.BuildProperties.BuildID)
	assert.Equal(t, "https://build.almalinux.org/build/11363", pkg.BuildProperties.BuildURL)
	assert.Equal(t, "rpm", pkg.BuildProperties.PackageType)

	git, ok := pkg.BuildProperties.Source.(*models.GitSource)
	require.True(t, ok)
	assert.Equal(t, "4533026da95ca85fab57eafbc91c28a3a2dabd79", git.Commit)
	assert.Equal(t, "https://git.almalinux.org/rpms/bash.git", git.URL)

	assert.Equal(t, bashHash, pkg.SBOMProperties.LedgerHash)
	assert.NoError(t, pkg.Validate())
}

func TestCollectByHashEpochSpellings(t *testing.T) {
	var docNames, cpes, purls []string
	for _, epoch := range []interface{}{"missing", nil, "None", "(none)"} {
		c := newCollector(structuredRecord(bashHash, epoch))

		pkg, err := c.CollectByHash(context.Background(), bashHash)
		require.NoError(t, err)
		assert.Equal(t, 0, pkg.NEVRA.Epoch)

		docNames = append(docNames, pkg.DocName())
		cpes = append(cpes, pkg.CPE())
		purls = append(purls, pkg.PURL())
	}

	for i := 1; i < len(docNames); i++ {
		assert.Equal(t, docNames[0], docNames[i])
		assert.Equal(t, cpes[0], cpes[i])
		assert.Equal(t, purls[0], purls[i])
	}
}

func TestCollectByHashFilenameRecord(t *testing.T) {
	c := newCollector(filenameRecord(bashHash))

	pkg, err := c.CollectByHash(context.Background(), bashHash)
	require.NoError(t, err)

	assert.Equal(t, &models.NEVRA{Name: "bash", Version: "4.4.20", Release: "4.el8_6", Arch: "x86_64"}, pkg.NEVRA)
	assert.Empty(t, pkg.SourceRPM)
	assert.Equal(t, "pkg:rpm/almalinux/bash@4.4.20-4.el8_6?arch=x86_64", pkg.PURL())

	srpm, ok := pkg.BuildProperties.Source.(*models.SrpmSource)
	require.True(t, ok)
	assert.Equal(t, "bash-0:4.4.20-4.el8_6.src", srpm.NEVRA)
	assert.Equal(t, "ffee", srpm.Checksum)
	assert.Equal(t, "https://build.almalinux.org/build/4203", pkg.BuildProperties.BuildURL)
}

func TestCollectByHashVersionDispatch(t *testing.T) {
	tests := []struct {
		name    string
		meta    map[string]interface{}
		wantErr error
	}{
		{
			name:    "unknown version",
			meta:    map[string]interface{}{"sbom_api_ver": "0.3", "source_type": "git"},
			wantErr: models.ErrUnsupportedSchemaVersion,
		},
		{
			name:    "no version",
			meta:    map[string]interface{}{"source_type": "git"},
			wantErr: models.ErrMalformedRecord,
		},
		{
			name:    "unknown source type",
			meta:    map[string]interface{}{"sbom_api": "0.1", "source_type": "tarball"},
			wantErr: models.ErrUnknownSourceType,
		},
		{
			name:    "missing source type",
			meta:    map[string]interface{}{"sbom_api": "0.1"},
			wantErr: models.ErrUnknownSourceType,
		},
		{
			name:    "structured record without name",
			meta:    map[string]interface{}{"sbom_api_ver": "0.2", "source_type": "git", "version": "1", "release": "1", "arch": "noarch"},
			wantErr: models.ErrMalformedRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCollector(&Record{Name: "bash-4.4.20-4.el8_6.x86_64.rpm", Hash: bashHash, Metadata: tt.meta})

			_, err := c.CollectByHash(context.Background(), bashHash)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), err.Error())
			assert.True(t, models.IsType(err, models.ErrMalformedInput))
		})
	}
}

func TestCollectByHashRejectsForeignRecord(t *testing.T) {
	client := &fakeClient{records: map[string]*Record{
		bashHash: structuredRecord("deadbeef", nil),
	}}
	c := NewCollector(client, albsURL)

	_, err := c.CollectByHash(context.Background(), bashHash)
	assert.True(t, errors.Is(err, models.ErrHashMismatch))
}

func TestCollectByHashMissingMetadata(t *testing.T) {
	c := newCollector(&Record{Name: "x", Hash: bashHash})

	_, err := c.CollectByHash(context.Background(), bashHash)
	assert.True(t, errors.Is(err, models.ErrMalformedRecord))
}

func TestCollectByHashNotFound(t *testing.T) {
	c := newCollector()

	_, err := c.CollectByHash(context.Background(), bashHash)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, models.IsType(err, models.ErrLedger))
}

func TestCollectByFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bash-5.1.8-9.el9.x86_64.rpm")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0644))
	fileHash := "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"

	c := newCollector(structuredRecord(fileHash, "1"))

	pkg, err := c.CollectByFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, pkg.NEVRA.Epoch)
	assert.Equal(t, "1:bash-5.1.8-9.el9", pkg.DocName())
	assert.Equal(t, []models.Hash{models.NewSHA256(fileHash)}, pkg.Hashes)
}

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		address string
		host    string
		port    int
		wantErr bool
	}{
		{address: "immudb.almalinux.org", host: "immudb.almalinux.org", port: 3322},
		{address: "localhost:3323", host: "localhost", port: 3323},
		{address: "localhost:port", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			host, port, err := splitAddress(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
		})
	}
}
