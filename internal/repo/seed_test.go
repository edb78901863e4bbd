package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.json")
	seed := `{
		"sites": [
			{"id": "site1", "visibility": "private", "members": [
				{"principalId": "userSite1", "role": "SiteManager"},
				{"principalId": "userMultiSite", "role": "SiteCollaborator"}
			]},
			{"id": "site2", "members": [
				{"principalId": "userSite2", "role": "SiteManager"}
			]}
		],
		"owners": {"node-1": "userSite2"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0600))

	directory, err := LoadDirectory(path)
	require.NoError(t, err)

	members, err := directory.GetSiteMembership(context.TODO(), "site1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Membership{
		{PrincipalID: "userSite1", Role: "SiteManager"},
		{PrincipalID: "userMultiSite", Role: "SiteCollaborator"},
	}, members)

	owner, err := directory.GetOwner(context.TODO(), "node-1")
	require.NoError(t, err)
	assert.Equal(t, "userSite2", owner)
}

func TestLoadDirectoryDefaultsVisibilityToPrivate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sites": [{"id": "site1"}]}`), 0600))

	directory, err := LoadDirectory(path)
	require.NoError(t, err)

	directory.mu.RLock()
	defer directory.mu.RUnlock()
	assert.Equal(t, SiteVisibilityPrivate, directory.sites["site1"].Visibility)
}

func TestLoadDirectoryMissingFile(t *testing.T) {
	_, err := LoadDirectory(filepath.Join(t.TempDir(), "no-such-file.json"))
	assert.Error(t, err)
}

func TestLoadDirectoryMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := LoadDirectory(path)
	assert.Error(t, err)
}
