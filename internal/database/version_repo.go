package database

import (
	"database/sql"
	"errors"

	"netcode-backend/internal/models"
)

var ErrNoVersions = errors.New("no versions published")

// VersionRepo handles game build version lookups
type VersionRepo struct{}

// NewVersionRepo creates a new version repository
func NewVersionRepo() *VersionRepo {
	return &VersionRepo{}
}

// Latest returns the newest published build, ordered by version number
func (r *VersionRepo) Latest() (*models.Version, error) {
	v := &models.Version{}

	err := DB.QueryRow(`
		SELECT version_major, version_minor, version_patch, version_build,
		       filepath, hash_sha1, hash_sha256, hash_sha512, hash_md5
		FROM versions
		ORDER BY version_major DESC, version_minor DESC, version_patch DESC, version_build DESC
		LIMIT 1
	`).Scan(
		&v.Major, &v.Minor, &v.Patch, &v.Build,
		&v.Filepath, &v.HashSHA1, &v.HashSHA256, &v.HashSHA512, &v.HashMD5,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNoVersions
	}
	if err != nil {
		return nil, err
	}

	return v, nil
}

// Insert publishes a new build version
func (r *VersionRepo) Insert(v *models.Version) error {
	_, err := DB.Exec(`
		INSERT INTO versions (version_major, version_minor, version_patch, version_build,
		                      filepath, hash_sha1, hash_sha256, hash_sha512, hash_md5)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.Major, v.Minor, v.Patch, v.Build,
		v.Filepath, v.HashSHA1, v.HashSHA256, v.HashSHA512, v.HashMD5)
	return err
}
