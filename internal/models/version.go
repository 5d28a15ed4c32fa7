package models

// Version describes a published game build
type Version struct {
	Major      int    `json:"major"`
	Minor      int    `json:"minor"`
	Patch      int    `json:"patch"`
	Build      int    `json:"build"`
	Filepath   string `json:"path"`
	HashSHA1   string `json:"hash_sha1"`
	HashSHA256 string `json:"hash_sha256"`
	HashSHA512 string `json:"hash_sha512"`
	HashMD5    string `json:"hash_md5"`
}
