package models

// HashAlgorithm names a digest algorithm.
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "SHA-256"
)

// Hash is a content digest of a package file
type Hash struct {
	Algorithm HashAlgorithm
	Value     string
}

// NewSHA256 returns a SHA-256 Hash with the given hex value.
func NewSHA256(value string) Hash {
	return Hash{Algorithm: SHA256, Value: value}
}
