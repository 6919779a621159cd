package domain

import "strings"

// RecordDelimiter separates the identifier from the credential.
const RecordDelimiter = ":"

// SecretRecord is an opaque "identifier:credential" string. It is stored and
// issued verbatim.
type SecretRecord string

// ParseRecord trims a raw line and reports whether it is a valid record.
func ParseRecord(line string) (SecretRecord, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || !strings.Contains(trimmed, RecordDelimiter) {
		return "", false
	}
	return SecretRecord(trimmed), true
}

// Split returns the identifier and credential, splitting on the first
// delimiter only. Missing parts come back empty.
func (r SecretRecord) Split() (identifier, credential string) {
	parts := strings.SplitN(string(r), RecordDelimiter, 2)
	identifier = parts[0]
	if len(parts) > 1 {
		credential = parts[1]
	}
	return identifier, credential
}

// Identifier returns the part before the first delimiter.
func (r SecretRecord) Identifier() string {
	id, _ := r.Split()
	return id
}

func (r SecretRecord) String() string { return string(r) }
