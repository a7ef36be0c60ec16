// Package fingerprint implements the content-addressed generation cache.
//
// A fingerprint identifies a generation request by what was asked for:
// topic, difficulty, question kind and the leading part of the reference
// material. Records are kept in a persistence.RecordStore and are treated as
// absent once older than the cache TTL.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

// ReferencePrefixLen is the number of reference characters that take part in
// the fingerprint.
const ReferencePrefixLen = 500

// Key returns the hex digest of topic|difficulty|kind, extended with
// |reference[:500] when a reference is present.
func Key(spec api.QuestionSpec) string {
	var b strings.Builder
	b.WriteString(spec.Topic)
	b.WriteByte('|')
	b.WriteString(string(spec.Difficulty))
	b.WriteByte('|')
	b.WriteString(string(spec.Kind))
	if spec.Reference != "" {
		b.WriteByte('|')
		b.WriteString(runePrefix(spec.Reference, ReferencePrefixLen))
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func runePrefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
