package emit

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Session owns the sequence counter used to disambiguate structurally
// identical procedures, so two independent calls to [Emit] never share
// state (spec.md's note that this counter must be scoped per compilation,
// not a true process-wide global, grounded on compiled-regex-core's
// functions.rs using a `static mut PROG_COUNTER` — the one part of that
// file this port deliberately does NOT imitate).
type Session struct {
	seq    uint64
	tables map[string]string // range-table name -> rendered Go source
}

// NewSession returns a fresh, independent naming session.
func NewSession() *Session {
	return &Session{tables: make(map[string]string)}
}

func (s *Session) next() uint64 {
	s.seq++
	return s.seq
}

// hashName derives a collision-safe, guaranteed-valid Go identifier from
// body and the session's current sequence number, following
// compiled-regex-core's hash_name! macro: SHA-256 over (body, sequence),
// hex-encoded, with a prefix that also doubles as a guard against an
// identifier starting with a digit.
func (s *Session) hashName(prefix byte, body string) string {
	seq := s.next()

	h := sha256.New()
	h.Write([]byte(body))
	var seqBytes [8]byte
	binary.LittleEndian.PutUint64(seqBytes[:], seq)
	h.Write(seqBytes[:])

	sum := h.Sum(nil)
	name := make([]byte, 0, 2+1+hex.EncodedLen(len(sum)))
	name = append(name, '_', '_', prefix)
	name = hex.AppendEncode(name, sum)
	return string(name)
}

// funcName names an emitted matcher procedure.
func (s *Session) funcName(body string) string {
	return s.hashName('F', body)
}

// rangeTableName names an emitted character-range table.
func (s *Session) rangeTableName(body string) string {
	return s.hashName('R', body)
}
