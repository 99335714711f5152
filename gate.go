package replay

// Authorize reports whether credential unlocks rec.
//
// A record without a password only accepts a missing credential, and a
// record with one only accepts that exact string. The comparison is plain
// string equality, not constant time.
func Authorize(rec *Record, credential *string) bool {
	if rec.Password == nil || credential == nil {
		return rec.Password == nil && credential == nil
	}
	return *rec.Password == *credential
}
