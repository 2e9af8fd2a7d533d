package snapshot

import "errors"

// ErrEncodeFailed covers both encoder refusal and file-write failure
// (spec §7's EncodeFailed kind).
var ErrEncodeFailed = errors.New("snapshot: encode failed")
