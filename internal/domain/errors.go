package domain

import "fmt"

// StoreError: local store unreachable or constraint violation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// RemoteSyncError: a remote mirror call failed. Always contained by the caller.
type RemoteSyncError struct {
	Op     string
	ItemID int64
	Err    error
}

func (e *RemoteSyncError) Error() string {
	if e.ItemID == 0 {
		return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote %s item_id=%d: %v", e.Op, e.ItemID, e.Err)
}
func (e *RemoteSyncError) Unwrap() error { return e.Err }

// CacheError: cache store unreachable or write failed. Always contained by the caller.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string { return fmt.Sprintf("cache %s: %v", e.Op, e.Err) }
func (e *CacheError) Unwrap() error { return e.Err }

// DecodeError: malformed change notification payload.
type DecodeError struct {
	Payload string
	Reason  string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode notification: %s: %v", e.Reason, e.Err)
	}
	return "decode notification: " + e.Reason
}
func (e *DecodeError) Unwrap() error { return e.Err }
