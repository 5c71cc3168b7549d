package redis

import "fmt"

// headerKey returns the Redis key holding the JSON-encoded header row
func (s *Storage) headerKey() string {
	return fmt.Sprintf("%s:sheet:header", s.cfg.KeyPrefix)
}

// rowsKey returns the Redis key for the LIST of JSON-encoded record rows
func (s *Storage) rowsKey() string {
	return fmt.Sprintf("%s:sheet:rows", s.cfg.KeyPrefix)
}

// LockKey returns the key used by the distributed transition lock
func LockKey(prefix string) string {
	return fmt.Sprintf("%s:lock:transitions", prefix)
}
