// Package utils provides small helpers shared across netpolicy.
//
// # Components
//
//   - Path utilities: resolve paths relative to the config directory
//   - File utilities: atomic writes and safe closing
//   - Profile lock: an exclusive advisory lock on the profile directory
//
// Path resolution:
//
//	absPath := utils.GetAbsolutePath("profile", "/etc/netpolicy")
//	// Returns: /etc/netpolicy/profile
//
// Locking a profile:
//
//	lock, err := utils.LockProfile("/etc/netpolicy/profile")
//	if err != nil {
//	    return err
//	}
//	defer lock.Unlock()
package utils
