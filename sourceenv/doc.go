// Package sourceenv resolves configuration groups from environment variables.
//
// A variable belongs to group "database" when named <Prefix>DATABASE__<KEY>.
// Key normalization: POOL__MAX → pool.max, MAX_IDLE → max_idle
//
// Example:
//
//	resolver := sourceenv.New(sourceenv.Options{Prefix: "APP_"})
//	// APP_DATABASE__HOST=db.local → group "database", key "host"
package sourceenv
