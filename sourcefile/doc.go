// Package sourcefile resolves configuration groups from YAML, JSON, or TOML files.
//
// A group "database" is read from database.yaml, database.yml, database.json and database.toml
// in every search path. Paths are listed from lowest to highest precedence, so the last
// directory wins when the same key appears twice. Format is detected from the extension.
//
// Example:
//
//	resolver := sourcefile.New(sourcefile.Options{Paths: []string{"defaults", "config"}})
//	loader := confgroup.NewLoader(resolver)
//
// Watch reports groups whose files change, so cached copies can be evicted with Loader.Forget.
package sourcefile
