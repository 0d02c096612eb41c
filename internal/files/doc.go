// Package files locates trade extracts on disk.
//
// Discovery lists the extracts of a directory ordered by modification time
// and resolves an input path that may name either a file or a directory
// holding dated extracts, in which case the newest one is used.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/data")
//	path, err := discovery.ResolveInput("extracts")
package files
