// Package naming builds output paths for converted files and resolves
// collisions between sources that would map to the same output in one run.
package naming
