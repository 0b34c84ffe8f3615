//go:build !unix

package copier

// Cross-volume renames are reported as plain errors on these platforms.
func isEXDEV(err error) bool {
	return false
}
