package sql

// AsUniqueConstraintError exposes the driver error mapping to tests.
func AsUniqueConstraintError(err error) error {
	return asUniqueConstraintError(err)
}
