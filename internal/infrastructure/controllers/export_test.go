package controllers

// SetExit replaces the process exit of a controller in tests.
func (it *AffectedController) SetExit(fn func(code int)) { it.exit = fn }

// SetExit replaces the process exit of a controller in tests.
func (it *DeprecationsController) SetExit(fn func(code int)) { it.exit = fn }
