package services

// optimistic applies an in-memory mutation before the persistence call and
// rolls the whole snapshot back if the call fails. apply must capture its
// snapshot and return the closure that restores it; commit is the
// persistence operation. The revert is all-or-nothing, never a partial
// patch.
func optimistic(apply func() (revert func()), commit func() error) error {
	revert := apply()
	if err := commit(); err != nil {
		revert()
		return err
	}
	return nil
}
