package ui

// quietPresenter consumes events but produces no output.
type quietPresenter struct{}

func (*quietPresenter) Run(events <-chan Event) error {
	for range events {
		// Drain so the engine's sends never back up.
	}
	return nil
}

func (*quietPresenter) Summary() string {
	return ""
}
