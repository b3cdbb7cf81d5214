package render

// SetCleanupHook registers fn to observe run directory cleanup.
func (o *Orchestrator) SetCleanupHook(fn func(dir string)) { o.onCleanup = fn }
