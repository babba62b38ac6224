package vip8

// Hook runs around the cycles of a console. The console is not locked while it runs.
type Hook func(c *Console)

// AddBeforeCycleHook adds a hook that will run before every cycle of the console
func (c *Console) AddBeforeCycleHook(h Hook) int {
	c.beforeCycleHooks = append(c.beforeCycleHooks, h)

	return len(c.beforeCycleHooks)
}

// AddAfterCycleHook adds a hook that will run after every cycle of the console
func (c *Console) AddAfterCycleHook(h Hook) int {
	c.afterCycleHooks = append(c.afterCycleHooks, h)

	return len(c.afterCycleHooks)
}

// AddErrorHook adds a hook that will run after a cycle fails
func (c *Console) AddErrorHook(h Hook) int {
	c.errorHooks = append(c.errorHooks, h)

	return len(c.errorHooks)
}

func (c *Console) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(c)
	}
}
