package demo

// component holds the state of one node of the scripted tree.
type component struct {
	name        string
	marker      string
	usesContext bool
	concurrent  bool // has useTransition, useOptimistic and useCallback
	children    []*component

	mounted       bool
	count         int
	countChanged  bool
	reducer       int
	pendingAction string
	optimistic    int
	seenContext   int
}

func (c *component) setCount(n int) {
	if n != c.count {
		c.count = n
		c.countChanged = true
	}
}

func (c *component) dispatch(action string) {
	c.reducer++
	c.pendingAction = action
}

// settle is called once the component's effects have run.
func (c *component) settle(context int) {
	c.mounted = true
	c.countChanged = false
	c.pendingAction = ""
	c.seenContext = context
}
