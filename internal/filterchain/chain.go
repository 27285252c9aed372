package filterchain

// Chain is an ordered list of filters. Inbound packets pass the filters
// front to back, outbound packets back to front, so the filter closest
// to the transport is always the first to see a read and the last to see
// a write.
type Chain struct {
	filters []Filter
}

// NewChain builds a chain from the given filters, ordered from the
// transport side towards the application side.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// RunRead walks the read path. It stops early when a filter returns
// Stop or fails; the error of a failing filter is returned to the
// caller untouched so it can branch on the error kind.
func (c *Chain) RunRead(ctx Context) error {
	for _, f := range c.filters {
		action, err := f.HandleRead(ctx)
		if err != nil {
			return err
		}
		if action == Stop {
			return nil
		}
	}
	return nil
}

// RunWrite walks the write path, visiting the filters in reverse order.
func (c *Chain) RunWrite(ctx Context) error {
	for i := len(c.filters) - 1; i >= 0; i-- {
		action, err := c.filters[i].HandleWrite(ctx)
		if err != nil {
			return err
		}
		if action == Stop {
			return nil
		}
	}
	return nil
}

// RunClose notifies every filter of the connection teardown. All filters
// are notified even if one of them fails; the first error is returned.
func (c *Chain) RunClose(ctx Context) error {
	var first error
	for _, f := range c.filters {
		if err := f.HandleClose(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
