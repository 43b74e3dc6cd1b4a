package convert

// counter issues monotonically increasing identifiers starting at 1.
// Run-scoped; never persisted, never rolled back.
type counter struct {
	next int64
}

func (c *counter) Next() int64 {
	if c.next == 0 {
		c.next = 1
	}
	id := c.next
	c.next++
	return id
}

// IDAllocator issues the synthetic identifiers a conversion run needs:
// channel ids, instrument ids and waveform ids, each from an independent
// counter. An issued id is consumed even when the record it was made for
// is later discarded as a duplicate.
type IDAllocator struct {
	chanid counter
	inid   counter
	wfid   counter
}

// NextChanID returns the next channel id.
func (a *IDAllocator) NextChanID() int64 { return a.chanid.Next() }

// NextInstID returns the next instrument id.
func (a *IDAllocator) NextInstID() int64 { return a.inid.Next() }

// NextWfID returns the next waveform id.
func (a *IDAllocator) NextWfID() int64 { return a.wfid.Next() }
