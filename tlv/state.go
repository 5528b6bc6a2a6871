package tlv

// stateEntry represents the encoding or decoding state of a single TLV.
type stateEntry struct {
	Header

	// Start is the stream offset of the first identifier octet of the TLV.
	Start int64

	// Offset indicates how far into the value of the TLV the encoder or
	// decoder has progressed, i.e. how many value octets have been consumed.
	Offset int

	// Limit is the maximum length that the TLV value may have. This is at
	// most the length indicated by the header, but may be less if a
	// surrounding TLV is more restrictive. Limit is [LengthIndefinite] if no
	// restriction is known.
	Limit int
}

// Remaining returns the remaining number of value octets of the TLV, or
// [LengthIndefinite] if the length of the element is unknown.
func (e *stateEntry) Remaining() int {
	if e.Limit == LengthIndefinite {
		return LengthIndefinite
	}
	return e.Limit - e.Offset
}

// state maintains the shared state of an [Encoder] or [Decoder]: a stack of
// TLVs that are currently being processed and the stream offset. At the
// bottom of the stack sits a virtual constructed indefinite-length TLV
// representing the root level of the stream.
//
// Only the offset of the topmost entry is updated during processing. Whenever
// an entry is pushed or popped the state type maintains this invariant by
// folding the consumed octets into the new topmost entry.
type state struct {
	stack  []stateEntry
	curr   stateEntry // top entry of the stack
	offset int64      // octets consumed from or written to the stream
}

// reset clears the state to a single root element. Allocated stack space is
// reused.
func (s *state) reset() {
	if s.stack == nil {
		s.stack = make([]stateEntry, 0, 8)
	}
	s.stack = s.stack[:0]
	s.curr = stateEntry{
		Header: Header{Constructed: true, Length: LengthIndefinite},
		Limit:  LengthIndefinite,
	}
	s.offset = 0
}

// root indicates whether s is currently at the root level.
func (s *state) root() bool {
	return len(s.stack) == 0
}

// depth returns the number of entries above the virtual root.
func (s *state) depth() int {
	return len(s.stack)
}

// push puts h onto the stack, indicating that the value of h is now being
// processed. start is the stream offset of the first identifier octet of h;
// the identifier and length octets must already have been counted against the
// current top entry.
func (s *state) push(h Header, start int64) {
	limit := h.Length
	if rem := s.curr.Remaining(); rem != LengthIndefinite && (limit == LengthIndefinite || limit > rem) {
		limit = rem
	}
	s.stack = append(s.stack, s.curr)
	s.curr = stateEntry{Header: h, Start: start, Limit: limit}
}

// pop removes the topmost entry from the stack, folding the octets it
// consumed into its parent. This indicates that processing of the topmost
// element has completed.
func (s *state) pop() {
	prev := s.curr
	s.curr = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.curr.Offset += prev.Offset
}

// advance records the consumption of n value octets.
func (s *state) advance(n int) {
	s.curr.Offset += n
	s.offset += int64(n)
}
