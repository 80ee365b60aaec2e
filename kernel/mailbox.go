package kernel

// Mailbox is a single-slot overwrite mailbox (spec.md §4.5): if a producer
// writes while the previous value has been announced but not yet received,
// the slot is overwritten and the lost counter increments; otherwise the
// arrival semaphore is signalled. Receivers get at-least-one delivery of the
// most-recent write, not every write.
type Mailbox struct {
	slot    int32
	arrival Semaphore
	lost    uint32
}

// MailboxInit prepares the mailbox: empty slot, arrival semaphore at 0, no
// lost messages.
func MailboxInit(m *Mailbox) {
	InitSemaphore(&m.arrival, 0)
	saved := EnterCritical()
	m.slot = 0
	m.lost = 0
	LeaveCritical(saved)
}

// MailSend writes x into the mailbox.
func MailSend(m *Mailbox, x int32) {
	saved := EnterCritical()
	m.slot = x
	full := m.arrival.value > 0
	LeaveCritical(saved)

	if full {
		saved = EnterCritical()
		m.lost++
		LeaveCritical(saved)
		return
	}
	Signal(&m.arrival)
}

// MailRecv blocks until a value has arrived, then returns it.
func MailRecv(idx int, m *Mailbox) int32 {
	Wait(idx, &m.arrival)
	saved := EnterCritical()
	defer LeaveCritical(saved)
	return m.slot
}

// Lost returns the number of sends that overwrote an unread value.
func (m *Mailbox) Lost() uint32 {
	saved := EnterCritical()
	defer LeaveCritical(saved)
	return m.lost
}
