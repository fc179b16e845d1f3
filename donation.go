package sched

// maxDonationChainDepth bounds how far donatePriority walks up a chain of
// waiting-lock holders (spec.md §7, "chain traversal and acyclicity"). A
// well-behaved program's lock graph is acyclic and rarely nests more than a
// couple of locks deep; a chain this long almost certainly means a thread
// is waiting on a lock held, transitively, by itself, so traversal simply
// stops rather than looping forever.
const maxDonationChainDepth = 8

// donatePriority records that donor is donating its effective priority to
// holder (because donor is blocked acquiring a lock holder currently
// holds), then follows holder's own waitingLock, if any, to propagate the
// same donation further up the chain (spec.md §4.5). Must be called with
// k.mu held. It reports true if the chain was truncated at
// maxDonationChainDepth instead of reaching its end, which the caller
// (Lock.Acquire) surfaces as a [DonationCycleError].
func (k *Kernel) donatePriority(donor, holder *Thread, depth int) bool {
	if depth >= maxDonationChainDepth {
		k.logf(LogLevelWarn, "donation chain truncated at depth %d from thread %d", depth, donor.id)
		return true
	}

	// donor is already linked into holder.donators when the chain walk
	// re-visits the same edge (e.g. a third thread's acquire re-propagates
	// an existing mid-chain donation). Re-pushing would overwrite donor's
	// single donateQM membership with a fresh list.Element, orphaning the
	// one already linked into this same bucket list forever, since nothing
	// would reference it to remove it later. EffectivePriority walks every
	// donator live on every call, so presence in the list is all that's
	// required; the edge never needs re-registering once it exists.
	if !donor.donateQM.queued() {
		holder.donators.push(donor, &donor.donateQM)
	}
	if k.metrics != nil {
		k.metrics.donation.record(depth + 1)
	}

	if holder.qm.queued() {
		holder.qm.pq.requeue(holder, &holder.qm)
	}

	if next := holder.waitingLock; next != nil && next.holder != nil {
		return k.donatePriority(holder, next.holder, depth+1)
	}
	return false
}

// restorePriorityLocked removes from holder's donators list every thread
// that was waiting specifically on l, then re-sorts holder's current queue
// membership to reflect its (possibly lower) effective priority (spec.md
// §4.5). Must be called with k.mu held, before l.holder is cleared.
func (k *Kernel) restorePriorityLocked(holder *Thread, l *Lock) {
	var stale []*Thread
	holder.donators.forEach(func(d *Thread) {
		if d.waitingLock == l {
			stale = append(stale, d)
		}
	})
	for _, d := range stale {
		holder.donators.remove(&d.donateQM)
	}

	if holder.qm.queued() {
		holder.qm.pq.requeue(holder, &holder.qm)
	}
}
