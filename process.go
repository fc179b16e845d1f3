package sched

// ProcessInfo is the USERPROG-equivalent state a thread can carry, mirroring
// the #ifdef USERPROG block of original_source/src/threads/thread.h: an
// address-space handle, parent/child bookkeeping for wait(), an exit
// status, and load/exit rendezvous semaphores. The scheduler never reads
// or writes any of this; it is attached via Thread.ProcessData purely so a
// caller building a process layer on top of this package has somewhere to
// put it without forking the Thread type.
type ProcessInfo struct {
	// AddressSpace is an opaque handle to whatever page-table/address-space
	// representation a caller's process layer uses; this package has no
	// notion of virtual memory.
	AddressSpace any

	Parent   *Thread
	Children []*Thread

	ExitStatus int

	// LoadSema is released once the process's executable has finished
	// loading, so exec() can report success or failure to the caller.
	LoadSema *Semaphore
	// ExitSema is released when the process exits, so a parent blocked in
	// wait() can be woken.
	ExitSema *Semaphore

	LoadSucceeded bool

	// FDTable mirrors thread.h's struct file *fd[128]: a per-process
	// file-descriptor table indexed by fd number, fd 0/1 reserved for the
	// console. This package has no file abstraction of its own, so each
	// slot is opaque; a caller's file layer stores its own handle type here.
	FDTable [128]any

	// Executable is an opaque handle to the process's own loaded binary
	// (thread.h's struct file *exec_file), kept open for the process's
	// entire lifetime so a caller's file layer can deny writes to a
	// running executable the way deny_write/file_allow_write do.
	Executable any
}

// NewProcessInfo allocates a ProcessInfo with its rendezvous semaphores
// ready to use.
func NewProcessInfo(k *Kernel, parent *Thread) *ProcessInfo {
	return &ProcessInfo{
		Parent:   parent,
		LoadSema: NewSemaphore(k, 0),
		ExitSema: NewSemaphore(k, 0),
	}
}

// Process returns t's ProcessInfo, or nil if none was attached.
func (t *Thread) Process() *ProcessInfo {
	pd, _ := t.ProcessData.(*ProcessInfo)
	return pd
}
