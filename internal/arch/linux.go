package arch

import "strconv"

// Constants of the Linux system call ABI used to rewrite and interpret
// system call arguments.

// Error numbers.
const (
	EPERM   = 1
	ENOENT  = 2
	ESRCH   = 3
	EINTR   = 4
	EBADF   = 9
	ECHILD  = 10
	EAGAIN  = 11
	ENOMEM  = 12
	EACCES  = 13
	EFAULT  = 14
	EEXIST  = 17
	EINVAL  = 22
	EMFILE  = 24
	ENOSYS  = 38
	ENOTSUP = 95

	// Internal error numbers that the kernel returns to tracers when a
	// system call is interrupted and must be restarted.
	ERESTARTSYS           = 512
	ERESTARTNOINTR        = 513
	ERESTARTNOHAND        = 514
	ERESTART_RESTARTBLOCK = 516
)

// Restartable reports whether a system call result asks for the call to be
// issued again.
func Restartable(result int64) bool {
	switch -result {
	case EINTR, ERESTARTSYS, ERESTARTNOINTR, ERESTARTNOHAND, ERESTART_RESTARTBLOCK:
		return true
	}
	return false
}

// Memory protection and mapping flags.
const (
	PROT_NONE  = 0x0
	PROT_READ  = 0x1
	PROT_WRITE = 0x2
	PROT_EXEC  = 0x4

	MAP_SHARED          = 0x1
	MAP_PRIVATE         = 0x2
	MAP_TYPE            = 0xf
	MAP_FIXED           = 0x10
	MAP_ANONYMOUS       = 0x20
	MAP_GROWSDOWN       = 0x100
	MAP_FIXED_NOREPLACE = 0x100000

	MREMAP_MAYMOVE = 0x1
	MREMAP_FIXED   = 0x2
)

// File flags.
const (
	O_RDONLY  = 0x0
	O_WRONLY  = 0x1
	O_RDWR    = 0x2
	O_CLOEXEC = 0x80000

	AT_FDCWD = -100
)

// Flags of clone(2).
const (
	CLONE_VM             = 0x100
	CLONE_FS             = 0x200
	CLONE_FILES          = 0x400
	CLONE_SIGHAND        = 0x800
	CLONE_PIDFD          = 0x1000
	CLONE_PTRACE         = 0x2000
	CLONE_VFORK          = 0x4000
	CLONE_PARENT         = 0x8000
	CLONE_THREAD         = 0x10000
	CLONE_NEWNS          = 0x20000
	CLONE_SYSVSEM        = 0x40000
	CLONE_SETTLS         = 0x80000
	CLONE_PARENT_SETTID  = 0x100000
	CLONE_CHILD_CLEARTID = 0x200000
	CLONE_UNTRACED       = 0x800000
	CLONE_CHILD_SETTID   = 0x1000000
	CLONE_NEWCGROUP      = 0x2000000
	CLONE_NEWUTS         = 0x4000000
	CLONE_NEWIPC         = 0x8000000
	CLONE_NEWUSER        = 0x10000000
	CLONE_NEWPID         = 0x20000000
	CLONE_NEWNET         = 0x40000000

	// CLONE_NEWMASK covers the namespace flags.
	CLONE_NEWMASK = CLONE_NEWNS | CLONE_NEWCGROUP | CLONE_NEWUTS | CLONE_NEWIPC |
		CLONE_NEWUSER | CLONE_NEWPID | CLONE_NEWNET

	// CSIGNAL masks the exit signal in the low byte of the clone flags.
	CSIGNAL = 0xff
)

// Signal numbers.
const (
	SIGHUP    = 1
	SIGINT    = 2
	SIGQUIT   = 3
	SIGILL    = 4
	SIGTRAP   = 5
	SIGABRT   = 6
	SIGBUS    = 7
	SIGFPE    = 8
	SIGKILL   = 9
	SIGUSR1   = 10
	SIGSEGV   = 11
	SIGUSR2   = 12
	SIGPIPE   = 13
	SIGALRM   = 14
	SIGTERM   = 15
	SIGCHLD   = 17
	SIGCONT   = 18
	SIGSTOP   = 19
	SIGURG    = 23
	SIGWINCH  = 28
	SIGSYS    = 31
	NumSignal = 64
)

// Synchronous reports whether a signal is raised by the instruction the task
// executes, as opposed to being sent by another task or the kernel.
func Synchronous(sig int) bool {
	switch sig {
	case SIGILL, SIGTRAP, SIGBUS, SIGFPE, SIGSEGV, SIGSYS:
		return true
	}
	return false
}

var signalNames = [...]string{
	SIGHUP:   "SIGHUP",
	SIGINT:   "SIGINT",
	SIGQUIT:  "SIGQUIT",
	SIGILL:   "SIGILL",
	SIGTRAP:  "SIGTRAP",
	SIGABRT:  "SIGABRT",
	SIGBUS:   "SIGBUS",
	SIGFPE:   "SIGFPE",
	SIGKILL:  "SIGKILL",
	SIGUSR1:  "SIGUSR1",
	SIGSEGV:  "SIGSEGV",
	SIGUSR2:  "SIGUSR2",
	SIGPIPE:  "SIGPIPE",
	SIGALRM:  "SIGALRM",
	SIGTERM:  "SIGTERM",
	16:       "SIGSTKFLT",
	SIGCHLD:  "SIGCHLD",
	SIGCONT:  "SIGCONT",
	SIGSTOP:  "SIGSTOP",
	20:       "SIGTSTP",
	21:       "SIGTTIN",
	22:       "SIGTTOU",
	SIGURG:   "SIGURG",
	24:       "SIGXCPU",
	25:       "SIGXFSZ",
	26:       "SIGVTALRM",
	27:       "SIGPROF",
	SIGWINCH: "SIGWINCH",
	29:       "SIGIO",
	30:       "SIGPWR",
	SIGSYS:   "SIGSYS",
}

// SignalName returns the name of a signal number.
func SignalName(sig int) string {
	if sig > 0 && sig < len(signalNames) && signalNames[sig] != "" {
		return signalNames[sig]
	}
	if sig >= 32 && sig <= NumSignal {
		return "SIGRT" + strconv.Itoa(sig-32)
	}
	return "SIG" + strconv.Itoa(sig)
}

// PageSize is the size of memory pages.
const PageSize = 4096

// PageAlign rounds addr down to a page boundary.
func PageAlign(addr uint64) uint64 { return addr &^ (PageSize - 1) }

// PageRoundUp rounds n up to a multiple of the page size.
func PageRoundUp(n uint64) uint64 { return (n + PageSize - 1) &^ (PageSize - 1) }
