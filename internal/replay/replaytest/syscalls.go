package replaytest

import (
	"bytes"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracee"
)

type sysResult struct {
	ret    int64
	event  tracee.Event
	msg    uint64
	exited bool
}

func ret(v int64) sysResult { return sysResult{ret: v} }

func fail(errno int) sysResult { return sysResult{ret: -int64(errno)} }

// syscall executes a system call of the thread.
func (t *Thread) syscall(no int) sysResult {
	r := &t.regs
	a := func(i int) uint64 { return r.Arg(i) }

	switch no {
	case arch.SysRead:
		return t.read(int(a(0)), a(1), int(a(2)))
	case arch.SysWrite:
		b, ok := t.load(a(1), int(a(2)))
		if !ok {
			return fail(arch.EFAULT)
		}
		return t.write(int(a(0)), b)
	case arch.SysWritev:
		var b []byte
		for i := uint64(0); i < a(2); i++ {
			iov, ok := t.load(a(1)+16*i, 16)
			if !ok {
				return fail(arch.EFAULT)
			}
			chunk, ok := t.load(le.Uint64(iov), int(le.Uint64(iov[8:])))
			if !ok {
				return fail(arch.EFAULT)
			}
			b = append(b, chunk...)
		}
		return t.write(int(a(0)), b)
	case arch.SysOpenat:
		return t.openat(a(1), int(a(2)))
	case arch.SysClose:
		if t.proc.files.fds[int(a(0))] == nil {
			return fail(arch.EBADF)
		}
		delete(t.proc.files.fds, int(a(0)))
		return ret(0)
	case arch.SysDup:
		f := t.proc.files.fds[int(a(0))]
		if f == nil {
			return fail(arch.EBADF)
		}
		return ret(int64(t.proc.files.open(f)))
	case arch.SysPipe2:
		p := &pipe{}
		var fds [8]byte
		le.PutUint32(fds[0:], uint32(t.proc.files.open(&file{name: "pipe", stream: -1, pipe: p})))
		le.PutUint32(fds[4:], uint32(t.proc.files.open(&file{name: "pipe", stream: -1, pipe: p})))
		if !t.copyOut(a(0), fds[:]) {
			return fail(arch.EFAULT)
		}
		return ret(0)
	case arch.SysGetpid:
		return ret(int64(t.proc.tgid))
	case arch.SysGetppid:
		if t.proc.parent == nil {
			return ret(0)
		}
		return ret(int64(t.proc.parent.tgid))
	case arch.SysGettid:
		return ret(int64(t.tid))
	case arch.SysGetrandom:
		b := make([]byte, a(1))
		t.k.rand.Read(b)
		if !t.copyOut(a(0), b) {
			return fail(arch.EFAULT)
		}
		return ret(int64(len(b)))
	case arch.SysClockGettime:
		t.k.now = t.k.now.Add(t.k.tick)
		var ts [16]byte
		le.PutUint64(ts[0:], uint64(t.k.now.Unix()))
		le.PutUint64(ts[8:], uint64(t.k.now.Nanosecond()))
		if !t.copyOut(a(1), ts[:]) {
			return fail(arch.EFAULT)
		}
		return ret(0)
	case arch.SysSchedYield:
		t.yield = true
		return ret(0)
	case arch.SysNanosleep, arch.SysFutex, arch.SysRtSigprocmask:
		return ret(0)
	case arch.SysSetTidAddress:
		t.clearTid = a(0)
		return ret(int64(t.tid))
	case arch.SysRtSigaction:
		return t.sigaction(int(a(0)), a(1), a(2))
	case arch.SysRtSigreturn:
		return ret(t.sigreturn())
	case arch.SysMmap:
		return t.mmap(a(0), a(1), uint32(a(2)), uint32(a(3)), int(int32(a(4))), int64(a(5)))
	case arch.SysMunmap:
		if a(0)%arch.PageSize != 0 || a(1) == 0 {
			return fail(arch.EINVAL)
		}
		t.proc.mem.unmapRange(a(0), arch.PageRoundUp(a(1)))
		return ret(0)
	case arch.SysMprotect:
		return t.mprotect(a(0), a(1), uint32(a(2)))
	case arch.SysMremap:
		return t.mremap(a(0), a(1), a(2), a(3), a(4))
	case arch.SysBrk:
		return ret(int64(t.brk(a(0))))
	case arch.SysClone:
		return t.clone(a(0), a(1), a(2), a(3), a(4))
	case arch.SysFork:
		return t.clone(arch.SIGCHLD, 0, 0, 0, 0)
	case arch.SysVfork:
		return t.clone(arch.CLONE_VM|arch.CLONE_VFORK|arch.SIGCHLD, 0, 0, 0, 0)
	case arch.SysExecve:
		return t.execve(a(0))
	case arch.SysExit:
		t.enterExit(int(a(0)&0xff) << 8)
		return sysResult{exited: true}
	case arch.SysExitGroup:
		t.groupExit(int(a(0)&0xff) << 8)
		return sysResult{exited: true}
	case arch.SysKill:
		target, ok := t.k.threads[int(a(0))]
		if !ok || target.proc.tgid != int(a(0)) {
			return fail(arch.ESRCH)
		}
		return t.kill(target.proc.live(), int(a(1)))
	case arch.SysTgkill:
		target, ok := t.k.threads[int(a(1))]
		if !ok || target.state == dead || target.proc.tgid != int(a(0)) {
			return fail(arch.ESRCH)
		}
		return t.kill([]*Thread{target}, int(a(2)))
	}
	return fail(arch.ENOSYS)
}

func (t *Thread) load(addr uint64, n int) ([]byte, bool) {
	b := make([]byte, n)
	return b, t.proc.mem.read(addr, b) == n
}

func (t *Thread) loadString(addr uint64) (string, bool) {
	var s []byte
	for {
		b, ok := t.load(addr, 1)
		if !ok {
			return "", false
		}
		if b[0] == 0 {
			return string(s), true
		}
		s = append(s, b[0])
		addr++
	}
}

// copyOut writes b to the memory of the thread as the kernel does when a
// system call returns data.
func (t *Thread) copyOut(addr uint64, b []byte) bool {
	if !t.proc.mem.writable(addr, uint64(len(b))) {
		return false
	}
	t.proc.mem.write(addr, b)
	t.out = append(t.out, memWrite{addr: addr, data: bytes.Clone(b)})
	return true
}

func (t *Thread) read(fd int, addr uint64, n int) sysResult {
	f := t.proc.files.fds[fd]
	if f == nil {
		return fail(arch.EBADF)
	}
	var src []byte
	switch {
	case f.pipe != nil:
		src = f.pipe.buf
	case f.stream == 0:
		src = t.k.stdin
	case f.stream > 0:
		return fail(arch.EBADF)
	default:
		src = f.data[min(f.offset, len(f.data)):]
	}
	b := src[:min(n, len(src))]
	if len(b) > 0 && !t.copyOut(addr, b) {
		return fail(arch.EFAULT)
	}
	switch {
	case f.pipe != nil:
		f.pipe.buf = f.pipe.buf[len(b):]
	case f.stream == 0:
		t.k.stdin = t.k.stdin[len(b):]
	default:
		f.offset += len(b)
	}
	return ret(int64(len(b)))
}

func (t *Thread) write(fd int, b []byte) sysResult {
	f := t.proc.files.fds[fd]
	if f == nil {
		return fail(arch.EBADF)
	}
	switch {
	case f.pipe != nil:
		f.pipe.buf = append(f.pipe.buf, b...)
	case f.stream == 1:
		t.k.stdout.Write(b)
	case f.stream == 2:
		t.k.stderr.Write(b)
	case f.stream == 0:
		return fail(arch.EBADF)
	default:
		f.data = append(f.data[:f.offset], b...)
		f.offset += len(b)
	}
	return ret(int64(len(b)))
}

func (t *Thread) openat(path uint64, flags int) sysResult {
	name, ok := t.loadString(path)
	if !ok {
		return fail(arch.EFAULT)
	}
	data, ok := t.k.files[name]
	if !ok {
		return fail(arch.ENOENT)
	}
	fd := t.proc.files.open(&file{name: name, data: bytes.Clone(data), stream: -1})
	return ret(int64(fd))
}

func (t *Thread) sigaction(sig int, act, oact uint64) sysResult {
	if sig <= 0 || sig > 64 || sig == arch.SIGKILL || sig == arch.SIGSTOP {
		return fail(arch.EINVAL)
	}
	old := t.proc.handlers[sig]
	if act != 0 {
		b, ok := t.load(act, 8)
		if !ok {
			return fail(arch.EFAULT)
		}
		t.proc.handlers[sig] = le.Uint64(b)
	}
	if oact != 0 {
		var b [8]byte
		le.PutUint64(b[:], old)
		if !t.copyOut(oact, b[:]) {
			return fail(arch.EFAULT)
		}
	}
	return ret(0)
}

func (t *Thread) kill(targets []*Thread, sig int) sysResult {
	if sig < 0 || sig > 64 {
		return fail(arch.EINVAL)
	}
	if len(targets) == 0 {
		return fail(arch.ESRCH)
	}
	if sig != 0 {
		targets[0].queueSignal(sig)
	}
	return ret(0)
}

const mappingFlags = arch.MAP_TYPE | arch.MAP_ANONYMOUS | arch.MAP_GROWSDOWN

func (t *Thread) mmap(addr, length uint64, prot, flags uint32, fd int, offset int64) sysResult {
	mem := t.proc.mem
	if length == 0 || offset%arch.PageSize != 0 {
		return fail(arch.EINVAL)
	}
	length = arch.PageRoundUp(length)
	switch {
	case flags&arch.MAP_FIXED_NOREPLACE != 0:
		if addr%arch.PageSize != 0 {
			return fail(arch.EINVAL)
		}
		if mem.overlaps(addr, length) {
			return fail(arch.EEXIST)
		}
	case flags&arch.MAP_FIXED != 0:
		if addr%arch.PageSize != 0 {
			return fail(arch.EINVAL)
		}
		mem.unmapRange(addr, length)
	default:
		addr = mem.free(length)
	}

	m := trace.Mapping{
		Start:   addr,
		Length:  length,
		Prot:    prot,
		Flags:   flags & mappingFlags,
		Backing: trace.Zero,
	}
	var content []byte
	if flags&arch.MAP_ANONYMOUS == 0 {
		f := t.proc.files.fds[fd]
		if f == nil {
			return fail(arch.EBADF)
		}
		if f.stream >= 0 || f.pipe != nil {
			return fail(arch.EACCES)
		}
		m.Backing, m.Path, m.FileOffset = trace.File, f.name, offset
		content = f.data[min(int(offset), len(f.data)):]
	}
	mem.mapRange(addr, length, prot, m.Flags, m.Path, m.FileOffset)
	mem.write(addr, content[:min(len(content), int(length))])
	t.mapped = append(t.mapped, m)
	return ret(int64(addr))
}

func (t *Thread) mprotect(addr, length uint64, prot uint32) sysResult {
	mem := t.proc.mem
	if addr%arch.PageSize != 0 {
		return fail(arch.EINVAL)
	}
	length = arch.PageRoundUp(length)
	for a := addr; a < addr+length; a += arch.PageSize {
		if mem.pages[a] == nil {
			return fail(arch.ENOMEM)
		}
	}
	for a := addr; a < addr+length; a += arch.PageSize {
		mem.pages[a].prot = prot
	}
	return ret(0)
}

func (t *Thread) mremap(old, oldLen, newLen, flags, newAddr uint64) sysResult {
	mem := t.proc.mem
	if old%arch.PageSize != 0 || newLen == 0 {
		return fail(arch.EINVAL)
	}
	oldLen, newLen = arch.PageRoundUp(oldLen), arch.PageRoundUp(newLen)
	for a := old; a < old+oldLen; a += arch.PageSize {
		if mem.pages[a] == nil {
			return fail(arch.EFAULT)
		}
	}
	last := *mem.pages[old+oldLen-arch.PageSize]
	grow := func(at, from, to uint64) {
		for a := from; a < to; a += arch.PageSize {
			p := last
			p.data = new([arch.PageSize]byte)
			p.offset = last.offset + int64(a+arch.PageSize-oldLen)
			mem.pages[at+a] = &p
		}
	}

	dst := old
	switch {
	case flags&arch.MREMAP_FIXED != 0:
		if flags&arch.MREMAP_MAYMOVE == 0 || newAddr%arch.PageSize != 0 {
			return fail(arch.EINVAL)
		}
		mem.unmapRange(newAddr, newLen)
		dst = newAddr
	case newLen <= oldLen:
		mem.unmapRange(old+newLen, oldLen-newLen)
		return ret(int64(old))
	case !mem.overlaps(old+oldLen, newLen-oldLen):
		grow(old, oldLen, newLen)
		return ret(int64(old))
	case flags&arch.MREMAP_MAYMOVE != 0:
		dst = mem.free(newLen)
	default:
		return fail(arch.ENOMEM)
	}

	pages := make([]*page, 0, oldLen/arch.PageSize)
	for a := old; a < old+min(oldLen, newLen); a += arch.PageSize {
		pages = append(pages, mem.pages[a])
	}
	mem.unmapRange(old, oldLen)
	for i, p := range pages {
		mem.pages[dst+uint64(i)*arch.PageSize] = p
	}
	if newLen > oldLen {
		grow(dst, oldLen, newLen)
	}
	return ret(int64(dst))
}

func (t *Thread) brk(addr uint64) uint64 {
	mem := t.proc.mem
	if addr < mem.brkStart {
		return mem.brk
	}
	cur, next := arch.PageRoundUp(mem.brk), arch.PageRoundUp(addr)
	switch {
	case next > cur:
		if mem.overlaps(cur, next-cur) {
			return mem.brk
		}
		mem.mapRange(cur, next-cur, arch.PROT_READ|arch.PROT_WRITE, arch.MAP_PRIVATE|arch.MAP_ANONYMOUS, "[heap]", int64(cur-mem.brkStart))
	case next < cur:
		mem.unmapRange(next, cur-next)
	}
	mem.brk = addr
	return addr
}

func (t *Thread) clone(flags, stack, ptid, ctid, tls uint64) sysResult {
	if flags&arch.CLONE_THREAD != 0 && flags&arch.CLONE_VM == 0 {
		return fail(arch.EINVAL)
	}
	proc := t.proc
	if flags&arch.CLONE_THREAD == 0 {
		proc = &process{
			parent:   t.proc,
			mem:      t.proc.mem,
			files:    t.proc.files,
			handlers: t.proc.handlers,
			prog:     t.proc.prog,
		}
		if flags&arch.CLONE_VM == 0 {
			proc.mem = t.proc.mem.clone()
		}
		if flags&arch.CLONE_FILES == 0 {
			proc.files = t.proc.files.clone()
		}
		if flags&arch.CLONE_SIGHAND == 0 {
			proc.handlers = make(map[int]uint64, len(t.proc.handlers))
			for sig, h := range t.proc.handlers {
				proc.handlers[sig] = h
			}
		}
	}
	child := t.k.newThread(proc, t.traced)
	if proc.tgid == 0 {
		proc.tgid = child.tid
	}
	child.regs = t.regs
	child.regs.Rax = 0
	if stack != 0 {
		child.regs.Rsp = stack
	}
	if flags&arch.CLONE_SETTLS != 0 {
		child.regs.FsBase = tls
	}
	if flags&arch.CLONE_CHILD_CLEARTID != 0 {
		child.clearTid = ctid
	}
	if flags&arch.CLONE_PARENT_SETTID != 0 {
		var b [4]byte
		le.PutUint32(b[:], uint32(child.tid))
		t.copyOut(ptid, b[:])
	}

	r := sysResult{ret: int64(child.tid), msg: uint64(child.tid)}
	switch {
	case flags&arch.CLONE_VFORK != 0:
		r.event = tracee.EventVfork
	case flags&arch.CSIGNAL == arch.SIGCHLD:
		r.event = tracee.EventFork
	default:
		r.event = tracee.EventClone
	}
	if child.traced {
		child.setSiginfo(arch.SIGSTOP)
		child.stop(tracee.Stop{Kind: tracee.SignalStop, Signal: arch.SIGSTOP})
		child.point = atSignal
		t.k.attached[child.tid] = child
	} else {
		child.state = running
	}
	t.k.rec.clone(t, child, flags)
	return r
}

func (t *Thread) execve(path uint64) sysResult {
	name, ok := t.loadString(path)
	if !ok {
		return fail(arch.EFAULT)
	}
	prog, ok := t.k.programs[name]
	if !ok {
		return fail(arch.ENOENT)
	}
	if len(t.proc.live()) > 1 {
		return fail(arch.EAGAIN)
	}
	t.proc.exec(prog)
	t.regs = initialRegisters(prog)
	t.regs.OrigRax = arch.SysExecve
	t.clearTid = 0
	t.k.rec.exec(t, name)
	return sysResult{event: tracee.EventExec, msg: uint64(t.tid)}
}
