package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/QuangTung97/dynmem/allocator"
)

type opKind int

const (
	opAlloc opKind = iota
	opFree
	opRealloc
	opFill
	opDefrag
	opMonitor
	opCheck
)

var opNames = map[string]opKind{
	"alloc":   opAlloc,
	"free":    opFree,
	"realloc": opRealloc,
	"fill":    opFill,
	"defrag":  opDefrag,
	"monitor": opMonitor,
	"check":   opCheck,
}

// number of arguments after the op name
var opArity = map[opKind]int{
	opAlloc:   2,
	opFree:    1,
	opRealloc: 2,
	opFill:    2,
	opDefrag:  0,
	opMonitor: 0,
	opCheck:   0,
}

func (k opKind) String() string {
	names := [...]string{"alloc", "free", "realloc", "fill", "defrag", "monitor", "check"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

type traceOp struct {
	line  int
	kind  opKind
	name  string
	size  uint32
	value byte
}

var errUnknownHandle = errors.New("unknown handle")

// parseTrace reads one operation per line. Everything after '#' is a comment.
//
//	alloc NAME SIZE
//	free NAME
//	realloc NAME SIZE
//	fill NAME BYTE
//	defrag
//	monitor
//	check
func parseTrace(r io.Reader) ([]traceOp, error) {
	var ops []traceOp

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++

		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		kind, ok := opNames[strings.ToLower(fields[0])]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown operation %q", lineNum, fields[0])
		}
		if len(fields)-1 != opArity[kind] {
			return nil, fmt.Errorf("line %d: %s expects %d argument(s), got %d",
				lineNum, kind, opArity[kind], len(fields)-1)
		}

		op := traceOp{line: lineNum, kind: kind}
		switch kind {
		case opAlloc, opRealloc:
			size, err := strconv.ParseUint(fields[2], 0, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid size %q: %w", lineNum, fields[2], err)
			}
			op.name = fields[1]
			op.size = uint32(size)

		case opFill:
			value, err := strconv.ParseUint(fields[2], 0, 8)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid byte %q: %w", lineNum, fields[2], err)
			}
			op.name = fields[1]
			op.value = byte(value)

		case opFree:
			op.name = fields[1]
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	return ops, nil
}

type stepResult struct {
	Line  int              `json:"line"`
	Op    string           `json:"op"`
	Name  string           `json:"name,omitempty"`
	Size  uint32           `json:"size,omitempty"`
	Ptr   uint32           `json:"ptr"`
	OK    bool             `json:"ok"`
	Stats *allocator.Stats `json:"stats,omitempty"`
}

type replayer struct {
	pool    *allocator.Pool
	handles map[string]uint32
	log     *slog.Logger
}

func newReplayer(pool *allocator.Pool, log *slog.Logger) *replayer {
	return &replayer{
		pool:    pool,
		handles: map[string]uint32{},
		log:     log,
	}
}

func (r *replayer) handle(op traceOp) (uint32, error) {
	ptr, ok := r.handles[op.name]
	if !ok {
		return 0, fmt.Errorf("line %d: %s %q: %w", op.line, op.kind, op.name, errUnknownHandle)
	}
	return ptr, nil
}

// replay applies ops in order. Out of memory is reported in the step result, not as an error.
func (r *replayer) replay(ops []traceOp) ([]stepResult, error) {
	steps := make([]stepResult, 0, len(ops))
	for _, op := range ops {
		step, err := r.apply(op)
		if err != nil {
			return nil, err
		}
		r.log.Debug("replayed",
			"line", step.Line, "op", step.Op, "name", step.Name,
			"size", step.Size, "ptr", step.Ptr, "ok", step.OK)
		steps = append(steps, step)
	}
	return steps, nil
}

func (r *replayer) apply(op traceOp) (stepResult, error) {
	step := stepResult{
		Line: op.line,
		Op:   op.kind.String(),
		Name: op.name,
		Size: op.size,
		OK:   true,
	}

	switch op.kind {
	case opAlloc:
		if _, exists := r.handles[op.name]; exists {
			return step, fmt.Errorf("line %d: handle %q is already allocated", op.line, op.name)
		}
		ptr, ok := r.pool.Allocate(op.size)
		step.Ptr, step.OK = ptr, ok
		if ok {
			r.handles[op.name] = ptr
		}

	case opFree:
		ptr, err := r.handle(op)
		if err != nil {
			return step, err
		}
		r.pool.Free(ptr)
		delete(r.handles, op.name)
		step.Ptr = ptr

	case opRealloc:
		ptr, err := r.handle(op)
		if err != nil {
			return step, err
		}
		newPtr, ok := r.pool.Reallocate(ptr, op.size)
		step.Ptr, step.OK = newPtr, ok
		if ok {
			r.handles[op.name] = newPtr
		}

	case opFill:
		ptr, err := r.handle(op)
		if err != nil {
			return step, err
		}
		data := r.pool.Bytes(ptr)
		for i := range data {
			data[i] = op.value
		}
		step.Ptr = ptr
		step.Size = uint32(len(data))

	case opDefrag:
		r.pool.Defragment()

	case opMonitor:
		stats := r.pool.Monitor()
		step.Stats = &stats

	case opCheck:
		if err := r.pool.Validate(); err != nil {
			return step, fmt.Errorf("line %d: %w", op.line, err)
		}
	}
	return step, nil
}
