//go:build wasip1

package process

import (
	"runtime"
	"unsafe"
)

// The ssvm_process import module provided by the WebAssembly runtime.

//go:wasmimport ssvm_process ssvm_process_set_prog_name
func ssvmSetProgName(name unsafe.Pointer, length uint32)

//go:wasmimport ssvm_process ssvm_process_set_arg
func ssvmSetArg(arg unsafe.Pointer, length uint32)

//go:wasmimport ssvm_process ssvm_process_set_env
func ssvmSetEnv(key unsafe.Pointer, keyLen uint32, value unsafe.Pointer, valueLen uint32)

//go:wasmimport ssvm_process ssvm_process_set_stdin
func ssvmSetStdin(buf unsafe.Pointer, length uint32)

//go:wasmimport ssvm_process ssvm_process_set_timeout
func ssvmSetTimeout(ms uint32)

//go:wasmimport ssvm_process ssvm_process_run
func ssvmRun() int32

//go:wasmimport ssvm_process ssvm_process_get_stdout_len
func ssvmGetStdoutLen() uint32

//go:wasmimport ssvm_process ssvm_process_get_stdout
func ssvmGetStdout(buf unsafe.Pointer)

//go:wasmimport ssvm_process ssvm_process_get_stderr_len
func ssvmGetStderrLen() uint32

//go:wasmimport ssvm_process ssvm_process_get_stderr
func ssvmGetStderr(buf unsafe.Pointer)

// DefaultHost returns the ssvm_process host imported from the runtime.
// A runtime that does not provide the module fails at instantiation.
func DefaultHost() Host {
	return ssvmHost{}
}

type ssvmHost struct{}

// ptr returns the address of the first byte of b, or nil for an empty slice.
func ptr(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}

func (ssvmHost) Available() bool { return true }

func (ssvmHost) SetProgramName(name []byte) error {
	ssvmSetProgName(ptr(name), uint32(len(name)))
	runtime.KeepAlive(name)
	return nil
}

func (ssvmHost) AddArgument(arg []byte) error {
	ssvmSetArg(ptr(arg), uint32(len(arg)))
	runtime.KeepAlive(arg)
	return nil
}

func (ssvmHost) AddEnvironmentEntry(key, value []byte) error {
	ssvmSetEnv(ptr(key), uint32(len(key)), ptr(value), uint32(len(value)))
	runtime.KeepAlive(key)
	runtime.KeepAlive(value)
	return nil
}

func (ssvmHost) SetTimeout(ms uint32) error {
	ssvmSetTimeout(ms)
	return nil
}

func (ssvmHost) SetStdin(buf []byte) error {
	ssvmSetStdin(ptr(buf), uint32(len(buf)))
	runtime.KeepAlive(buf)
	return nil
}

func (ssvmHost) Run() (int32, error) {
	return ssvmRun(), nil
}

func (ssvmHost) StdoutLen() (uint32, error) {
	return ssvmGetStdoutLen(), nil
}

func (ssvmHost) CopyStdout(dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	ssvmGetStdout(ptr(dst))
	runtime.KeepAlive(dst)
	return nil
}

func (ssvmHost) StderrLen() (uint32, error) {
	return ssvmGetStderrLen(), nil
}

func (ssvmHost) CopyStderr(dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	ssvmGetStderr(ptr(dst))
	runtime.KeepAlive(dst)
	return nil
}
