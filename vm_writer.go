package main

import (
	"bufio"
	"fmt"
	"io"
)

type VMSegmentType string

const (
	InvalidVMSegmentType VMSegmentType = ""
	ConstVMSegment       VMSegmentType = "constant"
	ArgumentVMSegment    VMSegmentType = "argument"
	LocalVMSegment       VMSegmentType = "local"
	StaticVMSegment      VMSegmentType = "static"
	ThisVMSegment        VMSegmentType = "this"
	ThatVMSegment        VMSegmentType = "that"
	PointerVMSegment     VMSegmentType = "pointer"
	TempVMSegment        VMSegmentType = "temp"
)

type VMOperation string

const (
	InvalidVMOperation VMOperation = ""
	AddVMOperation     VMOperation = "add"
	SubVMOperation     VMOperation = "sub"
	NegVMOperation     VMOperation = "neg"
	EqVMOperation      VMOperation = "eq"
	GtVMOperation      VMOperation = "gt"
	LtVMOperation      VMOperation = "lt"
	AndVMOperation     VMOperation = "and"
	OrVMOperation      VMOperation = "or"
	NotVMOperation     VMOperation = "not"
)

// VMWriter emits VM commands, one per line. It does not check segments
// or indices. Write errors are sticky and reported by Close.
type VMWriter struct {
	output *bufio.Writer
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{output: bufio.NewWriter(w)}
}

func (w *VMWriter) WriteCommand(command string) {
	w.output.WriteString(command)
	w.output.WriteByte('\n')
}

func (w *VMWriter) WritePush(segment VMSegmentType, index int) {
	w.WriteCommand(fmt.Sprintf("push %s %d", segment, index))
}

func (w *VMWriter) WritePop(segment VMSegmentType, index int) {
	w.WriteCommand(fmt.Sprintf("pop %s %d", segment, index))
}

func (w *VMWriter) WriteArithmetic(operation VMOperation) {
	w.WriteCommand(string(operation))
}

func (w *VMWriter) WriteLabel(label string) {
	w.WriteCommand("label " + label)
}

func (w *VMWriter) WriteGoto(label string) {
	w.WriteCommand("goto " + label)
}

func (w *VMWriter) WriteIf(label string) {
	w.WriteCommand("if-goto " + label)
}

func (w *VMWriter) WriteCall(name string, nArgs int) {
	w.WriteCommand(fmt.Sprintf("call %s %d", name, nArgs))
}

func (w *VMWriter) WriteFunction(name string, nLocals int) {
	w.WriteCommand(fmt.Sprintf("function %s %d", name, nLocals))
}

func (w *VMWriter) WriteReturn() {
	w.WriteCommand("return")
}

// Close flushes buffered commands and returns the first write error.
// The underlying writer is left open.
func (w *VMWriter) Close() error {
	return w.output.Flush()
}
