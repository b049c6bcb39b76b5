package rlog

import "os"

func newStdoutSink() *os.File { return os.Stdout }
