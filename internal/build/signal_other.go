//go:build !unix

package build

import "os"

var interruptSignals = []os.Signal{os.Interrupt}
